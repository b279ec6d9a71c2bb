package services

import (
	"errors"
	"testing"

	"github.com/valkyria/equestrian-club/models"
)

func TestAuthorizeMatrix(t *testing.T) {
	admin := models.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}
	jockey := models.Actor{ID: 2, Role: models.RoleJockey, Authenticated: true}
	owner := models.Actor{ID: 3, Role: models.RoleOwner, Authenticated: true}
	anonymous := models.Anonymous()

	ownHorse := &models.Horse{ID: 10, OwnerID: owner.ID}
	foreignHorse := &models.Horse{ID: 11, OwnerID: 99}

	cases := []struct {
		name   string
		actor  models.Actor
		action Action
		target *models.Horse
		allow  bool
		reason DenyReason
	}{
		{"public listing is open to anonymous", anonymous, ActionViewPublicListing, nil, true, DenyNone},
		{"public listing is open to jockey", jockey, ActionViewPublicListing, nil, true, DenyNone},
		{"anonymous dashboard requires authentication", anonymous, ActionViewDashboard, nil, false, DenyAuthenticationRequired},
		{"admin manages competitions", admin, ActionManageCompetition, nil, true, DenyNone},
		{"jockey cannot manage competitions", jockey, ActionManageCompetition, nil, false, DenyInsufficientPrivilege},
		{"owner cannot manage results", owner, ActionManageResult, nil, false, DenyInsufficientPrivilege},
		{"admin lists horses", admin, ActionListHorses, nil, true, DenyNone},
		{"owner lists horses", owner, ActionListHorses, nil, true, DenyNone},
		{"jockey has no horse listing", jockey, ActionListHorses, nil, false, DenyInsufficientPrivilege},
		{"owner creates horses", owner, ActionCreateHorse, nil, true, DenyNone},
		{"jockey cannot create horses", jockey, ActionCreateHorse, nil, false, DenyInsufficientPrivilege},
		{"owner mutates own horse", owner, ActionMutateHorse, ownHorse, true, DenyNone},
		{"owner cannot mutate foreign horse", owner, ActionMutateHorse, foreignHorse, false, DenyNotOwner},
		{"admin mutates any horse", admin, ActionMutateHorse, foreignHorse, true, DenyNone},
		{"only admin reassigns owner", owner, ActionReassignHorseOwner, ownHorse, false, DenyInsufficientPrivilege},
		{"admin reassigns owner", admin, ActionReassignHorseOwner, foreignHorse, true, DenyNone},
		{"jockey edits own profile", jockey, ActionEditProfile, nil, true, DenyNone},
		{"anonymous may register", anonymous, ActionRegisterAccount, nil, true, DenyNone},
		{"authenticated may not register again", owner, ActionRegisterAccount, nil, false, DenyAlreadyAuthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Authorize(tc.actor, tc.action, tc.target)
			if decision.Allowed != tc.allow {
				t.Fatalf("expected allowed=%v, got %v", tc.allow, decision.Allowed)
			}
			if decision.Reason != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, decision.Reason)
			}
		})
	}
}

// Причины отказа различимы: "недостаточно прав" и "не владелец" — разные
// ошибки, хотя обе восстановимы.
func TestDenyReasonsAreDistinct(t *testing.T) {
	jockey := models.Actor{ID: 2, Role: models.RoleJockey, Authenticated: true}
	owner := models.Actor{ID: 3, Role: models.RoleOwner, Authenticated: true}
	foreignHorse := &models.Horse{ID: 11, OwnerID: 99}

	err := Authorize(jockey, ActionManageCompetition, nil).Err()
	if !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected ErrInsufficientPrivilege, got %v", err)
	}
	if errors.Is(err, ErrNotHorseOwner) {
		t.Fatalf("insufficient privilege must not match not-owner")
	}

	err = Authorize(owner, ActionMutateHorse, foreignHorse).Err()
	if !errors.Is(err, ErrNotHorseOwner) {
		t.Fatalf("expected ErrNotHorseOwner, got %v", err)
	}
}

// Аутентификация проверяется до ролевых правил.
func TestAuthenticationCheckedBeforeRole(t *testing.T) {
	unknownRole := models.Actor{ID: 5, Role: "steward", Authenticated: false}
	decision := Authorize(unknownRole, ActionManageCompetition, nil)
	if decision.Reason != DenyAuthenticationRequired {
		t.Fatalf("expected authentication_required, got %q", decision.Reason)
	}
}

// Неизвестная роль аутентифицированного актора — нарушение инварианта.
func TestUnknownRoleIsInvariantViolation(t *testing.T) {
	stranger := models.Actor{ID: 5, Role: "steward", Authenticated: true}
	decision := Authorize(stranger, ActionViewDashboard, nil)
	if decision.Allowed {
		t.Fatalf("unknown role must be denied")
	}
	if decision.Reason != DenyUnknownRole {
		t.Fatalf("expected unknown_role, got %q", decision.Reason)
	}
	if !errors.Is(decision.Err(), ErrRoleUnknown) {
		t.Fatalf("expected ErrRoleUnknown, got %v", decision.Err())
	}
}
