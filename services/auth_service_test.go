package services

import (
	"context"
	"errors"
	"testing"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	user, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift",
		FullName: "Anna Swift",
		Password: "gallop-2024",
		Role:     "jockey",
		Age:      "27",
		Rating:   "4.5",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.Age == nil || *user.Age != 27 {
		t.Fatalf("expected age 27, got %v", user.Age)
	}
	if user.Rating() == nil || *user.Rating() != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", user.Rating())
	}

	stored, err := repo.GetByUsername(context.Background(), "swift")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "gallop-2024" {
		t.Fatalf("password stored in plaintext")
	}
	if !utils.CheckPasswordHash("gallop-2024", stored.PasswordHash) {
		t.Fatalf("stored hash does not verify the password")
	}
	if utils.CheckPasswordHash("wrong", stored.PasswordHash) {
		t.Fatalf("wrong password must not verify")
	}

	if _, err := service.Login(context.Background(), LoginInput{Username: "swift", Password: "gallop-2024"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// Неверный логин и неверный пароль дают одну и ту же ошибку: перебор
// логинов невозможен.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	if _, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift", FullName: "Anna Swift", Password: "gallop-2024", Role: "jockey",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, errNoUser := service.Login(context.Background(), LoginInput{Username: "ghost", Password: "anything"})
	_, errBadPass := service.Login(context.Background(), LoginInput{Username: "swift", Password: "wrong"})

	if !errors.Is(errNoUser, ErrAuthInvalidCredentials) || !errors.Is(errBadPass, ErrAuthInvalidCredentials) {
		t.Fatalf("expected ErrAuthInvalidCredentials for both, got %v and %v", errNoUser, errBadPass)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	first, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift", FullName: "Anna Swift", Password: "gallop-2024", Role: "jockey",
	})
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err = service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift", FullName: "Impostor", Password: "other", Role: "owner",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// Существующая запись не изменилась.
	stored, err := repo.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("original user lost: %v", err)
	}
	if stored.FullName != "Anna Swift" || stored.Role != models.RoleJockey {
		t.Fatalf("original row was altered: %+v", stored)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	for _, role := range []string{"admin", "steward", ""} {
		_, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
			Username: "x", FullName: "X", Password: "p", Role: role,
		})
		if !errors.Is(err, ErrRegistrationRoleInvalid) {
			t.Fatalf("role %q: expected ErrRegistrationRoleInvalid, got %v", role, err)
		}
	}
}

func TestRegisterRequiresMandatoryFields(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	_, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "", FullName: "Anna", Password: "p", Role: "owner",
	})
	if !errors.Is(err, ErrRegistrationFieldsEmpty) {
		t.Fatalf("expected ErrRegistrationFieldsEmpty, got %v", err)
	}
}

func TestRegisterBlockedForAuthenticatedActor(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	actor := models.Actor{ID: 7, Role: models.RoleOwner, Authenticated: true}
	_, err := service.Register(context.Background(), actor, RegisterInput{
		Username: "x", FullName: "X", Password: "p", Role: "owner",
	})
	if !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected deny for authenticated actor, got %v", err)
	}
}

// Некорректный рейтинг не прерывает регистрацию, а молча отбрасывается.
func TestRegisterLenientNumericFields(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	user, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift", FullName: "Anna Swift", Password: "p", Role: "jockey",
		Age: "abc", Rating: "not-a-number",
	})
	if err != nil {
		t.Fatalf("register must not fail on malformed numerics: %v", err)
	}
	if user.Age != nil {
		t.Fatalf("malformed age must be absent, got %v", *user.Age)
	}
	if user.Rating() != nil {
		t.Fatalf("malformed rating must be absent, got %v", *user.Rating())
	}
}

// Ролевые атрибуты: рейтинг у владельца и контакты у жокея не сохраняются.
func TestRegisterRoleConditionalAttributes(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	owner, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "barnlord", FullName: "Boris Barn", Password: "p", Role: "owner",
		Rating: "4.9", ContactInfo: "barn@club.example",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if owner.Rating() != nil {
		t.Fatalf("owner must not carry a rating")
	}
	if owner.ContactInfo() == nil || *owner.ContactInfo() != "barn@club.example" {
		t.Fatalf("owner contact info lost")
	}

	jockey, err := service.Register(context.Background(), models.Anonymous(), RegisterInput{
		Username: "swift", FullName: "Anna Swift", Password: "p", Role: "jockey",
		Rating: "4.9", ContactInfo: "swift@club.example",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if jockey.ContactInfo() != nil {
		t.Fatalf("jockey must not carry contact info")
	}
	if jockey.Rating() == nil || *jockey.Rating() != 4.9 {
		t.Fatalf("jockey rating lost")
	}
}

func TestCreateAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	admin, err := service.CreateAdmin(context.Background(), "root", "Club Admin", "secret")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}

	if _, err := service.CreateAdmin(context.Background(), "root", "Another", "secret"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}
