package services

import (
	"github.com/valkyria/equestrian-club/models"
)

// Action — действие, запрашиваемое актором. Проверка выполняется явным
// вызовом Authorize перед обращением к репозиторию, а не транспортными
// декораторами: решение не зависит от HTTP-слоя и проверяется в тестах
// напрямую.
type Action string

const (
	ActionViewPublicListing   Action = "view_public_listing"
	ActionViewDashboard       Action = "view_dashboard"
	ActionViewRanking         Action = "view_ranking"
	ActionManageCompetition   Action = "manage_competition"
	ActionManageResult        Action = "manage_result"
	ActionListHorses          Action = "list_horses"
	ActionCreateHorse         Action = "create_horse"
	ActionMutateHorse         Action = "mutate_horse"
	ActionReassignHorseOwner  Action = "reassign_horse_owner"
	ActionEditProfile         Action = "edit_profile"
	ActionRegisterAccount     Action = "register_account"
)

// DenyReason различает причины отказа: тесты и клиент должны отличать
// "недостаточно прав" от "не владелец лошади".
type DenyReason string

const (
	DenyNone                   DenyReason = ""
	DenyAuthenticationRequired DenyReason = "authentication_required"
	DenyInsufficientPrivilege  DenyReason = "insufficient_privilege"
	DenyNotOwner               DenyReason = "not_owner"
	DenyAlreadyAuthenticated   DenyReason = "already_authenticated"
	DenyUnknownRole            DenyReason = "unknown_role"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Err переводит решение в ошибку сервисного слоя; Allow даёт nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyAuthenticationRequired:
		return ErrAuthenticationRequired
	case DenyNotOwner:
		return ErrNotHorseOwner
	case DenyUnknownRole:
		return ErrRoleUnknown
	default:
		return ErrInsufficientPrivilege
	}
}

// Authorize — чистая функция (actor, action, target) -> Decision.
// target передаётся только для действий над конкретной лошадью; для
// остальных действий он игнорируется и может быть nil.
func Authorize(actor models.Actor, action Action, target *models.Horse) Decision {
	// Публичный список и регистрация доступны анонимно; регистрация при
	// установленной сессии блокируется.
	switch action {
	case ActionViewPublicListing:
		return allow()
	case ActionRegisterAccount:
		if actor.Authenticated {
			return deny(DenyAlreadyAuthenticated)
		}
		return allow()
	}

	if !actor.Authenticated {
		// Проверка аутентификации идёт до ролевых проверок.
		return deny(DenyAuthenticationRequired)
	}
	if !actor.Role.Valid() {
		// Неизвестная роль — нарушение инварианта, а не обычный отказ.
		return deny(DenyUnknownRole)
	}

	switch action {
	case ActionViewDashboard, ActionEditProfile:
		return allow()

	case ActionManageCompetition, ActionManageResult, ActionViewRanking:
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		return deny(DenyInsufficientPrivilege)

	case ActionListHorses:
		switch actor.Role {
		case models.RoleAdmin, models.RoleOwner:
			return allow()
		default:
			// Жокею маршрут лошадей не экспонируется.
			return deny(DenyInsufficientPrivilege)
		}

	case ActionCreateHorse:
		switch actor.Role {
		case models.RoleAdmin, models.RoleOwner:
			return allow()
		default:
			return deny(DenyInsufficientPrivilege)
		}

	case ActionMutateHorse:
		switch actor.Role {
		case models.RoleAdmin:
			return allow()
		case models.RoleOwner:
			if target != nil && target.OwnerID == actor.ID {
				return allow()
			}
			return deny(DenyNotOwner)
		default:
			return deny(DenyInsufficientPrivilege)
		}

	case ActionReassignHorseOwner:
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		return deny(DenyInsufficientPrivilege)
	}

	return deny(DenyInsufficientPrivilege)
}
