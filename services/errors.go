package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Аутентификация. Текст намеренно не различает "нет такого пользователя"
	// и "неверный пароль", чтобы не допускать перебор логинов.
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrSessionInvalid         = errors.New("session is invalid or has been revoked")

	// Авторизация: три различимых причины отказа плюс нарушение инварианта.
	// Первые три восстановимы (редирект с сообщением на стороне клиента),
	// ErrRoleUnknown — дефект, который логируется как ошибка.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInsufficientPrivilege  = errors.New("insufficient privilege")
	ErrNotHorseOwner          = errors.New("not the owner of this horse")
	ErrRoleUnknown            = errors.New("unknown user role")

	// Регистрация и профиль
	ErrUsernameTaken           = errors.New("username is already taken")
	ErrRegistrationRoleInvalid = errors.New("registration is only available for jockey and owner roles")
	ErrRegistrationFieldsEmpty = errors.New("username, full name and password are required")

	// Состязания: дата и время валидируются строго, любая некорректность
	// прерывает запись целиком.
	ErrCompetitionNameRequired = errors.New("competition name is required")
	ErrCompetitionDateRequired = errors.New("competition date is required")
	ErrCompetitionInvalidDate  = errors.New("competition date must be in YYYY-MM-DD format")
	ErrCompetitionInvalidTime  = errors.New("competition time must be in HH:MM format")
	ErrCompetitionInUse        = errors.New("competition has recorded results and cannot be deleted")

	// Лошади
	ErrHorseNameRequired = errors.New("horse name is required")
	ErrHorseOwnerInvalid = errors.New("horse owner does not exist")
	ErrHorseInUse        = errors.New("horse has recorded results and cannot be deleted")
	ErrHorseNotFound     = errors.New("horse not found")

	// Результаты
	ErrResultRefsRequired = errors.New("competition, horse and jockey are required")
	ErrResultRefInvalid   = errors.New("result references a missing competition, horse or jockey")
	ErrResultNotFound     = errors.New("result not found")

	// Прочие сущности
	ErrUserNotFound        = errors.New("user not found")
	ErrCompetitionNotFound = errors.New("competition not found")

	// Хранилище фотографий
	ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")
	ErrPhotoContentInvalid     = errors.New("photo must be a JPEG or PNG image")
)
