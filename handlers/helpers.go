package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/valkyria/equestrian-club/services"
)

type jsonResponse map[string]interface{}

var errInvalidIDParam = errors.New("invalid id parameter")

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// forbiddenResponse — восстановимый отказ: клиент показывает сообщение и
// уводит пользователя на публичную страницу, а не на страницу ошибки.
func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	env := jsonResponse{"error": message, "redirect": "/"}
	if err := writeJSON(w, http.StatusForbidden, env, nil); err != nil {
		slog.Error("failed to write forbidden response", slog.Any("error", err))
	}
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrHorseNotFound),
		errors.Is(err, services.ErrCompetitionNotFound),
		errors.Is(err, services.ErrResultNotFound):
		notFoundResponse(w, r)

	// Конфликты
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrCompetitionInUse),
		errors.Is(err, services.ErrHorseInUse):
		conflictResponse(w, r, err.Error())

	// Валидация: запись прервана целиком
	case errors.Is(err, services.ErrRegistrationRoleInvalid),
		errors.Is(err, services.ErrRegistrationFieldsEmpty),
		errors.Is(err, services.ErrCompetitionNameRequired),
		errors.Is(err, services.ErrCompetitionDateRequired),
		errors.Is(err, services.ErrCompetitionInvalidDate),
		errors.Is(err, services.ErrCompetitionInvalidTime),
		errors.Is(err, services.ErrHorseNameRequired),
		errors.Is(err, services.ErrHorseOwnerInvalid),
		errors.Is(err, services.ErrResultRefsRequired),
		errors.Is(err, services.ErrResultRefInvalid),
		errors.Is(err, services.ErrPhotoContentInvalid):
		badRequestResponse(w, r, err)

	// Аутентификация
	case errors.Is(err, services.ErrAuthInvalidCredentials),
		errors.Is(err, services.ErrSessionInvalid),
		errors.Is(err, services.ErrAuthenticationRequired):
		unauthorizedResponse(w, r, err.Error())

	// Авторизация: две различимые восстановимые причины
	case errors.Is(err, services.ErrInsufficientPrivilege),
		errors.Is(err, services.ErrNotHorseOwner):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrPhotoStorageUnavailable):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	// ErrRoleUnknown — нарушение инварианта, а не пользовательская ошибка:
	// попадает в общий 500 и логируется.
	default:
		serverErrorResponse(w, r, err)
	}
}
