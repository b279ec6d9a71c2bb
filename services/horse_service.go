package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
	"github.com/valkyria/equestrian-club/storage"
	"github.com/valkyria/equestrian-club/utils"
)

type HorseService interface {
	ListVisible(ctx context.Context, actor models.Actor) ([]models.Horse, error)
	GetByID(ctx context.Context, actor models.Actor, id int) (*models.Horse, error)
	Create(ctx context.Context, actor models.Actor, input HorseInput) (*models.Horse, error)
	Update(ctx context.Context, actor models.Actor, id int, input HorseInput) (*models.Horse, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	UploadPhoto(ctx context.Context, actor models.Actor, id int, contentType string, photo io.Reader) (*models.Horse, error)
}

// HorseInput: age и owner_id — свободный текст. Некорректный возраст молча
// игнорируется, запись не прерывается. OwnerID читается только для
// администратора; владельцу owner_id принудительно равен его собственному.
type HorseInput struct {
	Name    string `json:"name"`
	Sex     string `json:"sex"`
	Age     string `json:"age"`
	OwnerID string `json:"owner_id"`
}

type horseService struct {
	horseRepo repositories.HorseRepository
	uploader  storage.FileUploader
}

func NewHorseService(horseRepo repositories.HorseRepository, uploader storage.FileUploader) HorseService {
	return &horseService{
		horseRepo: horseRepo,
		uploader:  uploader,
	}
}

// ListVisible: администратор видит всех лошадей, владелец — только своих.
// Жокею маршрут не экспонируется вовсе.
func (s *horseService) ListVisible(ctx context.Context, actor models.Actor) ([]models.Horse, error) {
	if err := Authorize(actor, ActionListHorses, nil).Err(); err != nil {
		return nil, err
	}

	var horses []models.Horse
	var err error
	if actor.Role == models.RoleAdmin {
		horses, err = s.horseRepo.ListAll(ctx)
	} else {
		horses, err = s.horseRepo.ListByOwner(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list horses: %w", err)
	}

	for i := range horses {
		s.attachPhotoURL(&horses[i])
	}
	return horses, nil
}

func (s *horseService) GetByID(ctx context.Context, actor models.Actor, id int) (*models.Horse, error) {
	horse, err := s.loadHorse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionMutateHorse, horse).Err(); err != nil {
		return nil, err
	}
	s.attachPhotoURL(horse)
	return horse, nil
}

func (s *horseService) Create(ctx context.Context, actor models.Actor, input HorseInput) (*models.Horse, error) {
	if err := Authorize(actor, ActionCreateHorse, nil).Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrHorseNameRequired
	}

	age, _ := utils.ParseOptionalInt(input.Age)

	ownerID := actor.ID
	if actor.Role == models.RoleAdmin {
		// Администратор может назначить произвольного владельца;
		// некорректный id молча игнорируется.
		if raw := strings.TrimSpace(input.OwnerID); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				ownerID = parsed
			}
		}
	}

	horse := &models.Horse{
		Name:    name,
		Sex:     utils.OptionalString(input.Sex),
		Age:     age,
		OwnerID: ownerID,
	}

	if err := s.horseRepo.Create(ctx, horse); err != nil {
		if errors.Is(err, repositories.ErrHorseOwnerInvalid) {
			return nil, ErrHorseOwnerInvalid
		}
		return nil, fmt.Errorf("failed to create horse: %w", err)
	}
	return horse, nil
}

// Update: пустой age сбрасывает возраст, некорректный — оставляет прежнее
// значение; остальные поля при этом сохраняются.
func (s *horseService) Update(ctx context.Context, actor models.Actor, id int, input HorseInput) (*models.Horse, error) {
	horse, err := s.loadHorse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionMutateHorse, horse).Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrHorseNameRequired
	}
	horse.Name = name
	horse.Sex = utils.OptionalString(input.Sex)

	if age, ok := utils.ParseOptionalInt(input.Age); ok {
		horse.Age = age
	}

	if actor.Role == models.RoleAdmin {
		// Смена владельца доступна только администратору; владельцу поле
		// игнорируется на чтении, а не отклоняется.
		if raw := strings.TrimSpace(input.OwnerID); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				horse.OwnerID = parsed
			}
		}
	}

	if err := s.horseRepo.Update(ctx, horse); err != nil {
		switch {
		case errors.Is(err, repositories.ErrHorseNotFound):
			return nil, ErrHorseNotFound
		case errors.Is(err, repositories.ErrHorseOwnerInvalid):
			return nil, ErrHorseOwnerInvalid
		default:
			return nil, fmt.Errorf("failed to update horse %d: %w", id, err)
		}
	}

	s.attachPhotoURL(horse)
	return horse, nil
}

func (s *horseService) Delete(ctx context.Context, actor models.Actor, id int) error {
	horse, err := s.loadHorse(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, ActionMutateHorse, horse).Err(); err != nil {
		return err
	}

	if err := s.horseRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrHorseNotFound):
			return ErrHorseNotFound
		case errors.Is(err, repositories.ErrHorseInUse):
			return ErrHorseInUse
		default:
			return fmt.Errorf("failed to delete horse %d: %w", id, err)
		}
	}

	if horse.PhotoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *horse.PhotoKey); delErr != nil {
			// Осиротевший объект в хранилище не критичен для удаления записи.
			slog.Warn("failed to delete horse photo", slog.String("key", *horse.PhotoKey), slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *horseService) UploadPhoto(ctx context.Context, actor models.Actor, id int, contentType string, photo io.Reader) (*models.Horse, error) {
	if s.uploader == nil {
		return nil, ErrPhotoStorageUnavailable
	}

	horse, err := s.loadHorse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionMutateHorse, horse).Err(); err != nil {
		return nil, err
	}

	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		return nil, ErrPhotoContentInvalid
	}

	key := fmt.Sprintf("horses/%d/photo-%s%s", horse.ID, generateRandomToken(8), ext)
	uploaded, err := s.uploader.Upload(ctx, key, contentType, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to upload horse photo: %w", err)
	}

	oldKey := horse.PhotoKey
	if err := s.horseRepo.UpdatePhotoKey(ctx, horse.ID, &uploaded.Key); err != nil {
		return nil, fmt.Errorf("failed to store horse photo key: %w", err)
	}
	if oldKey != nil && *oldKey != uploaded.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			slog.Warn("failed to delete previous horse photo", slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	horse.PhotoKey = &uploaded.Key
	s.attachPhotoURL(horse)
	return horse, nil
}

func (s *horseService) loadHorse(ctx context.Context, id int) (*models.Horse, error) {
	horse, err := s.horseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHorseNotFound) {
			return nil, ErrHorseNotFound
		}
		return nil, fmt.Errorf("failed to get horse %d: %w", id, err)
	}
	return horse, nil
}

func (s *horseService) attachPhotoURL(horse *models.Horse) {
	if horse.PhotoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*horse.PhotoKey)
		if url != "" {
			horse.PhotoURL = &url
		}
	}
}
