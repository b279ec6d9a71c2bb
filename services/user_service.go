package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
	"github.com/valkyria/equestrian-club/utils"
)

type UserService interface {
	GetProfile(ctx context.Context, actor models.Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, input UpdateProfileInput) (*models.User, []string, error)
	ListJockeys(ctx context.Context) ([]models.User, error)
	ListOwners(ctx context.Context) ([]models.User, error)
}

// UpdateProfileInput: числовые поля — свободный текст. Некорректные age и
// rating не прерывают сохранение, но возвращаются предупреждения.
type UpdateProfileInput struct {
	FullName    string `json:"full_name"`
	Age         string `json:"age"`
	Address     string `json:"address"`
	Rating      string `json:"rating"`
	ContactInfo string `json:"contact_info"`
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, actor models.Actor) (*models.User, error) {
	if err := Authorize(actor, ActionEditProfile, nil).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile правит только собственную запись актора. Пустое числовое
// поле оставляет прежнее значение; некорректное — тоже, но с видимым
// предупреждением. Остальные изменения фиксируются в любом случае.
func (s *userService) UpdateProfile(ctx context.Context, actor models.Actor, input UpdateProfileInput) (*models.User, []string, error) {
	if err := Authorize(actor, ActionEditProfile, nil).Err(); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	warnings := make([]string, 0)

	if fullName := strings.TrimSpace(input.FullName); fullName != "" {
		user.FullName = fullName
	}
	user.Address = utils.OptionalString(input.Address)

	if ageRaw := strings.TrimSpace(input.Age); ageRaw != "" {
		if age, err := strconv.Atoi(ageRaw); err == nil {
			user.Age = &age
		} else {
			warnings = append(warnings, "age must be a number")
		}
	}

	switch user.Role {
	case models.RoleJockey:
		if user.Jockey == nil {
			user.Jockey = &models.JockeyProfile{}
		}
		if ratingRaw := strings.TrimSpace(input.Rating); ratingRaw != "" {
			if rating, err := strconv.ParseFloat(ratingRaw, 64); err == nil {
				user.Jockey.Rating = &rating
			} else {
				warnings = append(warnings, "rating must be a number")
			}
		}
	case models.RoleOwner:
		if user.Owner == nil {
			user.Owner = &models.OwnerProfile{}
		}
		user.Owner.ContactInfo = utils.OptionalString(input.ContactInfo)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user.PasswordHash = ""
	return user, warnings, nil
}

// ListJockeys нужен форме создания результата: в выборе жокея предлагаются
// только пользователи с ролью jockey, хотя сама связь в данных допускает
// любой users.id.
func (s *userService) ListJockeys(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListByRole(ctx, models.RoleJockey)
	if err != nil {
		return nil, fmt.Errorf("failed to list jockeys: %w", err)
	}
	return stripHashes(users), nil
}

func (s *userService) ListOwners(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListByRole(ctx, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return stripHashes(users), nil
}

func stripHashes(users []models.User) []models.User {
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users
}
