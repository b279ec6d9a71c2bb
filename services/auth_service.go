package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
	"github.com/valkyria/equestrian-club/utils"
)

type AuthService interface {
	Register(ctx context.Context, actor models.Actor, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	CreateAdmin(ctx context.Context, username, fullName, password string) (*models.User, error)
}

// RegisterInput: age и rating приходят свободным текстом из формы и
// разбираются снисходительно (см. utils.ParseOptionalInt).
type RegisterInput struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Age         string `json:"age"`
	Address     string `json:"address"`
	Rating      string `json:"rating"`
	ContactInfo string `json:"contact_info"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, actor models.Actor, input RegisterInput) (*models.User, error) {
	if err := Authorize(actor, ActionRegisterAccount, nil).Err(); err != nil {
		return nil, err
	}

	role := models.UserRole(input.Role)
	if role != models.RoleJockey && role != models.RoleOwner {
		// Администраторы создаются только через CLI.
		return nil, ErrRegistrationRoleInvalid
	}

	username := strings.TrimSpace(input.Username)
	fullName := strings.TrimSpace(input.FullName)
	if username == "" || fullName == "" || input.Password == "" {
		return nil, ErrRegistrationFieldsEmpty
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Некорректный возраст или рейтинг не прерывает регистрацию.
	age, _ := utils.ParseOptionalInt(input.Age)

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		Role:         role,
		Age:          age,
		Address:      utils.OptionalString(input.Address),
	}

	// Ролевые атрибуты: рейтинг имеет смысл только для жокея, контакты —
	// только для владельца.
	switch role {
	case models.RoleJockey:
		rating, _ := utils.ParseOptionalFloat(input.Rating)
		user.Jockey = &models.JockeyProfile{Rating: rating}
	case models.RoleOwner:
		user.Owner = &models.OwnerProfile{ContactInfo: utils.OptionalString(input.ContactInfo)}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// CreateAdmin используется только CLI начальной настройки; через HTTP роль
// admin недостижима.
func (s *authService) CreateAdmin(ctx context.Context, username, fullName, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" || password == "" {
		return nil, ErrRegistrationFieldsEmpty
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}
