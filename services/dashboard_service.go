package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
)

const topJockeysLimit = 3

type DashboardService interface {
	ForActor(ctx context.Context, actor models.Actor) (*models.Dashboard, error)
	TopJockeys(ctx context.Context, actor models.Actor, limit int) ([]models.User, error)
}

type dashboardService struct {
	userRepo        repositories.UserRepository
	horseRepo       repositories.HorseRepository
	competitionRepo repositories.CompetitionRepository
	resultRepo      repositories.ResultRepository
	logger          *slog.Logger
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	horseRepo repositories.HorseRepository,
	competitionRepo repositories.CompetitionRepository,
	resultRepo repositories.ResultRepository,
	logger *slog.Logger,
) DashboardService {
	return &dashboardService{
		userRepo:        userRepo,
		horseRepo:       horseRepo,
		competitionRepo: competitionRepo,
		resultRepo:      resultRepo,
		logger:          logger,
	}
}

// ForActor — ролевой диспетчер личного кабинета. Неизвестная роль —
// нарушение инварианта: логируется как ошибка и не обрабатывается молча.
func (s *dashboardService) ForActor(ctx context.Context, actor models.Actor) (*models.Dashboard, error) {
	if err := Authorize(actor, ActionViewDashboard, nil).Err(); err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		admin, err := s.adminDashboard(ctx)
		if err != nil {
			return nil, err
		}
		return &models.Dashboard{Role: models.RoleAdmin, Admin: admin}, nil

	case models.RoleJockey:
		results, err := s.resultRepo.ListByJockey(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list jockey results: %w", err)
		}
		return &models.Dashboard{
			Role:   models.RoleJockey,
			Jockey: &models.JockeyDashboard{Results: results},
		}, nil

	case models.RoleOwner:
		horses, err := s.horseRepo.ListByOwner(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list owner horses: %w", err)
		}
		results, err := s.resultRepo.ListByHorseOwner(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list owner results: %w", err)
		}
		return &models.Dashboard{
			Role:  models.RoleOwner,
			Owner: &models.OwnerDashboard{Horses: horses, Results: results},
		}, nil

	default:
		s.logger.Error("dashboard dispatch reached unknown role",
			slog.Int("user_id", actor.ID),
			slog.String("role", string(actor.Role)),
		)
		return nil, ErrRoleUnknown
	}
}

// adminDashboard собирает счётчики параллельно, как независимые запросы.
func (s *dashboardService) adminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var dashboard models.AdminDashboard

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.competitionRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count competitions: %w", err)
		}
		dashboard.CompetitionsCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.horseRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count horses: %w", err)
		}
		dashboard.HorsesCount = count
		return nil
	})
	g.Go(func() error {
		count, err := s.resultRepo.Count(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count results: %w", err)
		}
		dashboard.ResultsCount = count
		return nil
	})
	g.Go(func() error {
		top, err := s.userRepo.TopJockeys(gCtx, topJockeysLimit)
		if err != nil {
			return fmt.Errorf("failed to load top jockeys: %w", err)
		}
		dashboard.TopJockeys = stripHashes(top)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// TopJockeys — отчётная выборка административного кабинета. Читается
// напрямую из хранилища при каждом вызове, без кэширования между запросами.
func (s *dashboardService) TopJockeys(ctx context.Context, actor models.Actor, limit int) ([]models.User, error) {
	if err := Authorize(actor, ActionViewRanking, nil).Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = topJockeysLimit
	}
	top, err := s.userRepo.TopJockeys(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top jockeys: %w", err)
	}
	return stripHashes(top), nil
}
