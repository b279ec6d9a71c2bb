package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
	"github.com/valkyria/equestrian-club/utils"
)

// LiveBroadcaster рассылает событие подписчикам публичной ленты. Может быть
// nil — тогда события просто не публикуются.
type LiveBroadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

type CompetitionService interface {
	List(ctx context.Context) ([]models.Competition, error)
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	Create(ctx context.Context, actor models.Actor, input CompetitionInput) (*models.Competition, error)
	Update(ctx context.Context, actor models.Actor, id int, input CompetitionInput) (*models.Competition, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

// CompetitionInput: в отличие от числовых полей лошадей и результатов, дата
// и время проверяются строго — любое некорректное значение прерывает запись
// целиком. Эта асимметрия повторяет исходное поведение намеренно.
type CompetitionInput struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Place string `json:"place"`
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	live            LiveBroadcaster
}

func NewCompetitionService(competitionRepo repositories.CompetitionRepository, live LiveBroadcaster) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		live:            live,
	}
}

func (s *competitionService) List(ctx context.Context) ([]models.Competition, error) {
	competitions, err := s.competitionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return competitions, nil
}

func (s *competitionService) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}
	return competition, nil
}

func (s *competitionService) Create(ctx context.Context, actor models.Actor, input CompetitionInput) (*models.Competition, error) {
	if err := Authorize(actor, ActionManageCompetition, nil).Err(); err != nil {
		return nil, err
	}

	competition, err := buildCompetition(input)
	if err != nil {
		return nil, err
	}

	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	s.broadcast("COMPETITION_CREATED", competition)
	return competition, nil
}

func (s *competitionService) Update(ctx context.Context, actor models.Actor, id int, input CompetitionInput) (*models.Competition, error) {
	if err := Authorize(actor, ActionManageCompetition, nil).Err(); err != nil {
		return nil, err
	}

	existing, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}

	updated, err := buildCompetition(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.competitionRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to update competition %d: %w", id, err)
	}

	s.broadcast("COMPETITION_UPDATED", updated)
	return updated, nil
}

func (s *competitionService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := Authorize(actor, ActionManageCompetition, nil).Err(); err != nil {
		return err
	}

	err := s.competitionRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCompetitionNotFound):
			return ErrCompetitionNotFound
		case errors.Is(err, repositories.ErrCompetitionInUse):
			return ErrCompetitionInUse
		default:
			return fmt.Errorf("failed to delete competition %d: %w", id, err)
		}
	}

	s.broadcast("COMPETITION_DELETED", map[string]int{"id": id})
	return nil
}

func buildCompetition(input CompetitionInput) (*models.Competition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCompetitionNameRequired
	}

	dateRaw := strings.TrimSpace(input.Date)
	if dateRaw == "" {
		return nil, ErrCompetitionDateRequired
	}
	date, err := time.Parse(models.CompetitionDateLayout, dateRaw)
	if err != nil {
		return nil, ErrCompetitionInvalidDate
	}

	var timeOfDay *string
	if timeRaw := strings.TrimSpace(input.Time); timeRaw != "" {
		parsed, err := time.Parse(models.CompetitionTimeLayout, timeRaw)
		if err != nil {
			return nil, ErrCompetitionInvalidTime
		}
		// Время хранится строкой и сортируется лексически, поэтому "9:30"
		// нормализуется до "09:30" перед записью.
		normalized := parsed.Format(models.CompetitionTimeLayout)
		timeOfDay = &normalized
	}

	return &models.Competition{
		Name:  name,
		Date:  date,
		Time:  timeOfDay,
		Place: utils.OptionalString(input.Place),
	}, nil
}

func (s *competitionService) broadcast(eventType string, payload interface{}) {
	if s.live != nil {
		s.live.BroadcastEvent(eventType, payload)
	}
}
