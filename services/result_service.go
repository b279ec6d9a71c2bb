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

type ResultService interface {
	List(ctx context.Context) ([]models.Result, error)
	GetByID(ctx context.Context, id int) (*models.Result, error)
	Create(ctx context.Context, actor models.Actor, input ResultInput) (*models.Result, error)
	Update(ctx context.Context, actor models.Actor, id int, input ResultInput) (*models.Result, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

// ResultInput: place — свободный текст с политикой снисходительности;
// race_time — форматированная строка вида "01:45.23", по которой не
// выполняется арифметика и которая не валидируется.
type ResultInput struct {
	CompetitionID int    `json:"competition_id"`
	HorseID       int    `json:"horse_id"`
	JockeyID      int    `json:"jockey_id"`
	Place         string `json:"place"`
	RaceTime      string `json:"race_time"`
}

type resultService struct {
	resultRepo repositories.ResultRepository
	live       LiveBroadcaster
}

func NewResultService(resultRepo repositories.ResultRepository, live LiveBroadcaster) ResultService {
	return &resultService{
		resultRepo: resultRepo,
		live:       live,
	}
}

func (s *resultService) List(ctx context.Context) ([]models.Result, error) {
	results, err := s.resultRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func (s *resultService) GetByID(ctx context.Context, id int) (*models.Result, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result %d: %w", id, err)
	}
	return result, nil
}

func (s *resultService) Create(ctx context.Context, actor models.Actor, input ResultInput) (*models.Result, error) {
	if err := Authorize(actor, ActionManageResult, nil).Err(); err != nil {
		return nil, err
	}

	if input.CompetitionID == 0 || input.HorseID == 0 || input.JockeyID == 0 {
		return nil, ErrResultRefsRequired
	}

	// Некорректное место молча превращается в отсутствующее.
	place, _ := utils.ParseOptionalInt(input.Place)

	result := &models.Result{
		CompetitionID: input.CompetitionID,
		HorseID:       input.HorseID,
		JockeyID:      input.JockeyID,
		Place:         place,
		RaceTime:      utils.OptionalString(input.RaceTime),
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		if errors.Is(err, repositories.ErrResultRefInvalid) {
			return nil, ErrResultRefInvalid
		}
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	s.broadcast("RESULT_CREATED", result)
	return result, nil
}

// Update: некорректное место оставляет прежнее значение, остальные поля
// перезаписываются.
func (s *resultService) Update(ctx context.Context, actor models.Actor, id int, input ResultInput) (*models.Result, error) {
	if err := Authorize(actor, ActionManageResult, nil).Err(); err != nil {
		return nil, err
	}

	if input.CompetitionID == 0 || input.HorseID == 0 || input.JockeyID == 0 {
		return nil, ErrResultRefsRequired
	}

	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result %d: %w", id, err)
	}

	if placeRaw := strings.TrimSpace(input.Place); placeRaw != "" {
		if place, parseErr := strconv.Atoi(placeRaw); parseErr == nil {
			result.Place = &place
		}
	} else {
		result.Place = nil
	}

	result.CompetitionID = input.CompetitionID
	result.HorseID = input.HorseID
	result.JockeyID = input.JockeyID
	result.RaceTime = utils.OptionalString(input.RaceTime)

	if err := s.resultRepo.Update(ctx, result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultNotFound):
			return nil, ErrResultNotFound
		case errors.Is(err, repositories.ErrResultRefInvalid):
			return nil, ErrResultRefInvalid
		default:
			return nil, fmt.Errorf("failed to update result %d: %w", id, err)
		}
	}

	s.broadcast("RESULT_UPDATED", result)
	return result, nil
}

func (s *resultService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if err := Authorize(actor, ActionManageResult, nil).Err(); err != nil {
		return err
	}

	if err := s.resultRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return ErrResultNotFound
		}
		return fmt.Errorf("failed to delete result %d: %w", id, err)
	}

	s.broadcast("RESULT_DELETED", map[string]int{"id": id})
	return nil
}

func (s *resultService) broadcast(eventType string, payload interface{}) {
	if s.live != nil {
		s.live.BroadcastEvent(eventType, payload)
	}
}
