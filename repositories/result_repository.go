package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/valkyria/equestrian-club/models"
)

var (
	ErrResultNotFound   = errors.New("result not found")
	ErrResultRefInvalid = errors.New("result references a missing competition, horse or jockey")
)

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id int) (*models.Result, error)
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]models.Result, error)
	ListByJockey(ctx context.Context, jockeyID int) ([]models.Result, error)
	ListByHorseOwner(ctx context.Context, ownerID int) ([]models.Result, error)
	Count(ctx context.Context) (int, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (competition_id, horse_id, jockey_id, place, race_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		result.CompetitionID,
		result.HorseID,
		result.JockeyID,
		result.Place,
		result.RaceTime,
	).Scan(&result.ID, &result.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrResultRefInvalid
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) GetByID(ctx context.Context, id int) (*models.Result, error) {
	query := `
		SELECT id, competition_id, horse_id, jockey_id, place, race_time, created_at
		FROM results
		WHERE id = $1`

	var result models.Result
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.ID,
		&result.CompetitionID,
		&result.HorseID,
		&result.JockeyID,
		&result.Place,
		&result.RaceTime,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *postgresResultRepository) Update(ctx context.Context, result *models.Result) error {
	query := `
		UPDATE results SET
			competition_id = $1,
			horse_id = $2,
			jockey_id = $3,
			place = $4,
			race_time = $5
		WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query,
		result.CompetitionID,
		result.HorseID,
		result.JockeyID,
		result.Place,
		result.RaceTime,
		result.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrResultRefInvalid
		}
		return err
	}
	return checkAffectedRows(res, ErrResultNotFound)
}

func (r *postgresResultRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

const resultWithCompetitionQuery = `
	SELECT
		r.id, r.competition_id, r.horse_id, r.jockey_id, r.place, r.race_time, r.created_at,
		c.id, c.name, c.date, c.time, c.place, c.created_at
	FROM results r
	JOIN competitions c ON r.competition_id = c.id`

// ListAll — публичный список результатов: по дате состязания по убыванию,
// внутри состязания — по занятому месту по возрастанию.
func (r *postgresResultRepository) ListAll(ctx context.Context) ([]models.Result, error) {
	query := resultWithCompetitionQuery + `
	ORDER BY c.date DESC, r.place ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResultsWithCompetition(rows)
}

func (r *postgresResultRepository) ListByJockey(ctx context.Context, jockeyID int) ([]models.Result, error) {
	query := resultWithCompetitionQuery + `
	WHERE r.jockey_id = $1
	ORDER BY c.date DESC`

	rows, err := r.db.QueryContext(ctx, query, jockeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResultsWithCompetition(rows)
}

// ListByHorseOwner — результаты всех лошадей, принадлежащих владельцу.
func (r *postgresResultRepository) ListByHorseOwner(ctx context.Context, ownerID int) ([]models.Result, error) {
	query := `
	SELECT
		r.id, r.competition_id, r.horse_id, r.jockey_id, r.place, r.race_time, r.created_at,
		c.id, c.name, c.date, c.time, c.place, c.created_at
	FROM results r
	JOIN horses h ON r.horse_id = h.id
	JOIN competitions c ON r.competition_id = c.id
	WHERE h.owner_id = $1
	ORDER BY c.date DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResultsWithCompetition(rows)
}

func (r *postgresResultRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}

func collectResultsWithCompetition(rows *sql.Rows) ([]models.Result, error) {
	results := make([]models.Result, 0)
	for rows.Next() {
		var result models.Result
		var competition models.Competition
		scanErr := rows.Scan(
			&result.ID,
			&result.CompetitionID,
			&result.HorseID,
			&result.JockeyID,
			&result.Place,
			&result.RaceTime,
			&result.CreatedAt,
			&competition.ID,
			&competition.Name,
			&competition.Date,
			&competition.Time,
			&competition.Place,
			&competition.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		result.Competition = &competition
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
