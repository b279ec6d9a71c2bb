package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/valkyria/equestrian-club/models"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrCompetitionInUse    = errors.New("competition is referenced by results")
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	Update(ctx context.Context, competition *models.Competition) error
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]models.Competition, error)
	Count(ctx context.Context) (int, error)
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, competition *models.Competition) error {
	query := `
		INSERT INTO competitions (name, date, time, place)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		competition.Name,
		competition.Date,
		competition.Time,
		competition.Place,
	).Scan(&competition.ID, &competition.CreatedAt)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `
		SELECT id, name, date, time, place, created_at
		FROM competitions
		WHERE id = $1`

	var competition models.Competition
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&competition.ID,
		&competition.Name,
		&competition.Date,
		&competition.Time,
		&competition.Place,
		&competition.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return &competition, nil
}

func (r *postgresCompetitionRepository) Update(ctx context.Context, competition *models.Competition) error {
	query := `
		UPDATE competitions SET
			name = $1,
			date = $2,
			time = $3,
			place = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		competition.Name,
		competition.Date,
		competition.Time,
		competition.Place,
		competition.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM competitions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		// ON DELETE RESTRICT: нельзя удалить состязание с результатами.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCompetitionInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

// ListAll возвращает состязания для публичной и админской страниц: сначала
// более поздние даты, при равной дате — более позднее время.
func (r *postgresCompetitionRepository) ListAll(ctx context.Context) ([]models.Competition, error) {
	query := `
		SELECT id, name, date, time, place, created_at
		FROM competitions
		ORDER BY date DESC, time DESC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var competition models.Competition
		scanErr := rows.Scan(
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
		competitions = append(competitions, competition)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return competitions, nil
}

func (r *postgresCompetitionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM competitions`).Scan(&count)
	return count, err
}
