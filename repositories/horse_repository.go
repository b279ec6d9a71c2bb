package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/valkyria/equestrian-club/models"
)

var (
	ErrHorseNotFound     = errors.New("horse not found")
	ErrHorseOwnerInvalid = errors.New("horse owner does not exist")
	ErrHorseInUse        = errors.New("horse is referenced by results")
)

type HorseRepository interface {
	Create(ctx context.Context, horse *models.Horse) error
	GetByID(ctx context.Context, id int) (*models.Horse, error)
	Update(ctx context.Context, horse *models.Horse) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]models.Horse, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Horse, error)
	Count(ctx context.Context) (int, error)
}

type postgresHorseRepository struct {
	db *sql.DB
}

func NewPostgresHorseRepository(db *sql.DB) HorseRepository {
	return &postgresHorseRepository{db: db}
}

func (r *postgresHorseRepository) Create(ctx context.Context, horse *models.Horse) error {
	query := `
		INSERT INTO horses (name, sex, age, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		horse.Name,
		horse.Sex,
		horse.Age,
		horse.OwnerID,
	).Scan(&horse.ID, &horse.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "horses_owner_id_fkey" {
				return ErrHorseOwnerInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresHorseRepository) GetByID(ctx context.Context, id int) (*models.Horse, error) {
	query := `
		SELECT id, name, sex, age, owner_id, photo_key, created_at
		FROM horses
		WHERE id = $1`

	var horse models.Horse
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&horse.ID,
		&horse.Name,
		&horse.Sex,
		&horse.Age,
		&horse.OwnerID,
		&horse.PhotoKey,
		&horse.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHorseNotFound
		}
		return nil, err
	}
	return &horse, nil
}

func (r *postgresHorseRepository) Update(ctx context.Context, horse *models.Horse) error {
	query := `
		UPDATE horses SET
			name = $1,
			sex = $2,
			age = $3,
			owner_id = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		horse.Name,
		horse.Sex,
		horse.Age,
		horse.OwnerID,
		horse.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "horses_owner_id_fkey" {
				return ErrHorseOwnerInvalid
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrHorseNotFound)
}

func (r *postgresHorseRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	query := `UPDATE horses SET photo_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrHorseNotFound)
}

func (r *postgresHorseRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM horses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		// ON DELETE RESTRICT: лошадь с результатами удалить нельзя.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrHorseInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrHorseNotFound)
}

func (r *postgresHorseRepository) ListAll(ctx context.Context) ([]models.Horse, error) {
	query := `
		SELECT id, name, sex, age, owner_id, photo_key, created_at
		FROM horses
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHorses(rows)
}

func (r *postgresHorseRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Horse, error) {
	query := `
		SELECT id, name, sex, age, owner_id, photo_key, created_at
		FROM horses
		WHERE owner_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHorses(rows)
}

func (r *postgresHorseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM horses`).Scan(&count)
	return count, err
}

func collectHorses(rows *sql.Rows) ([]models.Horse, error) {
	horses := make([]models.Horse, 0)
	for rows.Next() {
		var horse models.Horse
		scanErr := rows.Scan(
			&horse.ID,
			&horse.Name,
			&horse.Sex,
			&horse.Age,
			&horse.OwnerID,
			&horse.PhotoKey,
			&horse.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		horses = append(horses, horse)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return horses, nil
}
