package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/valkyria/equestrian-club/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameConflict = errors.New("username conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	TopJockeys(ctx context.Context, limit int) ([]models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, full_name, password_hash, role, age, address, rating, contact_info, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, full_name, password_hash, role, age, address, rating, contact_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.Age,
		user.Address,
		user.Rating(),
		user.ContactInfo(),
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_username_key" {
				return ErrUsernameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// Update перезаписывает изменяемые поля профиля. Username и role через
// приложение не меняются.
func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			full_name = $1,
			password_hash = $2,
			age = $3,
			address = $4,
			rating = $5,
			contact_info = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.PasswordHash,
		user.Age,
		user.Address,
		user.Rating(),
		user.ContactInfo(),
		user.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY username ASC`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// TopJockeys — жокеи с выставленным рейтингом, по убыванию рейтинга.
// Порядок при равном рейтинге не доопределяется — какой вернёт БД.
func (r *postgresUserRepository) TopJockeys(ctx context.Context, limit int) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND rating IS NOT NULL
		ORDER BY rating DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.RoleJockey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *postgresUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user, err := scanUserFields(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// scanUserFields маппит nullable колонки rating/contact_info в ролевой
// профиль только при совпадающей роли: значения чужой роли считаются
// отсутствующими, а не ошибочными.
func scanUserFields(scan func(dest ...interface{}) error) (*models.User, error) {
	var user models.User
	var rating sql.NullFloat64
	var contactInfo sql.NullString

	err := scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.Age,
		&user.Address,
		&rating,
		&contactInfo,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleJockey:
		user.Jockey = &models.JockeyProfile{}
		if rating.Valid {
			user.Jockey.Rating = &rating.Float64
		}
	case models.RoleOwner:
		user.Owner = &models.OwnerProfile{}
		if contactInfo.Valid {
			user.Owner.ContactInfo = &contactInfo.String
		}
	}

	return &user, nil
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUserFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
