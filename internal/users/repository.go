package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftlog/liftlog/internal/shared"
)

// Repository defines persistence operations for user management.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, u User, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(email, ''), role FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, `SELECT id, name, COALESCE(email, ''), role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		u.Name, u.Email, passwordHash, u.Role).Scan(&u.ID)
	return u, mapConstraint(err)
}

// Update changes profile fields; the password only when a new hash is
// supplied.
func (r *repository) Update(ctx context.Context, id int64, u User, passwordHash string) error {
	var err error
	if passwordHash != "" {
		_, err = r.db.Exec(ctx, `UPDATE users SET name = $1, email = $2, role = $3, password = $4 WHERE id = $5`,
			u.Name, u.Email, u.Role, passwordHash, id)
	} else {
		_, err = r.db.Exec(ctx, `UPDATE users SET name = $1, email = $2, role = $3 WHERE id = $4`,
			u.Name, u.Email, u.Role, id)
	}
	return mapConstraint(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
