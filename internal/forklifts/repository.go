package forklifts

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftlog/liftlog/internal/shared"
)

// Repository defines persistence operations for forklifts.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Forklift, int, error)
	ListAll(ctx context.Context) ([]Forklift, error)
	Get(ctx context.Context, id int64) (Forklift, error)
	Create(ctx context.Context, f Forklift) (Forklift, error)
	Update(ctx context.Context, id int64, f Forklift) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, brand, type, eq_no, serial_number, location, powertrain, owner, mfg_year, status`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Forklift, int, error) {
	countQuery := `SELECT COUNT(*) FROM forklifts`
	query := `SELECT ` + selectColumns + ` FROM forklifts`
	args := []any{}
	countArgs := []any{}
	if filters.Search != "" {
		cond := ` WHERE (brand ILIKE $1 OR eq_no ILIKE $1 OR serial_number ILIKE $1 OR location ILIKE $1)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY eq_no ASC`
	if filters.Limit > 0 {
		n := len(args)
		query += ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Forklift
	for rows.Next() {
		var f Forklift
		if err := rows.Scan(&f.ID, &f.Brand, &f.Type, &f.EqNo, &f.SerialNumber, &f.Location, &f.Powertrain, &f.Owner, &f.MfgYear, &f.Status); err != nil {
			return nil, 0, err
		}
		result = append(result, f)
	}
	return result, total, rows.Err()
}

func (r *repository) ListAll(ctx context.Context) ([]Forklift, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM forklifts ORDER BY eq_no ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Forklift
	for rows.Next() {
		var f Forklift
		if err := rows.Scan(&f.ID, &f.Brand, &f.Type, &f.EqNo, &f.SerialNumber, &f.Location, &f.Powertrain, &f.Owner, &f.MfgYear, &f.Status); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Forklift, error) {
	var f Forklift
	err := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM forklifts WHERE id = $1`, id).
		Scan(&f.ID, &f.Brand, &f.Type, &f.EqNo, &f.SerialNumber, &f.Location, &f.Powertrain, &f.Owner, &f.MfgYear, &f.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Forklift{}, shared.ErrNotFound
	}
	return f, err
}

func (r *repository) Create(ctx context.Context, f Forklift) (Forklift, error) {
	const query = `INSERT INTO forklifts (brand, type, eq_no, serial_number, location, powertrain, owner, mfg_year, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRow(ctx, query, f.Brand, f.Type, f.EqNo, f.SerialNumber, f.Location, f.Powertrain, f.Owner, f.MfgYear, f.Status).Scan(&f.ID)
	return f, mapConstraint(err)
}

func (r *repository) Update(ctx context.Context, id int64, f Forklift) error {
	const query = `UPDATE forklifts SET brand = $1, type = $2, eq_no = $3, serial_number = $4, location = $5, powertrain = $6, owner = $7, mfg_year = $8, status = $9 WHERE id = $10`
	_, err := r.db.Exec(ctx, query, f.Brand, f.Type, f.EqNo, f.SerialNumber, f.Location, f.Powertrain, f.Owner, f.MfgYear, f.Status, id)
	return mapConstraint(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM forklifts WHERE id = $1`, id)
	return err
}

func (r *repository) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM forklifts WHERE id = ANY($1)`, ids)
	return err
}

// mapConstraint translates unique violations on eq_no/serial_number.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
