package workshopjobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftlog/liftlog/internal/shared"
)

// Repository defines persistence operations for workshop jobs.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]WorkshopJob, int, error)
	Get(ctx context.Context, id int64) (*WorkshopJob, error)
	Create(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) (int64, error)
	Update(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) error
	Delete(ctx context.Context, id int64) error
	ListTechnicians(ctx context.Context) ([]Technician, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const jobColumns = `j.id, j.forklift_id, j.date, j.report_no, j.job_desc, COALESCE(j.notes, ''), f.eq_no, f.brand`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]WorkshopJob, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workshop_jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM workshop_jobs j JOIN forklifts f ON f.id = j.forklift_id
		ORDER BY j.date DESC, j.id DESC LIMIT $1 OFFSET $2`, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []WorkshopJob
	index := make(map[int64]int)
	for rows.Next() {
		var j WorkshopJob
		if err := rows.Scan(&j.ID, &j.ForkliftID, &j.Date, &j.ReportNo, &j.JobDesc, &j.Notes, &j.ForkliftEqNo, &j.ForkliftBrand); err != nil {
			return nil, 0, err
		}
		index[j.ID] = len(jobs)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadRelations(ctx, jobs, index); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*WorkshopJob, error) {
	var j WorkshopJob
	err := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM workshop_jobs j JOIN forklifts f ON f.id = j.forklift_id WHERE j.id = $1`, id).
		Scan(&j.ID, &j.ForkliftID, &j.Date, &j.ReportNo, &j.JobDesc, &j.Notes, &j.ForkliftEqNo, &j.ForkliftBrand)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	jobs := []WorkshopJob{j}
	if err := r.loadRelations(ctx, jobs, map[int64]int{j.ID: 0}); err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

func (r *repository) loadRelations(ctx context.Context, jobs []WorkshopJob, index map[int64]int) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}

	rows, err := r.db.Query(ctx, `SELECT a.id, a.job_id, a.user_id, u.id, u.name
		FROM workshop_job_assignments a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.job_id = ANY($1)
		ORDER BY a.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a Assignment
		var userID, refID *int64
		var refName *string
		if err := rows.Scan(&a.ID, &a.JobID, &userID, &refID, &refName); err != nil {
			return err
		}
		a.UserID = userID
		if refID != nil {
			name := ""
			if refName != nil {
				name = *refName
			}
			a.User = &AssignedUser{ID: *refID, Name: name}
		}
		if i, ok := index[a.JobID]; ok {
			jobs[i].Assignments = append(jobs[i].Assignments, a)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	itemRows, err := r.db.Query(ctx, `SELECT id, job_id, item_name, qty FROM workshop_job_items WHERE job_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.JobID, &it.Name, &it.Qty); err != nil {
			return err
		}
		if i, ok := index[it.JobID]; ok {
			jobs[i].Items = append(jobs[i].Items, it)
		}
	}
	return itemRows.Err()
}

func (r *repository) Create(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO workshop_jobs (forklift_id, date, report_no, job_desc, notes)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		job.ForkliftID, job.Date, job.ReportNo, job.JobDesc, job.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := insertRelations(ctx, tx, id, technicianIDs, items); err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

// Update rewrites the job row and replaces assignments and items
// wholesale inside one transaction.
func (r *repository) Update(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE workshop_jobs SET forklift_id = $1, date = $2, report_no = $3, job_desc = $4, notes = $5 WHERE id = $6`,
		job.ForkliftID, job.Date, job.ReportNo, job.JobDesc, job.Notes, job.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workshop_job_assignments WHERE job_id = $1`, job.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workshop_job_items WHERE job_id = $1`, job.ID); err != nil {
		return err
	}
	if err := insertRelations(ctx, tx, job.ID, technicianIDs, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workshop_job_assignments WHERE job_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workshop_job_items WHERE job_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workshop_jobs WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) ListTechnicians(ctx context.Context) ([]Technician, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM users WHERE role <> 'admin' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []Technician
	for rows.Next() {
		var t Technician
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

func insertRelations(ctx context.Context, tx pgx.Tx, jobID int64, technicianIDs []int64, items []Item) error {
	for _, userID := range technicianIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO workshop_job_assignments (job_id, user_id) VALUES ($1, $2)`, jobID, userID); err != nil {
			return err
		}
	}
	for _, item := range items {
		if _, err := tx.Exec(ctx, `INSERT INTO workshop_job_items (job_id, item_name, qty) VALUES ($1, $2, $3)`, jobID, item.Name, item.Qty); err != nil {
			return err
		}
	}
	return nil
}
