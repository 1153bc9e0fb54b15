package pmjobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftlog/liftlog/internal/shared"
)

// Repository defines persistence operations for PM jobs.
type Repository interface {
	List(ctx context.Context) ([]PMJob, error)
	Get(ctx context.Context, id int64) (*PMJob, error)
	Create(ctx context.Context, job PMJob, technicianIDs []int64) (int64, error)
	Update(ctx context.Context, job PMJob, technicianIDs []int64) error
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

const jobColumns = `j.id, j.forklift_id, j.date, j.report_no, j.job_desc, COALESCE(j.recommendation, ''), j.next_pm_date, j.created_by, f.eq_no, f.brand`

func (r *repository) List(ctx context.Context) ([]PMJob, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM pm_jobs j JOIN forklifts f ON f.id = j.forklift_id ORDER BY j.date DESC, j.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []PMJob
	index := make(map[int64]int)
	for rows.Next() {
		var j PMJob
		if err := rows.Scan(&j.ID, &j.ForkliftID, &j.Date, &j.ReportNo, &j.JobDesc, &j.Recommendation, &j.NextPMDate, &j.CreatedBy, &j.ForkliftEqNo, &j.ForkliftBrand); err != nil {
			return nil, err
		}
		index[j.ID] = len(jobs)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadAssignments(ctx, jobs, index); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*PMJob, error) {
	var j PMJob
	err := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM pm_jobs j JOIN forklifts f ON f.id = j.forklift_id WHERE j.id = $1`, id).
		Scan(&j.ID, &j.ForkliftID, &j.Date, &j.ReportNo, &j.JobDesc, &j.Recommendation, &j.NextPMDate, &j.CreatedBy, &j.ForkliftEqNo, &j.ForkliftBrand)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	jobs := []PMJob{j}
	if err := r.loadAssignments(ctx, jobs, map[int64]int{j.ID: 0}); err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

func (r *repository) loadAssignments(ctx context.Context, jobs []PMJob, index map[int64]int) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	rows, err := r.db.Query(ctx, `SELECT a.id, a.job_id, a.user_id, u.id, u.name
		FROM pm_job_assignments a
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
	return rows.Err()
}

func (r *repository) Create(ctx context.Context, job PMJob, technicianIDs []int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO pm_jobs (forklift_id, date, report_no, job_desc, recommendation, next_pm_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		job.ForkliftID, job.Date, job.ReportNo, job.JobDesc, job.Recommendation, job.NextPMDate, job.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := insertAssignments(ctx, tx, id, technicianIDs); err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

// Update rewrites the job row and replaces its assignments wholesale,
// delete-all-then-insert, inside one transaction.
func (r *repository) Update(ctx context.Context, job PMJob, technicianIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE pm_jobs SET forklift_id = $1, date = $2, report_no = $3, job_desc = $4, recommendation = $5, next_pm_date = $6 WHERE id = $7`,
		job.ForkliftID, job.Date, job.ReportNo, job.JobDesc, job.Recommendation, job.NextPMDate, job.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM pm_job_assignments WHERE job_id = $1`, job.ID); err != nil {
		return err
	}
	if err := insertAssignments(ctx, tx, job.ID, technicianIDs); err != nil {
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

	if _, err := tx.Exec(ctx, `DELETE FROM pm_job_assignments WHERE job_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM pm_jobs WHERE id = $1`, id); err != nil {
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

func insertAssignments(ctx context.Context, tx pgx.Tx, jobID int64, technicianIDs []int64) error {
	for _, userID := range technicianIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO pm_job_assignments (job_id, user_id) VALUES ($1, $2)`, jobID, userID); err != nil {
			return err
		}
	}
	return nil
}
