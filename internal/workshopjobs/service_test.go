package workshopjobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liftlog/liftlog/internal/shared"
)

type stubRepo struct {
	jobs    map[int64]*WorkshopJob
	created []WorkshopJob
	items   [][]Item
	deleted []int64
}

func newStubRepo(jobs ...*WorkshopJob) *stubRepo {
	r := &stubRepo{jobs: make(map[int64]*WorkshopJob)}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *stubRepo) List(context.Context, shared.ListFilters) ([]WorkshopJob, int, error) {
	var out []WorkshopJob
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, len(out), nil
}

func (r *stubRepo) Get(_ context.Context, id int64) (*WorkshopJob, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return j, nil
}

func (r *stubRepo) Create(_ context.Context, job WorkshopJob, _ []int64, items []Item) (int64, error) {
	r.created = append(r.created, job)
	r.items = append(r.items, items)
	return int64(len(r.created)), nil
}

func (r *stubRepo) Update(_ context.Context, job WorkshopJob, _ []int64, items []Item) error {
	r.jobs[job.ID] = &job
	r.items = append(r.items, items)
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	delete(r.jobs, id)
	return nil
}

func (r *stubRepo) ListTechnicians(context.Context) ([]Technician, error) {
	return []Technician{{ID: 5, Name: "Budi"}}, nil
}

func TestServiceValidation(t *testing.T) {
	svc := NewService(newStubRepo())
	base := WorkshopJob{ForkliftID: 1, Date: time.Now(), ReportNo: "WS-001", JobDesc: "las garpu"}

	t.Run("valid job", func(t *testing.T) {
		_, err := svc.Create(context.Background(), base, []int64{5}, nil)
		assert.NoError(t, err)
	})

	t.Run("missing forklift", func(t *testing.T) {
		job := base
		job.ForkliftID = 0
		_, err := svc.Create(context.Background(), job, []int64{5}, nil)
		assert.Error(t, err)
	})

	t.Run("no technicians", func(t *testing.T) {
		_, err := svc.Create(context.Background(), base, nil, nil)
		assert.Error(t, err)
	})
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name       string
		names      []string
		quantities []string
		want       []Item
	}{
		{
			name:       "paired rows",
			names:      []string{"Oli hidrolik", "Filter"},
			quantities: []string{"2", "1"},
			want:       []Item{{Name: "Oli hidrolik", Qty: 2}, {Name: "Filter", Qty: 1}},
		},
		{
			name:       "empty name dropped",
			names:      []string{"", "Filter"},
			quantities: []string{"2", "1"},
			want:       []Item{{Name: "Filter", Qty: 1}},
		},
		{
			name:       "malformed quantity dropped",
			names:      []string{"Oli", "Filter", "Seal"},
			quantities: []string{"dua", "0", "3"},
			want:       []Item{{Name: "Seal", Qty: 3}},
		},
		{
			name:       "name without quantity dropped",
			names:      []string{"Oli", "Filter"},
			quantities: []string{"2"},
			want:       []Item{{Name: "Oli", Qty: 2}},
		},
		{
			name: "nothing submitted",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseItems(tt.names, tt.quantities))
		})
	}
}

func TestParseTechnicianIDs(t *testing.T) {
	assert.Equal(t, []int64{5}, ParseTechnicianIDs([]string{"5", "x", "-1"}))
}
