package workshopjobs

import (
	"time"

	"github.com/liftlog/liftlog/internal/authz"
)

// WorkshopJob is one workshop repair log entry.
type WorkshopJob struct {
	ID         int64
	ForkliftID int64
	Date       time.Time
	ReportNo   string
	JobDesc    string
	Notes      string

	ForkliftEqNo  string
	ForkliftBrand string
	Assignments   []Assignment
	Items         []Item
}

// AssignedUser is the loaded user relation on an assignment.
type AssignedUser struct {
	ID   int64
	Name string
}

// Assignment links a technician to a workshop job.
type Assignment struct {
	ID     int64
	JobID  int64
	UserID *int64
	User   *AssignedUser
}

// Item is one spare part used on the job. Items are replaced in bulk
// together with the assignments on edit.
type Item struct {
	ID    int64
	JobID int64
	Name  string
	Qty   int
}

// Technician is a user eligible for assignment.
type Technician struct {
	ID   int64
	Name string
}

// AssignmentRefs exposes the assignment rows to the authorization
// engine, making workshop jobs interchangeable with PM jobs there.
func (j WorkshopJob) AssignmentRefs() []authz.AssignmentRef {
	refs := make([]authz.AssignmentRef, 0, len(j.Assignments))
	for _, a := range j.Assignments {
		ref := authz.AssignmentRef{ID: a.ID}
		if a.UserID != nil {
			ref.UserID = *a.UserID
		}
		if a.User != nil {
			ref.User = &authz.UserRef{ID: a.User.ID}
		}
		refs = append(refs, ref)
	}
	return refs
}

var _ authz.Assignable = WorkshopJob{}
