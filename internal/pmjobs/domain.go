package pmjobs

import (
	"time"

	"github.com/liftlog/liftlog/internal/authz"
)

// PMJob is one preventive-maintenance log entry.
type PMJob struct {
	ID             int64
	ForkliftID     int64
	Date           time.Time
	ReportNo       string
	JobDesc        string
	Recommendation string
	NextPMDate     *time.Time
	CreatedBy      int64

	ForkliftEqNo  string
	ForkliftBrand string
	Assignments   []Assignment
}

// AssignedUser is the loaded user relation on an assignment.
type AssignedUser struct {
	ID   int64
	Name string
}

// Assignment links a technician to a PM job. Assignments are replaced
// in bulk on edit, never patched row by row.
type Assignment struct {
	ID     int64
	JobID  int64
	UserID *int64
	User   *AssignedUser
}

// Technician is a user eligible for assignment.
type Technician struct {
	ID   int64
	Name string
}

// AssignmentRefs exposes the assignment rows to the authorization
// engine.
func (j PMJob) AssignmentRefs() []authz.AssignmentRef {
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

var _ authz.Assignable = PMJob{}
