package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		name       string
		principal  *Principal
		admin      bool
		supervisor bool
		standard   bool
	}{
		{"nil principal", nil, false, false, false},
		{"admin", &Principal{ID: 1, Role: "admin"}, true, false, false},
		{"admin mixed case", &Principal{ID: 1, Role: " Admin "}, true, false, false},
		{"supervisor", &Principal{ID: 2, Role: "supervisor"}, false, true, false},
		{"teknisi", &Principal{ID: 3, Role: "teknisi"}, false, false, true},
		{"legacy user role", &Principal{ID: 3, Role: "USER"}, false, false, true},
		{"garbled role", &Principal{ID: 4, Role: "superuser"}, false, false, false},
		{"empty role", &Principal{ID: 5}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, IsAdmin(tt.principal))
			assert.Equal(t, tt.supervisor, IsSupervisor(tt.principal))
			assert.Equal(t, tt.standard, IsStandardUser(tt.principal))
		})
	}
}

type fakeJob struct {
	refs []AssignmentRef
}

func (j fakeJob) AssignmentRefs() []AssignmentRef { return j.refs }

func TestIsAssignedTo(t *testing.T) {
	job := fakeJob{refs: []AssignmentRef{
		{ID: 100, UserID: int64(5)},
		{ID: 101, User: &UserRef{ID: 9}},
	}}

	t.Run("assigned technician", func(t *testing.T) {
		assert.True(t, IsAssignedTo(&Principal{ID: 5, Role: "teknisi"}, job))
		assert.True(t, IsAssignedTo(&Principal{ID: 9, Role: "teknisi"}, job))
	})

	t.Run("unassigned technician", func(t *testing.T) {
		assert.False(t, IsAssignedTo(&Principal{ID: 6, Role: "teknisi"}, job))
	})

	t.Run("admin and supervisor bypass", func(t *testing.T) {
		empty := fakeJob{}
		assert.True(t, IsAssignedTo(&Principal{ID: 1, Role: "admin"}, empty))
		assert.True(t, IsAssignedTo(&Principal{ID: 2, Role: "supervisor"}, empty))
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.False(t, IsAssignedTo(nil, job))
		assert.False(t, IsAssignedTo(&Principal{ID: 5, Role: "teknisi"}, nil))
		assert.False(t, IsAssignedTo(&Principal{ID: 0, Role: "teknisi"}, job))
		assert.False(t, IsAssignedTo(&Principal{ID: -5, Role: "teknisi"}, job))
	})
}
