package authz

import "strings"

// Role names as stored on the user record.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleTechnician = "teknisi"
)

func normalizedRole(p *Principal) string {
	if p == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Role))
}

// IsAdmin reports whether the principal holds the admin role. Safe to
// call with nil or a garbled role; both yield false.
func IsAdmin(p *Principal) bool {
	return normalizedRole(p) == RoleAdmin
}

// IsSupervisor reports whether the principal holds the supervisor role.
func IsSupervisor(p *Principal) bool {
	return normalizedRole(p) == RoleSupervisor
}

// IsStandardUser reports whether the principal holds a standard user
// role. "teknisi" is the standard role here; "user" is accepted for
// forward compatibility.
func IsStandardUser(p *Principal) bool {
	switch normalizedRole(p) {
	case RoleTechnician, "user":
		return true
	}
	return false
}

// IsAssignedTo reports whether the principal may act on the job. Admins
// and supervisors bypass the assignment check entirely; everyone else
// must appear in the job's resolved assignment set. Nil principal, nil
// job, or a non-positive principal id all yield false. The predicate is
// kind-agnostic: anything exposing AssignmentRefs qualifies.
func IsAssignedTo(p *Principal, job Assignable) bool {
	if IsAdmin(p) || IsSupervisor(p) {
		return true
	}
	if p == nil || job == nil || p.ID <= 0 {
		return false
	}
	_, ok := (Resolver{}).Resolve(job)[p.ID]
	return ok
}
