package authz

import (
	"strconv"
	"strings"
)

// UserRef is a loaded user relation on an assignment row.
type UserRef struct {
	ID int64
}

// AssignmentRef is the shape an assignment row presents to the
// resolver. UserID is loosely typed because legacy import paths surface
// ids as strings; anything that cannot be coerced to an integer is
// dropped without failing the resolution.
type AssignmentRef struct {
	ID     int64
	UserID any
	User   *UserRef
}

// Assignable is the capability a job kind implements to participate in
// assignment-based authorization.
type Assignable interface {
	AssignmentRefs() []AssignmentRef
}

// Resolver projects a job's assignments into the set of assigned user
// ids. The zero value resolves through the two primary tiers only:
// direct user id, then loaded user relation. RecordIDFallback restores
// the legacy third tier, which treats the assignment row's own id as a
// user id when the row exposes neither a user id nor a user relation.
// That tier exists for a degenerate legacy shape and stays opt-in.
type Resolver struct {
	RecordIDFallback bool
}

// Resolve computes the distinct assigned user ids. A malformed direct
// user id drops that single assignment; it never cascades to the other
// tiers and never fails the whole resolution.
func (r Resolver) Resolve(job Assignable) map[int64]struct{} {
	ids := make(map[int64]struct{})
	if job == nil {
		return ids
	}
	for _, ref := range job.AssignmentRefs() {
		if ref.UserID != nil {
			if id, ok := coerceUserID(ref.UserID); ok {
				ids[id] = struct{}{}
			}
			continue
		}
		if ref.User != nil {
			ids[ref.User.ID] = struct{}{}
			continue
		}
		if r.RecordIDFallback && ref.ID != 0 {
			ids[ref.ID] = struct{}{}
		}
	}
	return ids
}

func coerceUserID(v any) (int64, bool) {
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case int32:
		return int64(id), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
