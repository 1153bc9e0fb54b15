package users

// User represents a user account for management.
type User struct {
	ID    int64
	Name  string
	Email string
	Role  string
}
