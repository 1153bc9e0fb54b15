package auth

// User represents a user account as loaded for credential checks.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
}
