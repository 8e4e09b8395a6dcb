package domain

import "time"

// Role determines a user's permissions within the application.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User models an account in the system. The password hash never leaves the
// server: it is excluded from JSON serialization.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserWithPosts bundles a user together with their posts. Offered as a
// distinct fetch so callers that need both avoid a second round trip.
type UserWithPosts struct {
	User  User   `json:"user"`
	Posts []Post `json:"posts"`
}

// ValidateNewUser checks the field constraints for account creation.
func ValidateNewUser(username, email, password string) error {
	var fields []FieldError
	if n := len(username); n < 3 || n > 50 {
		fields = append(fields, FieldError{Field: "username", Message: "username must be between 3 and 50 characters"})
	}
	if email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "email cannot be blank"})
	}
	if len(password) < 8 {
		fields = append(fields, FieldError{Field: "password", Message: "password must be at least 8 characters long"})
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}
