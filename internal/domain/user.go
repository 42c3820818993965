package domain

import (
	"context"
	"time"
)

// User is a provider account. Providers own events and manage their
// participant lists; the public never gets an account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(email, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher hashes and verifies account passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// UserRepository defines the interface for provider account storage.
// Email uniqueness is enforced here (unique index), not in the workflow.
type UserRepository interface {
	// Create stores the user and sets its ID. Returns ErrDuplicateEmail
	// if the email is already taken.
	Create(ctx context.Context, user *User) error
	// GetByEmail returns ErrUserNotFound if no account matches.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthService defines registration, login, and logout for providers.
type AuthService interface {
	// Register creates a provider account. The password is validated
	// against the strength policy and stored only as a bcrypt hash.
	Register(ctx context.Context, email, password string) (*User, error)
	// Login verifies credentials and issues a new session. Unknown email
	// and wrong password are both reported as ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)
	// Logout destroys the session identified by token.
	Logout(ctx context.Context, token string) error
}
