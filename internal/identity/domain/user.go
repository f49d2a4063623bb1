// Package domain holds the implicit user and their timer settings.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// User is the owner of every task, session and stat row. The service
// runs with a single user bootstrapped from configuration, but nothing
// here assumes there is only one.
type User struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NewUser creates a user.
func NewUser(id uuid.UUID, name string) (*User, error) {
	if id == uuid.Nil {
		return nil, sharedDomain.Validationf("user id cannot be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, sharedDomain.Validationf("user name cannot be empty")
	}
	return &User{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}
