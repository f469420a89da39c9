package seed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"medstock/m/domain"
	"medstock/m/internal/auth"
	"medstock/m/internal/store"
)

// EnsureAdmin creates the initial administrator unless a user with that
// username exists. An empty password disables seeding.
func EnsureAdmin(ctx context.Context, users store.Users, username, password string) {
	if username == "" || password == "" {
		return
	}
	_, err := users.UserByUsername(ctx, username)
	if err == nil {
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Printf("unable to look up admin user: %v", err)
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("unable to hash admin password: %v", err)
		return
	}
	err = users.CreateUser(ctx, domain.Credentials{
		User: domain.User{
			ID:        uuid.NewString(),
			Username:  username,
			Role:      domain.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: hashed,
	})
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		log.Printf("unable to create admin user: %v", err)
		return
	}
	log.Printf("seeded admin user %s", username)
}
