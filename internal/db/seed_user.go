package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bookshelf/internal/config"
	"github.com/geocoder89/bookshelf/internal/domain/user"
)

type SeedUserStore interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, name, email, rawPassword string) (user.User, error)
}

// EnsureSeedUser creates the configured development account if it is missing.
// It is a no-op when no seed credentials are configured.
func EnsureSeedUser(ctx context.Context, users SeedUserStore, cfg config.Config) (created bool, err error) {
	if cfg.SeedUserEmail == "" || cfg.SeedUserPassword == "" {
		return false, nil
	}

	_, err = users.FindByEmail(ctx, cfg.SeedUserEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	_, err = users.Create(ctx, cfg.SeedUserName, cfg.SeedUserEmail, cfg.SeedUserPassword)

	// lost a race with another instance
	if errors.Is(err, user.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
