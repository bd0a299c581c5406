// Package credentials owns user accounts. Raw passwords enter here and leave
// only as bcrypt hashes.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/bookshelf/internal/domain/user"
	"github.com/geocoder89/bookshelf/internal/domain/validation"
	"github.com/geocoder89/bookshelf/internal/utils"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hash string) (bool, error)
	DummyVerify(ctx context.Context, plain string) (bool, error)
}

// Patch lists profile changes; nil fields stay as they are.
type Patch struct {
	Name     *string
	Password *string
}

type Store struct {
	repo   Repository
	hasher PasswordHasher
	now    func() time.Time
}

func NewStore(repo Repository, hasher PasswordHasher) *Store {
	return &Store{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (user.User, error) {
	email = user.NormalizeEmail(email)
	if email == "" {
		return user.User{}, user.ErrNotFound
	}

	return s.repo.GetByEmail(ctx, email)
}

func (s *Store) FindByID(ctx context.Context, id string) (user.User, error) {
	if !utils.IsUUID(id) {
		return user.User{}, user.ErrNotFound
	}

	return s.repo.GetByID(ctx, id)
}

// Create validates, hashes and stores a new account. A taken email yields
// user.ErrDuplicateEmail whether the lookup or the unique index catches it.
func (s *Store) Create(ctx context.Context, name, email, rawPassword string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = user.NormalizeEmail(email)

	if err := user.ValidateRegistration(name, email, rawPassword); err != nil {
		return user.User{}, err
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return user.User{}, user.ErrDuplicateEmail
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(ctx, rawPassword)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Authenticate returns user.ErrInvalidCredentials for an unknown email and for
// a wrong password alike, and spends a bcrypt comparison in both cases. When
// no comparison could run (ctx done while waiting for the hasher) the hasher's
// error is returned instead.
func (s *Store) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			if _, err := s.hasher.DummyVerify(ctx, password); err != nil {
				return user.User{}, fmt.Errorf("verify password: %w", err)
			}
			return user.User{}, user.ErrInvalidCredentials
		}
		return user.User{}, err
	}

	ok, err := s.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return user.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return user.User{}, user.ErrInvalidCredentials
	}

	return u, nil
}

// Update applies a profile patch. The stored hash is reused untouched unless a
// new password is supplied, so an unchanged password is never hashed twice.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (user.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			v := &validation.Error{}
			v.Add("name", "required", "is required")
			return user.User{}, v
		}
		u.Name = name
	}

	if patch.Password != nil {
		if err := user.ValidatePassword(*patch.Password); err != nil {
			return user.User{}, err
		}

		hash, err := s.hasher.Hash(ctx, *patch.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	u.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, u)
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	if !utils.IsUUID(id) {
		return user.ErrNotFound
	}

	return s.repo.Delete(ctx, id)
}
