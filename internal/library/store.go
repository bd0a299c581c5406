// Package library is the owner-scoped book store. Every operation takes the
// caller's user id and never reaches another owner's books.
package library

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bookshelf/internal/cache"
	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/utils"
)

var ErrNoOwner = errors.New("owner id is required")

type Repository interface {
	Create(ctx context.Context, b book.Book) error
	ListByOwner(ctx context.Context, ownerID string) ([]book.Book, error)
	GetByID(ctx context.Context, ownerID, id string) (book.Book, error)
	Update(ctx context.Context, b book.Book) (book.Book, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type CacheObserver interface {
	ObserveCache(name string, hit bool)
}

const listCacheName = "books_list"

type Store struct {
	repo    Repository
	lists   cache.BookLists
	metrics CacheObserver
	gens    *generations
	now     func() time.Time
}

// NewStore wires the store. lists and metrics may be nil.
func NewStore(repo Repository, lists cache.BookLists, metrics CacheObserver) *Store {
	if lists == nil {
		lists = cache.NopBookLists{}
	}

	return &Store{
		repo:    repo,
		lists:   lists,
		metrics: metrics,
		gens:    newGenerations(),
		now:     time.Now,
	}
}

func (s *Store) Create(ctx context.Context, ownerID string, req book.CreateRequest) (book.Book, error) {
	if ownerID == "" {
		return book.Book{}, ErrNoOwner
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return book.Book{}, err
	}

	b := book.NewFromCreateRequest(ownerID, req)

	if err := s.repo.Create(ctx, b); err != nil {
		return book.Book{}, err
	}

	s.invalidate(ctx, ownerID)

	return b, nil
}

// ListByOwner returns the owner's books in creation order, served from the
// list cache when possible. A missing owner gets an empty list.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]book.Book, error) {
	if ownerID == "" {
		return []book.Book{}, nil
	}

	if cached, ok := s.lists.Get(ctx, ownerID); ok {
		s.observe(true)
		return cached, nil
	}
	s.observe(false)

	gen := s.gens.current(ownerID)

	books, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []book.Book{}
	}

	s.gens.fillIf(ownerID, gen, func() {
		s.lists.Set(ctx, ownerID, books)
	})

	return books, nil
}

// Get returns book.ErrNotFound both for missing ids and for books owned by
// someone else.
func (s *Store) Get(ctx context.Context, ownerID, id string) (book.Book, error) {
	if ownerID == "" || !utils.IsUUID(id) {
		return book.Book{}, book.ErrNotFound
	}

	return s.repo.GetByID(ctx, ownerID, id)
}

func (s *Store) Update(ctx context.Context, ownerID, id string, req book.UpdateRequest) (book.Book, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return book.Book{}, err
	}

	current, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return book.Book{}, err
	}

	current.Apply(req, s.now().UTC())

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return book.Book{}, err
	}

	s.invalidate(ctx, ownerID)

	return updated, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" || !utils.IsUUID(id) {
		return book.ErrNotFound
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)

	return nil
}

// DeleteAllForOwner removes every book of an owner, used when an account is deleted.
func (s *Store) DeleteAllForOwner(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, ErrNoOwner
	}

	n, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, ownerID)

	return n, nil
}

func (s *Store) invalidate(ctx context.Context, ownerID string) {
	s.gens.bump(ownerID)
	s.lists.Invalidate(ctx, ownerID)
}

func (s *Store) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCache(listCacheName, hit)
	}
}
