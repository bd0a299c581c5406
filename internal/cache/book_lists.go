package cache

import (
	"context"
	"slices"
	"time"

	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/utils"
)

// BookLists caches each owner's full book list. Implementations treat backend
// failures as misses; the database stays the source of truth.
type BookLists interface {
	Get(ctx context.Context, ownerID string) ([]book.Book, bool)
	Set(ctx context.Context, ownerID string, books []book.Book)
	Invalidate(ctx context.Context, ownerID string)
}

// MemoryBookLists keeps lists in the process. Used in dev, tests and when no
// Redis address is configured.
type MemoryBookLists struct {
	c *Cache
}

func NewMemoryBookLists(ttl time.Duration) *MemoryBookLists {
	return &MemoryBookLists{c: New(ttl)}
}

func (m *MemoryBookLists) Get(_ context.Context, ownerID string) ([]book.Book, bool) {
	v, ok := m.c.Get(utils.BuildBooksListCacheKey(ownerID))
	if !ok {
		return nil, false
	}

	books, ok := v.([]book.Book)
	if !ok {
		return nil, false
	}

	// callers may append to or sort the result
	return slices.Clone(books), true
}

func (m *MemoryBookLists) Set(_ context.Context, ownerID string, books []book.Book) {
	m.c.Set(utils.BuildBooksListCacheKey(ownerID), slices.Clone(books))
}

func (m *MemoryBookLists) Invalidate(_ context.Context, ownerID string) {
	m.c.Delete(utils.BuildBooksListCacheKey(ownerID))
}

// NopBookLists disables caching.
type NopBookLists struct{}

func (NopBookLists) Get(context.Context, string) ([]book.Book, bool) { return nil, false }
func (NopBookLists) Set(context.Context, string, []book.Book)        {}
func (NopBookLists) Invalidate(context.Context, string)              {}
