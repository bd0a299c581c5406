package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/bookshelf/internal/domain/book"
)

type storedBook struct {
	book.Book
	seq uint64
}

// BooksRepo keeps books in a map and remembers insertion order so listings
// come back in creation order like the Postgres repo.
type BooksRepo struct {
	mu    sync.RWMutex
	seq   uint64
	items map[string]storedBook
}

func NewBooksRepo() *BooksRepo {
	return &BooksRepo{
		items: make(map[string]storedBook),
	}
}

func (r *BooksRepo) Create(_ context.Context, b book.Book) error {
	r.mu.Lock()
	r.seq++
	r.items[b.ID] = storedBook{Book: b, seq: r.seq}
	r.mu.Unlock()

	return nil
}

func (r *BooksRepo) ListByOwner(_ context.Context, ownerID string) ([]book.Book, error) {
	r.mu.RLock()
	owned := make([]storedBook, 0)
	for _, sb := range r.items {
		if sb.OwnerUserID == ownerID {
			owned = append(owned, sb)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })

	out := make([]book.Book, 0, len(owned))
	for _, sb := range owned {
		out = append(out, sb.Book)
	}

	return out, nil
}

func (r *BooksRepo) GetByID(_ context.Context, ownerID, id string) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sb, ok := r.items[id]
	if !ok || sb.OwnerUserID != ownerID {
		return book.Book{}, book.ErrNotFound
	}

	return sb.Book, nil
}

func (r *BooksRepo) Update(_ context.Context, b book.Book) (book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sb, ok := r.items[b.ID]
	if !ok || sb.OwnerUserID != b.OwnerUserID {
		return book.Book{}, book.ErrNotFound
	}

	// creation metadata is not updatable
	b.CreatedAt = sb.CreatedAt
	sb.Book = b
	r.items[b.ID] = sb

	return b, nil
}

func (r *BooksRepo) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sb, ok := r.items[id]
	if !ok || sb.OwnerUserID != ownerID {
		return book.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *BooksRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, sb := range r.items {
		if sb.OwnerUserID == ownerID {
			delete(r.items, id)
			n++
		}
	}

	return n, nil
}
