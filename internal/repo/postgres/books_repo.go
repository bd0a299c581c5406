package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/domain/user"
	"github.com/geocoder89/bookshelf/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BooksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBooksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BooksRepo {
	return &BooksRepo{
		pool: pool,
		prom: prom,
	}
}

const bookColumns = `id, owner_user_id, title, author, publish_year, photo, drive_link, created_at, updated_at`

func scanBook(row pgx.Row, b *book.Book) error {
	return row.Scan(
		&b.ID,
		&b.OwnerUserID,
		&b.Title,
		&b.Author,
		&b.PublishYear,
		&b.Photo,
		&b.DriveLink,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (r *BooksRepo) Create(ctx context.Context, b book.Book) error {
	err := r.prom.ObserveDB("books.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO books (`+bookColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			b.ID, b.OwnerUserID, b.Title, b.Author, b.PublishYear, b.Photo, b.DriveLink, b.CreatedAt, b.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// owner vanished between the auth check and the insert
		if isForeignKeyViolation(err) {
			return user.ErrNotFound
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's books in creation order.
func (r *BooksRepo) ListByOwner(ctx context.Context, ownerID string) ([]book.Book, error) {
	output := make([]book.Book, 0)

	err := r.prom.ObserveDB("books.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+bookColumns+`
			FROM books
			WHERE owner_user_id = $1
			ORDER BY created_at ASC, id ASC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b book.Book
			if err := scanBook(rows, &b); err != nil {
				return err
			}
			output = append(output, b)
		}

		return rows.Err()
	})

	if err != nil {
		if isInvalidID(err) {
			return []book.Book{}, nil
		}
		return nil, fmt.Errorf("list books: %w", err)
	}

	return output, nil
}

// GetByID fetches a book scoped to its owner. Someone else's book is a miss.
func (r *BooksRepo) GetByID(ctx context.Context, ownerID, id string) (book.Book, error) {
	var b book.Book

	err := r.prom.ObserveDB("books.get", func() error {
		return scanBook(r.pool.QueryRow(ctx,
			`SELECT `+bookColumns+` FROM books WHERE id = $1 AND owner_user_id = $2`,
			id, ownerID,
		), &b)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("get book: %w", err)
	}

	return b, nil
}

// Update overwrites the mutable fields. Concurrent updates are last-write-wins.
func (r *BooksRepo) Update(ctx context.Context, b book.Book) (book.Book, error) {
	var out book.Book

	err := r.prom.ObserveDB("books.update", func() error {
		return scanBook(r.pool.QueryRow(ctx,
			`UPDATE books
				SET title = $3,
					author = $4,
					publish_year = $5,
					photo = $6,
					drive_link = $7,
					updated_at = $8
			WHERE id = $1 AND owner_user_id = $2
			RETURNING `+bookColumns,
			b.ID, b.OwnerUserID, b.Title, b.Author, b.PublishYear, b.Photo, b.DriveLink, b.UpdatedAt,
		), &out)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, fmt.Errorf("update book: %w", err)
	}

	return out, nil
}

func (r *BooksRepo) Delete(ctx context.Context, ownerID, id string) error {
	var affected int64

	err := r.prom.ObserveDB("books.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		if isInvalidID(err) {
			return book.ErrNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return book.ErrNotFound
	}

	return nil
}

func (r *BooksRepo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	var affected int64

	err := r.prom.ObserveDB("books.delete_by_owner", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE owner_user_id = $1`, ownerID)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return 0, fmt.Errorf("delete books by owner: %w", err)
	}

	return affected, nil
}
