package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/domain/validation"
	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/geocoder89/bookshelf/internal/utils"
	"github.com/gin-gonic/gin"
)

type BookStore interface {
	Create(ctx context.Context, ownerID string, req book.CreateRequest) (book.Book, error)
	ListByOwner(ctx context.Context, ownerID string) ([]book.Book, error)
	Get(ctx context.Context, ownerID, id string) (book.Book, error)
	Update(ctx context.Context, ownerID, id string, req book.UpdateRequest) (book.Book, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type BooksHandler struct {
	books BookStore
	errs  ErrorPolicy
}

func NewBooksHandler(books BookStore, errs ErrorPolicy) *BooksHandler {
	return &BooksHandler{books: books, errs: errs}
}

func (h *BooksHandler) CreateBook(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	var req book.CreateRequest

	if !BindJSONWithMessage(ctx, &req, book.MsgMissingFields) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	b, err := h.books.Create(cctx, ownerID, req)
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			respondBookValidation(ctx, vErr, book.MsgMissingFields)
			return
		}

		h.errs.RespondStoreError(ctx, "Could not create book", err)
		return
	}

	ctx.JSON(http.StatusCreated, b)
}

func (h *BooksHandler) ListBooks(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	books, err := h.books.ListByOwner(cctx, ownerID)
	if err != nil {
		h.errs.RespondStoreError(ctx, "Could not list books", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, books)
}

func (h *BooksHandler) GetBookByID(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	id, ok := bookIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	b, err := h.books.Get(cctx, ownerID, id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}

		h.errs.RespondStoreError(ctx, "Could not get book", err)
		return
	}

	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) UpdateBook(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	id, ok := bookIDParam(ctx)
	if !ok {
		return
	}

	var req book.UpdateRequest

	if !BindJSONWithMessage(ctx, &req, book.MsgMissingUpdate) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	b, err := h.books.Update(cctx, ownerID, id, req)
	if err != nil {
		var vErr *validation.Error

		switch {
		case errors.As(err, &vErr):
			respondBookValidation(ctx, vErr, book.MsgMissingUpdate)
		case errors.Is(err, book.ErrNotFound):
			RespondNotFound(ctx, "Book not found")
		default:
			h.errs.RespondStoreError(ctx, "Could not update book", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    b,
	})
}

func (h *BooksHandler) DeleteBook(ctx *gin.Context) {
	ownerID, ok := requireOwner(ctx)
	if !ok {
		return
	}

	id, ok := bookIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.books.Delete(cctx, ownerID, id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}

		h.errs.RespondStoreError(ctx, "Could not delete book", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func requireOwner(ctx *gin.Context) (string, bool) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized, no token")
		return "", false
	}

	return ownerID, true
}

func bookIDParam(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondError(ctx, http.StatusBadRequest, "invalid_id", "Invalid book id", nil)
		return "", false
	}

	return id, true
}

// A bad drive link on its own gets a dedicated message; anything else is
// reported as missing fields.
func respondBookValidation(ctx *gin.Context, vErr *validation.Error, missing string) {
	msg := missing
	if book.IsDriveLinkOnly(vErr) {
		msg = book.MsgInvalidDriveLink
	}

	RespondValidation(ctx, msg, vErr)
}
