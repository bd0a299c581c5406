package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/bookshelf/internal/domain/book"
	"github.com/geocoder89/bookshelf/internal/http/handlers"
	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type failingBooks struct {
	err error
}

func (f failingBooks) Create(context.Context, string, book.CreateRequest) (book.Book, error) {
	return book.Book{}, f.err
}
func (f failingBooks) ListByOwner(context.Context, string) ([]book.Book, error) { return nil, f.err }
func (f failingBooks) Get(context.Context, string, string) (book.Book, error) {
	return book.Book{}, f.err
}
func (f failingBooks) Update(context.Context, string, string, book.UpdateRequest) (book.Book, error) {
	return book.Book{}, f.err
}
func (f failingBooks) Delete(context.Context, string, string) error { return f.err }

func listWithPolicy(t *testing.T, expose bool) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := handlers.NewBooksHandler(
		failingBooks{err: errors.New("connection refused")},
		handlers.ErrorPolicy{ExposeInternal: expose, Log: slog.New(slog.NewTextHandler(io.Discard, nil))},
	)

	r := gin.New()
	r.GET("/books", func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, "u-1")
		c.Set(middlewares.CtxRequestID, "req-1")
		c.Next()
	}, h.ListBooks)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

	var resp struct {
		Message string            `json:"message"`
		Error   handlers.APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}
	if resp.Error.RequestID != "req-1" {
		t.Fatalf("requestId = %q", resp.Error.RequestID)
	}

	return w.Code, resp.Message
}

func TestStoreErrorExposedInDev(t *testing.T) {
	code, msg := listWithPolicy(t, true)

	if code != http.StatusInternalServerError || msg != "connection refused" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestStoreErrorMaskedOutsideDev(t *testing.T) {
	code, msg := listWithPolicy(t, false)

	if code != http.StatusInternalServerError || msg != "Could not list books" {
		t.Fatalf("got %d %q", code, msg)
	}
}

func TestBooksHandler_NoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := handlers.NewBooksHandler(failingBooks{}, handlers.ErrorPolicy{})

	r := gin.New()
	r.GET("/books", h.ListBooks)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}
