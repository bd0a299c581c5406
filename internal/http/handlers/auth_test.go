package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/bookshelf/internal/credentials"
	"github.com/geocoder89/bookshelf/internal/domain/user"
	"github.com/geocoder89/bookshelf/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeAccounts struct {
	authErr error
}

func (f fakeAccounts) Create(context.Context, string, string, string) (user.User, error) {
	return user.User{}, nil
}
func (f fakeAccounts) Authenticate(context.Context, string, string) (user.User, error) {
	return user.User{}, f.authErr
}
func (f fakeAccounts) Update(context.Context, string, credentials.Patch) (user.User, error) {
	return user.User{}, nil
}
func (f fakeAccounts) DeleteByID(context.Context, string) error { return nil }

type countingFailures struct {
	n int
}

func (c *countingFailures) ObserveAuthFailure(string, string) { c.n++ }

func login(t *testing.T, accounts handlers.Accounts, failures *countingFailures) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := handlers.NewAuthHandler(accounts, nil, nil,
		handlers.ErrorPolicy{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}, failures)

	r := gin.New()
	r.POST("/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"ann@x.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestLogin_HasherTimeoutIsServerError(t *testing.T) {
	failures := &countingFailures{}

	code := login(t, fakeAccounts{authErr: fmt.Errorf("verify password: %w", context.DeadlineExceeded)}, failures)

	if code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", code)
	}
	if failures.n != 0 {
		t.Fatalf("timeouts must not count as credential failures, got %d", failures.n)
	}
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	failures := &countingFailures{}

	code := login(t, fakeAccounts{authErr: user.ErrInvalidCredentials}, failures)

	if code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", code)
	}
	if failures.n != 1 {
		t.Fatalf("expected one recorded failure, got %d", failures.n)
	}
}
