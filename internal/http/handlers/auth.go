package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/bookshelf/internal/credentials"
	"github.com/geocoder89/bookshelf/internal/domain/user"
	"github.com/geocoder89/bookshelf/internal/domain/validation"
	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// bcrypt runs inside these calls, so they get more room than plain lookups.
const credentialTimeout = 5 * time.Second

type Accounts interface {
	Create(ctx context.Context, name, email, rawPassword string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	Update(ctx context.Context, id string, patch credentials.Patch) (user.User, error)
	DeleteByID(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type OwnedBooks interface {
	DeleteAllForOwner(ctx context.Context, ownerID string) (int64, error)
}

type AuthFailureObserver interface {
	ObserveAuthFailure(op, reason string)
}

type AuthHandler struct {
	accounts Accounts
	books    OwnedBooks
	tokens   TokenIssuer
	errs     ErrorPolicy
	metrics  AuthFailureObserver
}

func NewAuthHandler(accounts Accounts, books OwnedBooks, tokens TokenIssuer, errs ErrorPolicy, metrics AuthFailureObserver) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		books:    books,
		tokens:   tokens,
		errs:     errs,
		metrics:  metrics,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSONWithMessage(ctx, &req, "Invalid registration details") {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), credentialTimeout)
	defer cancel()

	u, err := h.accounts.Create(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		var vErr *validation.Error

		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			h.observe("register", "duplicate_email")
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email already registered", nil)
		case errors.As(err, &vErr):
			RespondValidation(ctx, "Invalid registration details", vErr)
		default:
			h.errs.RespondStoreError(ctx, "Could not create user", err)
		}
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.errs.RespondStoreError(ctx, "Could not generate access token", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSONWithMessage(ctx, &req, "Send all required fields: email, password") {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), credentialTimeout)
	defer cancel()

	u, err := h.accounts.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			h.observe("login", "invalid_credentials")
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
			return
		}

		h.errs.RespondStoreError(ctx, "Could not log in", err)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.errs.RespondStoreError(ctx, "Could not generate access token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(),
	})
}

// Delete removes the caller's books and then the caller. Tokens already issued
// stop working because the auth gate can no longer resolve the user.
func (h *AuthHandler) Delete(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized, no token")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.books.DeleteAllForOwner(cctx, userID); err != nil {
		h.errs.RespondStoreError(ctx, "Could not delete user", err)
		return
	}

	if err := h.accounts.DeleteByID(cctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.errs.RespondStoreError(ctx, "Could not delete user", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized, no token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) UpdateMe(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized, no token")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Name == nil && req.Password == nil {
		RespondBadRequest(ctx, "Nothing to update", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), credentialTimeout)
	defer cancel()

	u, err := h.accounts.Update(cctx, userID, credentials.Patch{Name: req.Name, Password: req.Password})
	if err != nil {
		var vErr *validation.Error

		switch {
		case errors.As(err, &vErr):
			RespondValidation(ctx, "Invalid profile details", vErr)
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			h.errs.RespondStoreError(ctx, "Could not update user", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) observe(op, reason string) {
	if h.metrics != nil {
		h.metrics.ObserveAuthFailure(op, reason)
	}
}
