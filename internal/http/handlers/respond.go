package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/bookshelf/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondError writes the error envelope. message is repeated at the top level
// for clients that only read {success, message}.
func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// ErrorPolicy decides how much of an unexpected error reaches the client.
type ErrorPolicy struct {
	ExposeInternal bool
	Log            *slog.Logger
}

// RespondStoreError logs err and answers 500. The raw error text is only sent
// when ExposeInternal is set; otherwise the client gets fallback.
func (p ErrorPolicy) RespondStoreError(ctx *gin.Context, fallback string, err error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	log.ErrorContext(ctx.Request.Context(), "request_failed",
		"route", ctx.FullPath(),
		"err", err,
	)

	msg := fallback
	if p.ExposeInternal {
		msg = err.Error()
	}

	RespondInternal(ctx, msg)
}
