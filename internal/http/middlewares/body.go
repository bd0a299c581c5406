package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

func carriesBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}

	// a DELETE may still send one
	return r.ContentLength > 0
}

// MaxBodyBytes caps request bodies at max bytes; max <= 0 disables the cap.
// Book photos arrive inline as base64, so the limit is sized for an image.
// A declared oversize body is refused up front; an undeclared one fails on
// read and the bind layer answers 413.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 || !carriesBody(ctx.Request) {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			abort(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large")
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}

// RequireJSON refuses write requests whose Content-Type media type is not
// application/json. Parameters such as charset are allowed.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if carriesBody(c.Request) && !isJSON(c.GetHeader("Content-Type")) {
			abort(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}

		c.Next()
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}

	mt, _, err := mime.ParseMediaType(contentType)

	return err == nil && mt == "application/json"
}
