package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarworks/solarworks/internal/types"
)

// RequestID reuses an upstream X-Request-ID or generates a UUID, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(types.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx.Header(types.RequestIDHeader, requestID)
		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Next()
	}
}
