package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/types"
	"github.com/solarworks/solarworks/internal/utils"
)

// Debug marks the request so error responses include stack traces.
func Debug(enabled bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(types.ContextDebugKey, enabled)
		ctx.Next()
	}
}

// Recovery turns a panic into a 500 JSON response.
func Recovery() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			stack := debug.Stack()

			logging.Error().
				Interface("panic", recovered).
				Str("request_id", utils.GetRequestID(ctx)).
				Str("path", ctx.Request.URL.Path).
				Bytes("stack", stack).
				Msg("Recovered from panic")

			resp := types.ErrorResponse{Error: "Internal server error"}
			if ctx.GetBool(types.ContextDebugKey) {
				resp.Stack = string(stack)
			}

			if ctx.Writer.Written() {
				ctx.Abort()
				return
			}

			ctx.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		}()

		ctx.Next()
	}
}
