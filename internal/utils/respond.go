package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/types"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, types.ErrorResponse{Error: message})
}

// RespondInternal logs err and answers 500. The stack is included in the body
// only when the debug flag is set on the context.
func RespondInternal(ctx *gin.Context, err error, msg string) {
	if _, ok := err.(stackTracer); !ok {
		err = errors.WithStack(err)
	}

	logging.Error().
		Err(err).
		Str("request_id", GetRequestID(ctx)).
		Str("method", ctx.Request.Method).
		Str("path", ctx.Request.URL.Path).
		Msg(msg)

	resp := types.ErrorResponse{Error: "Internal server error"}

	if ctx.GetBool(types.ContextDebugKey) {
		resp.Stack = fmt.Sprintf("%+v", err)
	}

	ctx.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

func RespondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, types.MessageResponse{Message: message})
}
