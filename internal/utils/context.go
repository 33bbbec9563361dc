package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/types"
)

func GetCurrentAdmin(ctx *gin.Context) (*models.Admin, error) {
	admin, exists := ctx.Get(types.ContextAdminKey)

	if !exists {
		return nil, fmt.Errorf("Admin not authenticated")
	}

	authenticated, ok := admin.(*models.Admin)

	if !ok || authenticated == nil {
		return nil, fmt.Errorf("Invalid admin type in context")
	}

	return authenticated, nil
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}
