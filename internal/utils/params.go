package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetObjectID parses the ":id" path parameter. label names the resource in the
// error, e.g. "project" yields "Invalid project ID".
func GetObjectID(ctx *gin.Context, label string) (primitive.ObjectID, error) {
	raw := ctx.Param("id")

	if raw == "" {
		return primitive.NilObjectID, fmt.Errorf("%s ID not found", label)
	}

	id, err := primitive.ObjectIDFromHex(raw)

	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("Invalid %s ID", label)
	}

	return id, nil
}
