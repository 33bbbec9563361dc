package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/types"
	"github.com/solarworks/solarworks/internal/utils"
)

// AuthMiddleware requires a bearer token and loads the admin it names.
// Websocket upgrades may pass the token as a "token" query parameter because
// browsers cannot set headers on them.
func AuthMiddleware(issuer *auth.Issuer, admins store.AdminStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := ""
		authHeader := ctx.GetHeader("Authorization")

		switch {
		case authHeader != "":
			parts := strings.SplitN(authHeader, " ", 2)

			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.RespondError(ctx, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			tokenString = strings.TrimSpace(parts[1])
		case ctx.IsWebsocket():
			tokenString = ctx.Query("token")
		}

		if tokenString == "" {
			utils.RespondError(ctx, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		claims, err := issuer.VerifyJWT(tokenString)

		if err != nil {
			utils.RespondError(ctx, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		admin, err := admins.GetAdminByID(ctx.Request.Context(), claims.AdminID)

		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(ctx, http.StatusUnauthorized, "Admin not found")
			return
		}

		if err != nil {
			utils.RespondInternal(ctx, err, "Failed to load admin for token")
			return
		}

		ctx.Set(types.ContextAdminKey, admin)
		ctx.Next()
	}
}
