package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/types"
	"github.com/solarworks/solarworks/internal/utils"
	"github.com/solarworks/solarworks/internal/validation"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func bindError(ctx *gin.Context, err error) {
	var verr *validation.Error

	if errors.As(validation.Translate(err), &verr) {
		utils.RespondError(ctx, http.StatusBadRequest, verr.Error())
		return
	}

	utils.RespondError(ctx, http.StatusBadRequest, "Invalid request")
}

func (h *Handler) Register(ctx *gin.Context) {
	if !h.opts.AllowRegister {
		utils.RespondError(ctx, http.StatusForbidden, "Registration is disabled")
		return
	}

	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	email := auth.NormalizeEmail(req.Email)

	_, err := h.store.GetAdminByEmail(ctx.Request.Context(), email)

	if err == nil {
		utils.RespondError(ctx, http.StatusBadRequest, "Email already exists")
		return
	}

	if !errors.Is(err, store.ErrNotFound) {
		utils.RespondInternal(ctx, err, "Database error when checking existing admin")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to hash password")
		return
	}

	admin := models.Admin{
		Email:    email,
		Password: passwordHash,
		Name:     req.Name,
	}

	err = h.store.CreateAdmin(ctx.Request.Context(), &admin)

	if errors.Is(err, store.ErrDuplicate) {
		utils.RespondError(ctx, http.StatusBadRequest, "Email already exists")
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to create admin")
		return
	}

	token, err := h.issuer.GenerateJWT(admin.ID, admin.Email)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to generate JWT")
		return
	}

	logging.Info().Str("admin", admin.Email).Msg("Registered admin")

	ctx.JSON(http.StatusCreated, types.AuthResponse{
		Token: token,
		Admin: types.NewAdminResponse(&admin),
	})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	admin, err := h.store.GetAdminByEmail(ctx.Request.Context(), auth.NormalizeEmail(req.Email))

	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(ctx, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err != nil {
		utils.RespondInternal(ctx, err, "Database error when fetching admin")
		return
	}

	if !auth.CheckPassword(admin.Password, req.Password) {
		utils.RespondError(ctx, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.issuer.GenerateJWT(admin.ID, admin.Email)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to generate JWT")
		return
	}

	ctx.JSON(http.StatusOK, types.AuthResponse{
		Token: token,
		Admin: types.NewAdminResponse(admin),
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "Admin not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"admin": types.NewAdminResponse(admin)})
}
