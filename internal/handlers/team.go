package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/utils"
	"github.com/solarworks/solarworks/internal/validation"
)

type ReorderItem struct {
	ID           string `json:"id" binding:"required"`
	DisplayOrder *int   `json:"displayOrder" binding:"required,min=0"`
}

func applyTeamFields(p *utils.Payload, member *models.TeamMember) {
	assignString(p, "name", &member.Name)
	assignString(p, "role", &member.Role)
	assignString(p, "bio", &member.Bio)
	assignString(p, "profileImage", &member.ProfileImage)
	assignString(p, "cvUrl", &member.CVURL)

	if links, ok := p.Object("socialLinks"); ok {
		member.SocialLinks = models.SocialLinks{
			LinkedIn:  links["linkedin"],
			Twitter:   links["twitter"],
			Facebook:  links["facebook"],
			Instagram: links["instagram"],
			Website:   links["website"],
		}
	}
}

func (h *Handler) ListTeamMembers(ctx *gin.Context) {
	members, err := h.store.ListTeamMembers(ctx.Request.Context())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to list team members")
		return
	}

	if members == nil {
		members = []models.TeamMember{}
	}

	ctx.JSON(http.StatusOK, members)
}

func (h *Handler) GetTeamMember(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "team member")
	if !ok {
		return
	}

	member, err := h.store.GetTeamMember(ctx.Request.Context(), id)

	if err != nil {
		h.storeFailed(ctx, err, "Team member not found", "Failed to fetch team member")
		return
	}

	ctx.JSON(http.StatusOK, member)
}

// CreateTeamMember appends the member after the current last position unless
// displayOrder is given.
func (h *Handler) CreateTeamMember(ctx *gin.Context) {
	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	var member models.TeamMember
	applyTeamFields(payload, &member)

	order, hasOrder, err := payload.Int("displayOrder")

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	member.DisplayOrder = order

	if err := validation.ValidateStruct(&member); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	rc := ctx.Request.Context()

	if !hasOrder {
		highest, err := h.store.MaxTeamDisplayOrder(rc)
		if err != nil {
			utils.RespondInternal(ctx, err, "Failed to read team display order")
			return
		}
		member.DisplayOrder = highest + 1
	}

	sent := member.ProfileImage
	member.ProfileImage = h.images.Resolve(rc, member.ProfileImage)

	if err := h.store.CreateTeamMember(rc, &member); err != nil {
		h.images.ReleaseUploaded(rc, []string{sent}, []string{member.ProfileImage})
		utils.RespondInternal(ctx, err, "Failed to create team member")
		return
	}

	h.publish(ctx, services.ResourceTeamMember, services.ActionCreate, member.ID, member.Name)

	ctx.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateTeamMember(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "team member")
	if !ok {
		return
	}

	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	existing, err := h.store.GetTeamMember(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Team member not found", "Failed to fetch team member")
		return
	}

	member := *existing
	applyTeamFields(payload, &member)

	order, hasOrder, err := payload.Int("displayOrder")

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if hasOrder {
		member.DisplayOrder = order
	}

	if err := validation.ValidateStruct(&member); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	sent := member.ProfileImage

	if payload.Has("profileImage") {
		member.ProfileImage = h.images.Resolve(rc, member.ProfileImage)
	}

	if err := h.store.UpdateTeamMember(rc, &member); err != nil {
		h.images.ReleaseUploaded(rc, []string{sent}, []string{member.ProfileImage})
		h.storeFailed(ctx, err, "Team member not found", "Failed to update team member")
		return
	}

	if existing.ProfileImage != member.ProfileImage {
		h.images.Release(rc, existing.ProfileImage)
	}

	h.publish(ctx, services.ResourceTeamMember, services.ActionUpdate, member.ID, member.Name)

	ctx.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteTeamMember(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "team member")
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	member, err := h.store.GetTeamMember(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Team member not found", "Failed to fetch team member")
		return
	}

	if err := h.store.DeleteTeamMember(rc, id); err != nil {
		h.storeFailed(ctx, err, "Team member not found", "Failed to delete team member")
		return
	}

	h.images.Release(rc, member.ProfileImage)

	h.publish(ctx, services.ResourceTeamMember, services.ActionDelete, member.ID, member.Name)

	utils.RespondMessage(ctx, "Team member deleted successfully")
}

// ReorderTeamMembers applies a batch of display positions. Every id is checked
// before anything is written.
func (h *Handler) ReorderTeamMembers(ctx *gin.Context) {
	var items []ReorderItem

	if err := ctx.ShouldBindJSON(&items); err != nil {
		bindError(ctx, err)
		return
	}

	if len(items) == 0 {
		utils.RespondError(ctx, http.StatusBadRequest, "At least one item is required")
		return
	}

	rc := ctx.Request.Context()
	ids := make([]primitive.ObjectID, len(items))

	for i, item := range items {
		id, err := primitive.ObjectIDFromHex(item.ID)

		if err != nil {
			utils.RespondError(ctx, http.StatusBadRequest, "Invalid team member ID")
			return
		}

		if _, err := h.store.GetTeamMember(rc, id); err != nil {
			h.storeFailed(ctx, err, "Team member not found", "Failed to fetch team member")
			return
		}

		ids[i] = id
	}

	for i, item := range items {
		if err := h.store.SetTeamDisplayOrder(rc, ids[i], *item.DisplayOrder); err != nil {
			h.storeFailed(ctx, err, "Team member not found", "Failed to reorder team members")
			return
		}
	}

	members, err := h.store.ListTeamMembers(rc)

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to list team members")
		return
	}

	h.publish(ctx, services.ResourceTeamMember, services.ActionReorder, primitive.NilObjectID, "")

	ctx.JSON(http.StatusOK, members)
}
