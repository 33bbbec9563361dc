package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/utils"
	"github.com/solarworks/solarworks/internal/validation"
)

func (h *Handler) ListHomepageVideos(ctx *gin.Context) {
	videos, err := h.store.ListHomepageVideos(ctx.Request.Context())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to list homepage videos")
		return
	}

	if videos == nil {
		videos = []models.HomepageVideo{}
	}

	ctx.JSON(http.StatusOK, videos)
}

func (h *Handler) GetActiveHomepageVideo(ctx *gin.Context) {
	video, err := h.store.GetActiveHomepageVideo(ctx.Request.Context())

	if err != nil {
		h.storeFailed(ctx, err, "No active homepage video", "Failed to fetch active homepage video")
		return
	}

	ctx.JSON(http.StatusOK, video)
}

func (h *Handler) GetHomepageVideo(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "homepage video")
	if !ok {
		return
	}

	video, err := h.store.GetHomepageVideo(ctx.Request.Context(), id)

	if err != nil {
		h.storeFailed(ctx, err, "Homepage video not found", "Failed to fetch homepage video")
		return
	}

	ctx.JSON(http.StatusOK, video)
}

// CreateHomepageVideo requires either an uploaded video file or a videoUrl.
// When the new video is active, every other video is deactivated first.
func (h *Handler) CreateHomepageVideo(ctx *gin.Context) {
	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	var video models.HomepageVideo
	assignString(payload, "title", &video.Title)
	assignString(payload, "subtitle", &video.Subtitle)
	assignString(payload, "videoUrl", &video.VideoURL)
	video.IsActive, _ = payload.Bool("isActive")

	fh := payload.File("video")

	if fh == nil && strings.TrimSpace(video.VideoURL) == "" {
		utils.RespondError(ctx, http.StatusBadRequest, "A video file or videoUrl is required")
		return
	}

	if !h.checkVideoURL(ctx, "videoUrl", video.VideoURL, "") {
		return
	}

	uploaded := ""

	if fh != nil {
		url, ok := h.saveVideo(ctx, fh)
		if !ok {
			return
		}
		video.VideoURL = url
		uploaded = url
	}

	if err := validation.ValidateStruct(&video); err != nil {
		h.videos.Release(uploaded)
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	rc := ctx.Request.Context()

	if video.IsActive {
		if err := h.store.DeactivateHomepageVideos(rc, primitive.NilObjectID); err != nil {
			h.videos.Release(uploaded)
			utils.RespondInternal(ctx, err, "Failed to deactivate homepage videos")
			return
		}
	}

	if err := h.store.CreateHomepageVideo(rc, &video); err != nil {
		h.videos.Release(uploaded)
		utils.RespondInternal(ctx, err, "Failed to create homepage video")
		return
	}

	h.publish(ctx, services.ResourceHomepageVideo, services.ActionCreate, video.ID, video.Title)

	ctx.JSON(http.StatusCreated, video)
}

func (h *Handler) UpdateHomepageVideo(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "homepage video")
	if !ok {
		return
	}

	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	existing, err := h.store.GetHomepageVideo(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Homepage video not found", "Failed to fetch homepage video")
		return
	}

	video := *existing
	assignString(payload, "title", &video.Title)
	assignString(payload, "subtitle", &video.Subtitle)

	if active, ok := payload.Bool("isActive"); ok {
		video.IsActive = active
	}

	if url, ok := payload.String("videoUrl"); ok && strings.TrimSpace(url) != "" {
		if !h.checkVideoURL(ctx, "videoUrl", url, existing.VideoURL) {
			return
		}
		video.VideoURL = url
	}

	uploaded := ""

	if fh := payload.File("video"); fh != nil {
		url, ok := h.saveVideo(ctx, fh)
		if !ok {
			return
		}
		video.VideoURL = url
		uploaded = url
	}

	if err := validation.ValidateStruct(&video); err != nil {
		h.videos.Release(uploaded)
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if video.IsActive {
		if err := h.store.DeactivateHomepageVideos(rc, video.ID); err != nil {
			h.videos.Release(uploaded)
			utils.RespondInternal(ctx, err, "Failed to deactivate homepage videos")
			return
		}
	}

	if err := h.store.UpdateHomepageVideo(rc, &video); err != nil {
		h.videos.Release(uploaded)
		h.storeFailed(ctx, err, "Homepage video not found", "Failed to update homepage video")
		return
	}

	if existing.VideoURL != video.VideoURL {
		h.videos.Release(existing.VideoURL)
	}

	h.publish(ctx, services.ResourceHomepageVideo, services.ActionUpdate, video.ID, video.Title)

	ctx.JSON(http.StatusOK, video)
}

func (h *Handler) DeleteHomepageVideo(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "homepage video")
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	video, err := h.store.GetHomepageVideo(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Homepage video not found", "Failed to fetch homepage video")
		return
	}

	if err := h.store.DeleteHomepageVideo(rc, id); err != nil {
		h.storeFailed(ctx, err, "Homepage video not found", "Failed to delete homepage video")
		return
	}

	h.videos.Release(video.VideoURL)

	h.publish(ctx, services.ResourceHomepageVideo, services.ActionDelete, video.ID, video.Title)

	utils.RespondMessage(ctx, "Homepage video deleted successfully")
}
