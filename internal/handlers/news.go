package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/utils"
	"github.com/solarworks/solarworks/internal/validation"
)

var errBadPublicationDate = errors.New("publicationDate must be an RFC 3339 timestamp or YYYY-MM-DD")

func parsePublicationDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	return time.Time{}, errBadPublicationDate
}

// applyNewsFields merges request fields into news. A blank publicationDate
// leaves the current value alone.
func applyNewsFields(p *utils.Payload, news *models.News) error {
	assignString(p, "title", &news.Title)
	assignString(p, "mainImage", &news.MainImage)
	assignString(p, "summary", &news.Summary)
	assignString(p, "fullText", &news.FullText)
	assignStrings(p, "additionalImages", &news.AdditionalImages)

	if raw, ok := p.String("publicationDate"); ok && strings.TrimSpace(raw) != "" {
		date, err := parsePublicationDate(raw)
		if err != nil {
			return err
		}
		news.PublicationDate = date
	}

	return nil
}

func (h *Handler) ListNews(ctx *gin.Context) {
	news, err := h.store.ListNews(ctx.Request.Context())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to list news")
		return
	}

	if news == nil {
		news = []models.News{}
	}

	ctx.JSON(http.StatusOK, news)
}

func (h *Handler) GetNews(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "news")
	if !ok {
		return
	}

	news, err := h.store.GetNews(ctx.Request.Context(), id)

	if err != nil {
		h.storeFailed(ctx, err, "News not found", "Failed to fetch news")
		return
	}

	ctx.JSON(http.StatusOK, news)
}

func (h *Handler) CreateNews(ctx *gin.Context) {
	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	var news models.News

	if err := applyNewsFields(payload, &news); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	order, hasOrder, err := payload.Int("displayOrder")

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	news.DisplayOrder = order

	if err := validation.ValidateStruct(&news); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	rc := ctx.Request.Context()

	if !hasOrder {
		highest, err := h.store.MaxNewsDisplayOrder(rc)
		if err != nil {
			utils.RespondInternal(ctx, err, "Failed to read news display order")
			return
		}
		news.DisplayOrder = highest + 1
	}

	if news.PublicationDate.IsZero() {
		news.PublicationDate = h.now().UTC()
	}

	sent := newsImages(&news)

	news.MainImage = h.images.Resolve(rc, news.MainImage)
	news.AdditionalImages = h.images.ResolveAll(rc, news.AdditionalImages)

	if err := h.store.CreateNews(rc, &news); err != nil {
		h.images.ReleaseUploaded(rc, sent, newsImages(&news))
		utils.RespondInternal(ctx, err, "Failed to create news")
		return
	}

	h.publish(ctx, services.ResourceNews, services.ActionCreate, news.ID, news.Title)

	ctx.JSON(http.StatusCreated, news)
}

func (h *Handler) UpdateNews(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "news")
	if !ok {
		return
	}

	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	existing, err := h.store.GetNews(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "News not found", "Failed to fetch news")
		return
	}

	news := *existing

	if err := applyNewsFields(payload, &news); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	order, hasOrder, err := payload.Int("displayOrder")

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if hasOrder {
		news.DisplayOrder = order
	}

	if err := validation.ValidateStruct(&news); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	sent := newsImages(&news)

	if payload.Has("mainImage") {
		news.MainImage = h.images.Resolve(rc, news.MainImage)
	}

	if payload.Has("additionalImages") {
		news.AdditionalImages = h.images.ResolveAll(rc, news.AdditionalImages)
	}

	if err := h.store.UpdateNews(rc, &news); err != nil {
		h.images.ReleaseUploaded(rc, sent, newsImages(&news))
		h.storeFailed(ctx, err, "News not found", "Failed to update news")
		return
	}

	if existing.MainImage != news.MainImage {
		h.images.Release(rc, existing.MainImage)
	}

	h.images.ReleaseReplaced(rc, existing.AdditionalImages, news.AdditionalImages)

	h.publish(ctx, services.ResourceNews, services.ActionUpdate, news.ID, news.Title)

	ctx.JSON(http.StatusOK, news)
}

func (h *Handler) DeleteNews(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "news")
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	news, err := h.store.GetNews(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "News not found", "Failed to fetch news")
		return
	}

	if err := h.store.DeleteNews(rc, id); err != nil {
		h.storeFailed(ctx, err, "News not found", "Failed to delete news")
		return
	}

	h.images.Release(rc, news.MainImage)
	h.images.ReleaseReplaced(rc, news.AdditionalImages, nil)

	h.publish(ctx, services.ResourceNews, services.ActionDelete, news.ID, news.Title)

	utils.RespondMessage(ctx, "News deleted successfully")
}

// newsImages lists the main image followed by the additional images.
func newsImages(news *models.News) []string {
	return append([]string{news.MainImage}, news.AdditionalImages...)
}
