package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/media"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/utils"
)

// bodySlack is allowed on top of the video limit for the other form fields,
// which may carry inline base64 images.
const bodySlack = 20 << 20

type Options struct {
	AllowRegister bool
	HealthTimeout time.Duration
	SiteName      string
}

// Handler serves the content API.
type Handler struct {
	store  store.Store
	issuer *auth.Issuer
	videos *media.VideoStore
	images *media.Images
	events services.Sink
	opts   Options
	now    func() time.Time
}

func New(s store.Store, issuer *auth.Issuer, videos *media.VideoStore, images *media.Images, events services.Sink, opts Options) *Handler {
	if events == nil {
		events = services.Fanout{}
	}

	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 3 * time.Second
	}

	if opts.SiteName == "" {
		opts.SiteName = "SolarWorks"
	}

	return &Handler{
		store:  s,
		issuer: issuer,
		videos: videos,
		images: images,
		events: events,
		opts:   opts,
		now:    time.Now,
	}
}

// readPayload parses the request body and answers the request itself on failure.
func (h *Handler) readPayload(ctx *gin.Context) (*utils.Payload, bool) {
	payload, err := utils.ReadPayload(ctx, h.videos.MaxBytes()+bodySlack)

	switch {
	case errors.Is(err, utils.ErrPayloadTooLarge):
		utils.RespondError(ctx, http.StatusRequestEntityTooLarge, h.videos.TooLargeMessage())
		return nil, false
	case err != nil:
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid request")
		return nil, false
	}

	return payload, true
}

// saveVideo stores an uploaded video and answers the request itself on failure.
func (h *Handler) saveVideo(ctx *gin.Context, fh *multipart.FileHeader) (string, bool) {
	url, err := h.videos.Save(fh)

	switch {
	case errors.Is(err, media.ErrVideoTooLarge):
		utils.RespondError(ctx, http.StatusRequestEntityTooLarge, h.videos.TooLargeMessage())
		return "", false
	case errors.Is(err, media.ErrNotVideo):
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return "", false
	case err != nil:
		utils.RespondInternal(ctx, err, "Failed to store video upload")
		return "", false
	}

	return url, true
}

// checkVideoURL rejects a local video URL unless it is the document's current
// one. Local files belong to the document that uploaded them.
func (h *Handler) checkVideoURL(ctx *gin.Context, field, url, current string) bool {
	if media.IsLocal(strings.TrimSpace(url)) && url != current {
		utils.RespondError(ctx, http.StatusBadRequest, field+" must be an uploaded file or an external URL")
		return false
	}

	return true
}

// objectID reads the :id parameter, answering 400 when it is malformed.
func (h *Handler) objectID(ctx *gin.Context, label string) (primitive.ObjectID, bool) {
	id, err := utils.GetObjectID(ctx, label)

	if err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return primitive.NilObjectID, false
	}

	return id, true
}

// storeFailed maps a store error onto a response. notFound is the 404 message.
func (h *Handler) storeFailed(ctx *gin.Context, err error, notFound, logMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(ctx, http.StatusNotFound, notFound)
		return
	}

	utils.RespondInternal(ctx, err, logMsg)
}

func (h *Handler) publish(ctx *gin.Context, resource string, action services.Action, id primitive.ObjectID, title string) {
	event := services.ContentEvent{
		Resource: resource,
		Action:   action,
		Title:    title,
		At:       h.now().UTC(),
	}

	if !id.IsZero() {
		event.ID = id.Hex()
	}

	if admin, err := utils.GetCurrentAdmin(ctx); err == nil {
		event.Admin = admin.Email
	}

	h.events.Publish(event)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// assignString copies a present string field into dst.
func assignString(p *utils.Payload, key string, dst *string) {
	if value, ok := p.String(key); ok {
		*dst = value
	}
}

func assignStrings(p *utils.Payload, key string, dst *[]string) {
	if values, ok := p.Strings(key); ok {
		*dst = values
	}
}
