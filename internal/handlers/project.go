package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/utils"
	"github.com/solarworks/solarworks/internal/validation"
)

func applyProjectFields(p *utils.Payload, project *models.Project) {
	assignString(p, "name", &project.Name)
	assignString(p, "location", &project.Location)
	assignString(p, "year", &project.Year)
	assignString(p, "duration", &project.Duration)
	assignString(p, "image", &project.Image)
	assignString(p, "video", &project.Video)
	assignString(p, "description", &project.Description)
	assignString(p, "technicalNotes", &project.TechnicalNotes)
	assignStrings(p, "challenges", &project.Challenges)
	assignStrings(p, "executionMethods", &project.ExecutionMethods)
	assignStrings(p, "results", &project.Results)
	assignStrings(p, "gallery", &project.Gallery)
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	projects, err := h.store.ListProjects(ctx.Request.Context())

	if err != nil {
		utils.RespondInternal(ctx, err, "Failed to list projects")
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}

	ctx.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "project")
	if !ok {
		return
	}

	project, err := h.store.GetProject(ctx.Request.Context(), id)

	if err != nil {
		h.storeFailed(ctx, err, "Project not found", "Failed to fetch project")
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	var project models.Project
	applyProjectFields(payload, &project)

	if err := validation.ValidateStruct(&project); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if !h.checkVideoURL(ctx, "video", project.Video, "") {
		return
	}

	if fh := payload.File("video"); fh != nil {
		url, ok := h.saveVideo(ctx, fh)
		if !ok {
			return
		}
		project.Video = url
	}

	rc := ctx.Request.Context()
	sent := projectImages(&project)

	project.Image = h.images.Resolve(rc, project.Image)
	project.Gallery = h.images.ResolveAll(rc, project.Gallery)
	project.Challenges = orEmpty(project.Challenges)
	project.ExecutionMethods = orEmpty(project.ExecutionMethods)
	project.Results = orEmpty(project.Results)

	if err := h.store.CreateProject(rc, &project); err != nil {
		h.videos.Release(project.Video)
		h.images.ReleaseUploaded(rc, sent, projectImages(&project))
		utils.RespondInternal(ctx, err, "Failed to create project")
		return
	}

	h.publish(ctx, services.ResourceProject, services.ActionCreate, project.ID, project.Name)

	ctx.JSON(http.StatusCreated, project)
}

// projectImages lists the cover image followed by the gallery.
func projectImages(project *models.Project) []string {
	return append([]string{project.Image}, project.Gallery...)
}

// UpdateProject merges the request into the stored project. A new video
// replaces the old file; removeVideo=true drops it.
func (h *Handler) UpdateProject(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "project")
	if !ok {
		return
	}

	payload, ok := h.readPayload(ctx)
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	existing, err := h.store.GetProject(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Project not found", "Failed to fetch project")
		return
	}

	project := *existing
	applyProjectFields(payload, &project)

	if err := validation.ValidateStruct(&project); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if !h.checkVideoURL(ctx, "video", project.Video, existing.Video) {
		return
	}

	uploaded := ""
	removeVideo, _ := payload.Bool("removeVideo")

	if fh := payload.File("video"); fh != nil {
		url, ok := h.saveVideo(ctx, fh)
		if !ok {
			return
		}
		project.Video = url
		uploaded = url
	} else if removeVideo {
		project.Video = ""
	}

	sent := projectImages(&project)

	if payload.Has("image") {
		project.Image = h.images.Resolve(rc, project.Image)
	}

	if payload.Has("gallery") {
		project.Gallery = h.images.ResolveAll(rc, project.Gallery)
	}

	if err := h.store.UpdateProject(rc, &project); err != nil {
		h.videos.Release(uploaded)
		h.images.ReleaseUploaded(rc, sent, projectImages(&project))
		h.storeFailed(ctx, err, "Project not found", "Failed to update project")
		return
	}

	if existing.Video != project.Video {
		h.videos.Release(existing.Video)
	}

	if existing.Image != project.Image {
		h.images.Release(rc, existing.Image)
	}

	h.images.ReleaseReplaced(rc, existing.Gallery, project.Gallery)

	h.publish(ctx, services.ResourceProject, services.ActionUpdate, project.ID, project.Name)

	ctx.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	id, ok := h.objectID(ctx, "project")
	if !ok {
		return
	}

	rc := ctx.Request.Context()

	project, err := h.store.GetProject(rc, id)

	if err != nil {
		h.storeFailed(ctx, err, "Project not found", "Failed to fetch project")
		return
	}

	if err := h.store.DeleteProject(rc, id); err != nil {
		h.storeFailed(ctx, err, "Project not found", "Failed to delete project")
		return
	}

	h.videos.Release(project.Video)
	h.images.Release(rc, project.Image)
	h.images.ReleaseReplaced(rc, project.Gallery, nil)

	h.publish(ctx, services.ResourceProject, services.ActionDelete, project.ID, project.Name)

	utils.RespondMessage(ctx, "Project deleted successfully")
}
