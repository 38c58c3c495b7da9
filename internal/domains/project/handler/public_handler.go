package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow-backend/internal/domains/project/model"
	"editflow-backend/internal/domains/project/service"
	"editflow-backend/internal/shared/response"
)

// =====================================================
// PUBLIC PROJECT HANDLER (CLIENT, NO AUTH)
// =====================================================
// Clients never log in. Their only handle on a project is its publicId,
// which works as a capability token: guessing one is the only way in, and
// unknown ids are indistinguishable from forbidden ones.
type PublicProjectHandler struct {
	projectService service.ProjectService
}

// NewPublicProjectHandler creates a new public project handler
func NewPublicProjectHandler(projectService service.ProjectService) *PublicProjectHandler {
	return &PublicProjectHandler{
		projectService: projectService,
	}
}

// RegisterRoutes registers the unauthenticated client routes.
func (h *PublicProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", h.CreateProject)                   // POST /v1/public/projects (multipart)
		projects.GET("/:publicId", h.GetProject)             // GET /v1/public/projects/:publicId
		projects.POST("/:publicId/feedback", h.SubmitFeedback) // POST /v1/public/projects/:publicId/feedback
	}
}

// =====================================================
// CREATE PROJECT (RAW MEDIA UPLOAD)
// =====================================================

func (h *PublicProjectHandler) CreateProject(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request", err.Error())
		return
	}

	payload, ok := readUploadedFile(c, "file")
	if !ok {
		return
	}

	result, err := h.projectService.CreateProject(c.Request.Context(), req, payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// =====================================================
// TRACK PROJECT
// =====================================================

func (h *PublicProjectHandler) GetProject(c *gin.Context) {
	result, err := h.projectService.GetClientView(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// SUBMIT FEEDBACK
// =====================================================

func (h *PublicProjectHandler) SubmitFeedback(c *gin.Context) {
	var req model.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	result, err := h.projectService.SubmitFeedback(c.Request.Context(), c.Param("publicId"), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// handleServiceError mirrors the authenticated handler's mapping but never
// leaks internals to unauthenticated callers.
func (h *PublicProjectHandler) handleServiceError(c *gin.Context, err error) {
	(&ProjectHandler{}).handleServiceError(c, err)
}
