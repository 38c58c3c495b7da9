package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"editflow-backend/internal/domains/project/model"
	"editflow-backend/internal/domains/project/service"
	"editflow-backend/internal/shared/response"
)

// =====================================================
// PROJECT HANDLER (ADMIN + EDITOR)
// =====================================================
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterAdminRoutes registers admin routes. The group must already carry
// auth + admin middleware.
func (h *ProjectHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.ListProjects)              // GET /v1/admin/projects?page=1&limit=20&status=completed
		projects.GET("/:id", h.GetProjectDetail)      // GET /v1/admin/projects/:id
		projects.POST("/:id/assign", h.AssignEditor)  // POST /v1/admin/projects/:id/assign
		projects.POST("/:id/review", h.ReviewProject) // POST /v1/admin/projects/:id/review
		projects.GET("/:id/deadline", h.CheckDeadline) // GET /v1/admin/projects/:id/deadline
	}
}

// RegisterEditorRoutes registers editor routes. The group must already carry
// auth + editor middleware.
func (h *ProjectHandler) RegisterEditorRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.ListEditorProjects)           // GET /v1/editor/projects
		projects.GET("/:id", h.GetEditorProjectDetail)   // GET /v1/editor/projects/:id
		projects.PATCH("/:id/status", h.UpdateStatus)    // PATCH /v1/editor/projects/:id/status
		projects.POST("/:id/versions", h.UploadVersion)  // POST /v1/editor/projects/:id/versions (multipart)
	}
}

// =====================================================
// ADMIN: LIST PROJECTS
// =====================================================

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var req model.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.projectService.ListProjects(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Projects, &response.Meta{
		Page:  result.Pagination.Page,
		Limit: result.Pagination.Limit,
		Total: result.Pagination.Total,
	})
}

// =====================================================
// ADMIN: PROJECT DETAIL
// =====================================================

func (h *ProjectHandler) GetProjectDetail(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	result, err := h.projectService.GetProjectDetail(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// ADMIN: DEADLINE CHECK
// =====================================================

// CheckDeadline evaluates the assignment deadline on demand. The check has
// the same latching side effect as the periodic sweep, so an admin looking
// at an overdue project flags it immediately instead of waiting for cron.
func (h *ProjectHandler) CheckDeadline(c *gin.Context) {
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	exceeded, err := h.projectService.CheckDeadlineExceeded(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deadline_exceeded": exceeded})
}

// =====================================================
// ADMIN: ASSIGN / REASSIGN EDITOR
// =====================================================

func (h *ProjectHandler) AssignEditor(c *gin.Context) {
	adminID, ok := h.actorID(c)
	if !ok {
		return
	}
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req model.AssignEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	result, err := h.projectService.AssignEditor(c.Request.Context(), adminID, projectID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// ADMIN: REVIEW
// =====================================================

func (h *ProjectHandler) ReviewProject(c *gin.Context) {
	adminID, ok := h.actorID(c)
	if !ok {
		return
	}
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	result, err := h.projectService.Review(c.Request.Context(), adminID, projectID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// EDITOR: LIST OWN PROJECTS
// =====================================================

func (h *ProjectHandler) ListEditorProjects(c *gin.Context) {
	editorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req model.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.projectService.ListEditorProjects(c.Request.Context(), editorID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Projects, &response.Meta{
		Page:  result.Pagination.Page,
		Limit: result.Pagination.Limit,
		Total: result.Pagination.Total,
	})
}

// =====================================================
// EDITOR: PROJECT DETAIL
// =====================================================

func (h *ProjectHandler) GetEditorProjectDetail(c *gin.Context) {
	editorID, ok := h.actorID(c)
	if !ok {
		return
	}
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	result, err := h.projectService.GetEditorProjectDetail(c.Request.Context(), editorID, projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// EDITOR: UPDATE STATUS
// =====================================================

func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	editorID, ok := h.actorID(c)
	if !ok {
		return
	}
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	result, err := h.projectService.UpdateStatus(c.Request.Context(), editorID, projectID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// EDITOR: UPLOAD VERSION
// =====================================================

func (h *ProjectHandler) UploadVersion(c *gin.Context) {
	editorID, ok := h.actorID(c)
	if !ok {
		return
	}
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	payload, ok := readUploadedFile(c, "file")
	if !ok {
		return
	}

	req := model.UploadVersionRequest{File: payload}
	if notes := c.PostForm("notes"); notes != "" {
		req.Notes = &notes
	}

	result, err := h.projectService.UploadVersion(c.Request.Context(), editorID, projectID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// =====================================================
// PRIVATE HELPERS
// =====================================================

func (h *ProjectHandler) actorID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}

	switch v := raw.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		if err == nil {
			return id, true
		}
	}
	response.Unauthorized(c, "Authentication required")
	return uuid.Nil, false
}

func (h *ProjectHandler) parseProjectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid project ID", "Project ID must be a valid UUID")
		return uuid.Nil, false
	}
	return projectID, true
}

// readUploadedFile pulls a multipart file into memory. Responds on failure.
func readUploadedFile(c *gin.Context, field string) (model.UploadPayload, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, "A media file is required")
		return model.UploadPayload{}, false
	}

	f, err := header.Open()
	if err != nil {
		response.InternalServerError(c, "Failed to read uploaded file")
		return model.UploadPayload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalServerError(c, "Failed to read uploaded file")
		return model.UploadPayload{}, false
	}

	return model.UploadPayload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (h *ProjectHandler) handleServiceError(c *gin.Context, err error) {
	var projectErr *model.ProjectError
	if errors.As(err, &projectErr) {
		response.ErrorResponse(c, httpStatusForCode(projectErr.Code), projectErr.Code, projectErr.Message)
		return
	}

	if errors.Is(err, model.ErrProjectNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeProjectNotFound, "Project not found")
		return
	}
	if errors.Is(err, model.ErrVersionMismatch) {
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeVersionMismatch, "Concurrent modification detected. Please refresh and try again.")
		return
	}
	if errors.Is(err, model.ErrInvalidTransition) {
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeInvalidTransition, "Transition not allowed from current status")
		return
	}

	response.InternalServerError(c, "Internal server error")
}

func httpStatusForCode(code string) int {
	switch code {
	case model.ErrCodeProjectNotFound, model.ErrCodeVersionNotFound:
		return http.StatusNotFound
	case model.ErrCodeVersionMismatch:
		return http.StatusConflict
	case model.ErrCodeInvalidTransition, model.ErrCodeEditorNotFound,
		model.ErrCodeValidation, model.ErrCodeInvalidStatus:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUnauthorized:
		return http.StatusForbidden
	case model.ErrCodeDependencyFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
