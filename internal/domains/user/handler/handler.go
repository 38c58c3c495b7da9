package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"editflow-backend/internal/domains/user/model"
	"editflow-backend/internal/domains/user/service"
	"editflow-backend/internal/shared/response"
)

// =====================================================
// USER HANDLER
// =====================================================
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterAuthRoutes registers unauthenticated auth routes.
func (h *UserHandler) RegisterAuthRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)     // POST /v1/auth/login
		auth.POST("/refresh", h.Refresh) // POST /v1/auth/refresh
	}
}

// RegisterAdminRoutes registers editor administration routes. The group must
// already carry auth + admin middleware.
func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	editors := router.Group("/editors")
	{
		editors.GET("", h.ListEditors)                  // GET /v1/admin/editors
		editors.POST("", h.CreateEditor)                // POST /v1/admin/editors
		editors.PATCH("/:id/active", h.SetEditorActive) // PATCH /v1/admin/editors/:id/active
	}
}

// =====================================================
// LOGIN
// =====================================================

func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(c, "Field 'refresh_token' is required")
		return
	}

	result, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// EDITOR ADMINISTRATION
// =====================================================

func (h *UserHandler) CreateEditor(c *gin.Context) {
	var req model.CreateEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.CreateEditor(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *UserHandler) ListEditors(c *gin.Context) {
	result, err := h.userService.ListEditors(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *UserHandler) SetEditorActive(c *gin.Context) {
	editorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid editor ID")
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		response.BadRequest(c, "Field 'active' is required")
		return
	}

	if err := h.userService.SetEditorActive(c.Request.Context(), editorID, *req.Active); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": editorID, "active": *req.Active})
}

// =====================================================
// PRIVATE HELPERS
// =====================================================

func (h *UserHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, model.ErrUserInactive):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUserInactive, "Account is deactivated")
	case errors.Is(err, model.ErrUserNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeUserNotFound, "User not found")
	case errors.Is(err, model.ErrEmailTaken):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeEmailTaken, "Email is already registered")
	default:
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, model.ErrCodeValidation, "Validation failed", err.Error())
	}
}
