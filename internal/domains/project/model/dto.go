package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// =====================================================
// CREATE PROJECT REQUEST (CLIENT UPLOAD)
// =====================================================
type CreateProjectRequest struct {
	Title       string `form:"title" json:"title"`
	ClientName  string `form:"client_name" json:"client_name"`
	ClientEmail string `form:"client_email" json:"client_email"`
}

// Validate validates CreateProjectRequest
func (req CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.ClientName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.ClientEmail, validation.Required, is.Email),
	)
}

// UploadPayload carries the raw bytes of an incoming file from the handler
// to the service. The storage upload must succeed before any state persists.
type UploadPayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateProjectResponse struct {
	PublicID string `json:"public_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
}

// =====================================================
// ASSIGN EDITOR REQUEST (ADMIN)
// =====================================================
type AssignEditorRequest struct {
	EditorID       uuid.UUID `json:"editor_id"`
	DeadlineHours  int       `json:"deadline_hours"`
	IsReassignment bool      `json:"is_reassignment"`
	Comment        *string   `json:"comment,omitempty"`
}

// Validate validates AssignEditorRequest
func (req AssignEditorRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.EditorID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.DeadlineHours, validation.Min(0), validation.Max(24*30)),
	)
}

// =====================================================
// UPDATE STATUS REQUEST (EDITOR)
// =====================================================
type UpdateStatusRequest struct {
	Status   string  `json:"status"`
	Progress *int    `json:"progress,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Validate validates UpdateStatusRequest. Statuses outside the fixed
// enumeration are rejected here, before reaching the state machine.
func (req UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.In(
			StatusAssigned,
			StatusInProgress,
			StatusCompleted,
			StatusRevisionInProgress,
		)),
	)
}

// =====================================================
// UPLOAD VERSION REQUEST (EDITOR)
// =====================================================
type UploadVersionRequest struct {
	Notes *string `form:"notes" json:"notes,omitempty"`
	File  UploadPayload
}

// Validate validates UploadVersionRequest
func (req UploadVersionRequest) Validate() error {
	if req.File.Filename == "" || len(req.File.Data) == 0 {
		return validation.NewError("validation_file_required", "deliverable file is required")
	}
	return nil
}

// =====================================================
// REVIEW REQUEST (ADMIN)
// =====================================================
type ReviewRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

// Validate validates ReviewRequest
func (req ReviewRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Action, validation.Required, validation.In(
			ReviewActionApprove,
			ReviewActionRevision,
			ReviewActionReassign,
		)),
		validation.Field(&req.Comment, validation.Required, validation.Length(1, 2000)),
	)
}

// =====================================================
// SUBMIT FEEDBACK REQUEST (CLIENT, VIA PUBLIC ID)
// =====================================================
type SubmitFeedbackRequest struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	Satisfied       *bool   `json:"satisfied,omitempty"`
	ReEditRequested bool    `json:"re_edit_requested"`
	Rating          *int    `json:"rating,omitempty"`
	VersionNumber   *int    `json:"version_number,omitempty"`
}

// Validate validates SubmitFeedbackRequest
func (req SubmitFeedbackRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.In(
			ResponseApproved,
			ResponseRevisionRequested,
		)),
		validation.Field(&req.Message, validation.Required, validation.Length(1, 5000)),
		validation.Field(&req.Rating, validation.Min(1), validation.Max(5)),
	)
}

// =====================================================
// LIST PROJECTS REQUEST
// =====================================================
type ListProjectsRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Validate normalizes paging and rejects unknown status filters.
func (req *ListProjectsRequest) Validate() error {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Status != "" && !IsValidStatus(req.Status) {
		return validation.NewError("validation_invalid_status", "unknown status filter")
	}
	return nil
}

// =====================================================
// RESPONSES
// =====================================================

type EditorSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

type ProjectSummaryResponse struct {
	ID                       uuid.UUID  `json:"id"`
	PublicID                 string     `json:"public_id"`
	Title                    string     `json:"title"`
	ClientName               string     `json:"client_name"`
	Status                   string     `json:"status"`
	Progress                 int        `json:"progress"`
	AssignedEditorID         *uuid.UUID `json:"assigned_editor_id,omitempty"`
	EditorDeadline           *time.Time `json:"editor_deadline,omitempty"`
	IsEditorDeadlineExceeded bool       `json:"is_editor_deadline_exceeded"`
	CreatedAt                time.Time  `json:"created_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ListProjectsResponse struct {
	Projects   []ProjectSummaryResponse `json:"projects"`
	Pagination PaginationMeta           `json:"pagination"`
}

type ProjectDetailResponse struct {
	Project       *Project        `json:"project"`
	Editor        *EditorSummary  `json:"editor,omitempty"`
	Versions      []Version       `json:"versions"`
	Feedback      []Feedback      `json:"feedback"`
	Timeline      []TimelineEntry `json:"timeline"`
	AdminComments []AdminComment  `json:"admin_comments"`
	RemainingHours int            `json:"remaining_hours"`
	// StorageFiles lists the objects under the project folder. Best-effort:
	// empty when the object store is unreachable, the detail still loads.
	StorageFiles []StorageObject `json:"storage_files,omitempty"`
}

type StorageObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ClientProjectView is the client-safe snapshot served by publicId. Internal
// ids, editor identity and internal timeline entries never appear here.
type ClientProjectView struct {
	PublicID      string               `json:"public_id"`
	Title         string               `json:"title"`
	Status        string               `json:"status"`
	Progress      int                  `json:"progress"`
	LatestVersion *ClientVersionView   `json:"latest_version,omitempty"`
	Timeline      []ClientTimelineView `json:"timeline"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type ClientVersionView struct {
	Number        int       `json:"number"`
	Filename      string    `json:"filename"`
	StorageURL    string    `json:"url"`
	ApprovalState string    `json:"approval_state"`
	UploadDate    time.Time `json:"upload_date"`
}

type ClientTimelineView struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// UpdatedProjectResponse is returned by every transition verb: the
// post-transition snapshot of the aggregate.
type UpdatedProjectResponse struct {
	Project        *Project `json:"project"`
	RemainingHours int      `json:"remaining_hours"`
}

// notNilUUID rejects the zero UUID, which ozzo's Required treats as present.
func notNilUUID(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "must be a non-zero UUID")
	}
	return nil
}
