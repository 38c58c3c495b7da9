package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// PROJECT STATUS CONSTANTS
// =====================================================
const (
	StatusUploaded           = "uploaded"
	StatusAssigned           = "assigned"
	StatusReassigned         = "reassigned"
	StatusInProgress         = "in_progress"
	StatusCompleted          = "completed"
	StatusUnderReview        = "under_review"
	StatusApproved           = "approved"
	StatusRevisionRequested  = "revision_requested"
	StatusRevisionInProgress = "revision_in_progress"
	StatusClientReEdit       = "client_reedit"
	StatusDelivered          = "delivered"
)

// AllStatuses is the fixed enumeration. Values outside it are rejected
// at the request boundary, never inside the state machine.
var AllStatuses = []string{
	StatusUploaded,
	StatusAssigned,
	StatusReassigned,
	StatusInProgress,
	StatusCompleted,
	StatusUnderReview,
	StatusApproved,
	StatusRevisionRequested,
	StatusRevisionInProgress,
	StatusClientReEdit,
	StatusDelivered,
}

// =====================================================
// VERSION APPROVAL STATE CONSTANTS
// =====================================================
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// =====================================================
// FEEDBACK RESPONSE STATE CONSTANTS
// =====================================================
const (
	ResponseApproved          = "approved"
	ResponseRevisionRequested = "revision_requested"
)

// =====================================================
// BUSINESS CONSTANTS
// =====================================================
const (
	DefaultDeadlineHours = 72
	MinProgress          = 0
	MaxProgress          = 100
)

// =====================================================
// ENTITY: Project
// =====================================================
type Project struct {
	ID          uuid.UUID `json:"id"`
	PublicID    string    `json:"public_id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`

	Status   string `json:"status"`
	Progress int    `json:"progress"`

	AssignedEditorID         *uuid.UUID `json:"assigned_editor_id,omitempty"`
	AssignedDate             *time.Time `json:"assigned_date,omitempty"`
	EditorDeadlineHours      *int       `json:"editor_deadline_hours,omitempty"`
	EditorDeadline           *time.Time `json:"editor_deadline,omitempty"`
	IsEditorDeadlineExceeded bool       `json:"is_editor_deadline_exceeded"`

	RawFileName   string `json:"raw_file_name"`
	RawStorageKey string `json:"raw_storage_key"`
	StorageFolder string `json:"storage_folder"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LockVersion int       `json:"lock_version"`
}

// HasEditor reports whether an editor is currently assigned.
func (p *Project) HasEditor() bool {
	return p.AssignedEditorID != nil
}

// IsAssignedTo reports whether editorID is the project's assigned editor.
func (p *Project) IsAssignedTo(editorID uuid.UUID) bool {
	return p.AssignedEditorID != nil && *p.AssignedEditorID == editorID
}

// CanBeReviewed checks if admin review actions are legal.
// Business rule: only completed projects are reviewable.
func (p *Project) CanBeReviewed() bool {
	return p.Status == StatusCompleted
}

// AcceptsClientFeedback checks if the client may respond to the current cut.
func (p *Project) AcceptsClientFeedback() bool {
	return p.Status == StatusApproved || p.Status == StatusCompleted
}

// DeadlineApplies reports whether the editor deadline is live for the
// current status. Exceeding it outside these states is not a breach.
func (p *Project) DeadlineApplies() bool {
	switch p.Status {
	case StatusAssigned, StatusReassigned, StatusInProgress:
		return true
	}
	return false
}

// SetDeadline fixes the assignment clock: deadline = now + hours, latch cleared.
// Called on every assignment and reassignment, never elsewhere.
func (p *Project) SetDeadline(now time.Time, hours int) {
	deadline := now.Add(time.Duration(hours) * time.Hour)
	p.AssignedDate = &now
	p.EditorDeadlineHours = &hours
	p.EditorDeadline = &deadline
	p.IsEditorDeadlineExceeded = false
}

// DeadlineExceeded reports whether the deadline has passed while it still
// applies. Pure check; latching is the service's job.
func (p *Project) DeadlineExceeded(now time.Time) bool {
	return p.EditorDeadline != nil && now.After(*p.EditorDeadline) && p.DeadlineApplies()
}

// RemainingHours returns ceil(deadline - now) in hours, floored at 0.
func (p *Project) RemainingHours(now time.Time) int {
	if p.EditorDeadline == nil {
		return 0
	}
	left := p.EditorDeadline.Sub(now)
	if left <= 0 {
		return 0
	}
	hours := int(left / time.Hour)
	if left%time.Hour > 0 {
		hours++
	}
	return hours
}

// ClampProgress bounds a requested progress value to [0,100].
func ClampProgress(progress int) int {
	if progress < MinProgress {
		return MinProgress
	}
	if progress > MaxProgress {
		return MaxProgress
	}
	return progress
}

// IsValidStatus reports whether s belongs to the fixed status enumeration.
func IsValidStatus(s string) bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// =====================================================
// ENTITY: Version
// =====================================================
type Version struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	Number        int       `json:"number"`
	Filename      string    `json:"filename"`
	StorageKey    string    `json:"storage_key"`
	StorageURL    string    `json:"storage_url"`
	Notes         *string   `json:"notes,omitempty"`
	ApprovalState string    `json:"approval_state"`
	UploadDate    time.Time `json:"upload_date"`
}

// LatestVersion returns the version with the maximum number, regardless of
// slice order. Returns nil when the project has no versions yet.
func LatestVersion(versions []Version) *Version {
	var latest *Version
	for i := range versions {
		if latest == nil || versions[i].Number > latest.Number {
			latest = &versions[i]
		}
	}
	return latest
}

// NextVersionNumber returns max(existing numbers, 0) + 1. Numbers are unique
// and monotonic per project; deleted versions are never renumbered (deletion
// is not supported).
func NextVersionNumber(versions []Version) int {
	max := 0
	for i := range versions {
		if versions[i].Number > max {
			max = versions[i].Number
		}
	}
	return max + 1
}

// =====================================================
// ENTITY: Feedback
// =====================================================
type Feedback struct {
	ID              uuid.UUID `json:"id"`
	ProjectID       uuid.UUID `json:"project_id"`
	Message         string    `json:"message"`
	VersionNumber   int       `json:"version_number"`
	ResponseState   string    `json:"response_state"`
	Rating          *int      `json:"rating,omitempty"`
	Satisfied       *bool     `json:"satisfied,omitempty"`
	ReEditRequested bool      `json:"re_edit_requested"`
	CreatedAt       time.Time `json:"created_at"`
}

// =====================================================
// ENTITY: TimelineEntry
// =====================================================
// Append-only audit record. Never edited or deleted; the definitive
// workflow history. ActorID is nil for unauthenticated client actions.
type TimelineEntry struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Action    string     `json:"action"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Audience  string     `json:"audience"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// =====================================================
// ENTITY: AdminComment
// =====================================================
type AdminComment struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	AdminID   uuid.UUID `json:"admin_id"`
	Kind      string    `json:"kind"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Admin comment kinds
const (
	CommentKindAssignment   = "assignment"
	CommentKindReassignment = "reassignment"
	CommentKindReview       = "review"
	CommentKindGeneral      = "general"
)
