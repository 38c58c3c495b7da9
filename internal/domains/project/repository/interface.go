package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"editflow-backend/internal/domains/project/model"
)

// =====================================================
// PROJECT REPOSITORY INTERFACE
// =====================================================
// Every transition runs fetch -> validate -> mutate -> timeline append inside
// one transaction. UpdateProjectWithTx enforces the optimistic lock: it only
// writes when lock_version still matches and bumps it on success.
type ProjectRepository interface {
	// Transaction management
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// Project aggregate
	CreateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	GetProjectByPublicID(ctx context.Context, publicID string) (*model.Project, error)
	UpdateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error

	// Timeline ledger (append-only)
	AppendTimelineWithTx(ctx context.Context, tx pgx.Tx, entry *model.TimelineEntry) error
	GetTimelineByProjectID(ctx context.Context, projectID uuid.UUID, audience string) ([]model.TimelineEntry, error)

	// Version registry
	CreateVersionWithTx(ctx context.Context, tx pgx.Tx, version *model.Version) error
	GetVersionsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Version, error)
	UpdateVersionApprovalWithTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, number int, state string) error

	// Feedback ledger
	CreateFeedbackWithTx(ctx context.Context, tx pgx.Tx, feedback *model.Feedback) error
	GetFeedbackByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Feedback, error)

	// Admin comments
	CreateAdminCommentWithTx(ctx context.Context, tx pgx.Tx, comment *model.AdminComment) error
	GetAdminCommentsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.AdminComment, error)

	// List operations
	ListProjects(ctx context.Context, status string, page, limit int) ([]model.Project, int, error)
	ListProjectsByEditorID(ctx context.Context, editorID uuid.UUID, status string, page, limit int) ([]model.Project, int, error)

	// Deadline tracking
	ListOverdueProjects(ctx context.Context, now time.Time) ([]model.Project, error)
	LatchDeadlineExceeded(ctx context.Context, projectID uuid.UUID, now time.Time) (bool, error)
}

// =====================================================
// EDITOR DIRECTORY INTERFACE
// =====================================================
// Simplified view of the user domain, enough for assignment validation and
// notification addressing. Avoids an import cycle with the user domain.
type EditorDirectory interface {
	GetEditorByID(ctx context.Context, editorID uuid.UUID) (*Editor, error)
}

// Editor entity (simplified for the project domain)
type Editor struct {
	ID       uuid.UUID
	FullName string
	Email    string
	IsActive bool
}
