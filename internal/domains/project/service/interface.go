package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"editflow-backend/internal/domains/project/model"
)

// =====================================================
// PROJECT SERVICE INTERFACE
// =====================================================
// The transition verbs of the workflow. Each one validates role + current
// status against the transition rules, applies the mutation and its timeline
// entry atomically, and returns the updated snapshot or a typed failure.
type ProjectService interface {
	// Client operations (unauthenticated, addressed by publicId)
	CreateProject(ctx context.Context, req model.CreateProjectRequest, file model.UploadPayload) (*model.CreateProjectResponse, error)
	GetClientView(ctx context.Context, publicID string) (*model.ClientProjectView, error)
	SubmitFeedback(ctx context.Context, publicID string, req model.SubmitFeedbackRequest) (*model.UpdatedProjectResponse, error)

	// Admin operations
	AssignEditor(ctx context.Context, adminID, projectID uuid.UUID, req model.AssignEditorRequest) (*model.UpdatedProjectResponse, error)
	Review(ctx context.Context, adminID, projectID uuid.UUID, req model.ReviewRequest) (*model.UpdatedProjectResponse, error)
	ListProjects(ctx context.Context, req model.ListProjectsRequest) (*model.ListProjectsResponse, error)
	GetProjectDetail(ctx context.Context, projectID uuid.UUID) (*model.ProjectDetailResponse, error)

	// Editor operations (must be the assigned editor)
	UpdateStatus(ctx context.Context, editorID, projectID uuid.UUID, req model.UpdateStatusRequest) (*model.UpdatedProjectResponse, error)
	UploadVersion(ctx context.Context, editorID, projectID uuid.UUID, req model.UploadVersionRequest) (*model.UpdatedProjectResponse, error)
	ListEditorProjects(ctx context.Context, editorID uuid.UUID, req model.ListProjectsRequest) (*model.ListProjectsResponse, error)
	GetEditorProjectDetail(ctx context.Context, editorID, projectID uuid.UUID) (*model.ProjectDetailResponse, error)

	// Deadline tracking
	CheckDeadlineExceeded(ctx context.Context, projectID uuid.UUID) (bool, error)
	SweepOverdueDeadlines(ctx context.Context) (int, error)
}

// =====================================================
// OBJECT STORE PORT
// =====================================================
// Narrow interface over the media store. The core only cares that these
// succeed or fail; retry policy belongs to the implementation.
type ObjectStore interface {
	CreateFolder(ctx context.Context, name string) (string, error)
	UploadBytes(ctx context.Context, folder, name string, data []byte, contentType string) (*StoredFile, error)
	GrantAccess(ctx context.Context, folder, principalEmail string) error
	ListFiles(ctx context.Context, folder string) ([]StoredFile, error)
}

// StoredFile identifies an object placed in the store.
type StoredFile struct {
	Key string
	URL string
}

// =====================================================
// TASK ENQUEUER PORT
// =====================================================
// Satisfied by *asynq.Client. Notifications are enqueued after commit and
// enqueue failures are logged, never propagated: the transition already
// happened.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
