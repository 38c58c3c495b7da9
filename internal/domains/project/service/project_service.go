package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"editflow-backend/internal/domains/project/model"
	"editflow-backend/internal/domains/project/repository"
	"editflow-backend/internal/shared"
	"editflow-backend/internal/shared/utils"
	"editflow-backend/pkg/cache"
	"editflow-backend/pkg/logger"
)

const clientViewTTL = 30 * time.Second

// =====================================================
// PROJECT SERVICE IMPLEMENTATION
// =====================================================
type projectService struct {
	projectRepo repository.ProjectRepository
	editors     repository.EditorDirectory
	store       ObjectStore
	cache       cache.Cache
	asynq       TaskEnqueuer
	now         func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repository.ProjectRepository,
	editors repository.EditorDirectory,
	store ObjectStore,
	cacheClient cache.Cache,
	asynqClient TaskEnqueuer,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		editors:     editors,
		store:       store,
		cache:       cacheClient,
		asynq:       asynqClient,
		now:         time.Now,
	}
}

// =====================================================
// CREATE PROJECT (CLIENT UPLOAD)
// =====================================================

func (s *projectService) CreateProject(ctx context.Context, req model.CreateProjectRequest, file model.UploadPayload) (*model.CreateProjectResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}
	if file.Filename == "" || len(file.Data) == 0 {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Raw media file is required", nil)
	}

	publicID := xid.New().String()

	// Step 2: Storage first. The project only exists once its raw media is
	// safely stored; a failed upload leaves no trace in the database.
	folder, err := s.store.CreateFolder(ctx, "projects/"+publicID)
	if err != nil {
		return nil, model.NewProjectError(model.ErrCodeDependencyFailure, "Failed to create storage folder", err)
	}

	stored, err := s.store.UploadBytes(ctx, folder, file.Filename, file.Data, file.ContentType)
	if err != nil {
		return nil, model.NewProjectError(model.ErrCodeDependencyFailure, "Failed to upload raw media", err)
	}

	// Step 3: Persist project + timeline atomically
	project := &model.Project{
		ID:            uuid.New(),
		PublicID:      publicID,
		Title:         req.Title,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		Status:        model.StatusUploaded,
		Progress:      0,
		RawFileName:   file.Filename,
		RawStorageKey: stored.Key,
		StorageFolder: folder,
		LockVersion:   0,
	}

	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.CreateProjectWithTx(ctx, tx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	notes := fmt.Sprintf("raw media %s uploaded", file.Filename)
	if err := s.appendTimeline(ctx, tx, project.ID, model.ActionProjectCreated, nil, &notes); err != nil {
		return nil, err
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &model.CreateProjectResponse{
		PublicID: project.PublicID,
		Title:    project.Title,
		Status:   project.Status,
	}, nil
}

// =====================================================
// ASSIGN / REASSIGN EDITOR (ADMIN)
// =====================================================

func (s *projectService) AssignEditor(ctx context.Context, adminID, projectID uuid.UUID, req model.AssignEditorRequest) (*model.UpdatedProjectResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	// Step 2: Load project and editor
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	editor, err := s.editors.GetEditorByID(ctx, req.EditorID)
	if err != nil || editor == nil || !editor.IsActive {
		return nil, model.NewProjectError(model.ErrCodeEditorNotFound, "Editor not found", model.ErrEditorNotFound)
	}

	// Step 3: Reassignment requires BOTH the declared intent flag and a
	// different editor. Flag absent means plain assignment, even when an
	// editor was already set (idempotent overwrite).
	isReassignment := req.IsReassignment &&
		project.HasEditor() &&
		!project.IsAssignedTo(req.EditorID)

	hours := req.DeadlineHours
	if hours == 0 {
		hours = model.DefaultDeadlineHours
	}

	// Step 4: Mutate the aggregate
	editorID := req.EditorID
	project.AssignedEditorID = &editorID
	project.SetDeadline(s.now(), hours)
	if isReassignment {
		project.Status = model.StatusReassigned
		project.Progress = 0
	} else {
		project.Status = model.StatusAssigned
	}

	// Step 5: Persist status + timeline + comment in one transaction
	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.UpdateProjectWithTx(ctx, tx, project); err != nil {
		return nil, err
	}

	action := model.ActionEditorAssigned
	commentKind := model.CommentKindAssignment
	if isReassignment {
		action = model.ActionEditorReassigned
		commentKind = model.CommentKindReassignment
	}
	notes := fmt.Sprintf("editor %s, deadline %d hours", editor.FullName, hours)
	if err := s.appendTimeline(ctx, tx, project.ID, action, &adminID, &notes); err != nil {
		return nil, err
	}

	if req.Comment != nil && *req.Comment != "" {
		comment := &model.AdminComment{
			ID:        uuid.New(),
			ProjectID: project.ID,
			AdminID:   adminID,
			Kind:      commentKind,
			Comment:   *req.Comment,
		}
		if err := s.projectRepo.CreateAdminCommentWithTx(ctx, tx, comment); err != nil {
			return nil, fmt.Errorf("failed to create admin comment: %w", err)
		}
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Step 6: Best-effort side effects after commit. Their failure never
	// rolls back the assignment.
	if err := s.store.GrantAccess(ctx, project.StorageFolder, editor.Email); err != nil {
		logger.Error("Failed to grant storage access to editor", err)
	}
	s.enqueueAssignmentNotification(project, editor, isReassignment, hours)
	s.invalidateClientView(ctx, project.PublicID)

	return s.updatedResponse(project), nil
}

// =====================================================
// EDITOR STATUS UPDATE
// =====================================================

func (s *projectService) UpdateStatus(ctx context.Context, editorID, projectID uuid.UUID, req model.UpdateStatusRequest) (*model.UpdatedProjectResponse, error) {
	// Step 1: Validate request (unknown statuses die here)
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	// Step 2: Load and authorize. Ownership mismatch reads as not-found so
	// an editor cannot probe other editors' projects.
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAssignedTo(editorID) {
		return nil, model.ErrProjectNotFound
	}

	// Step 3: Transition legality
	if !model.CanEditorTransition(project.Status, req.Status) {
		return nil, model.NewProjectError(
			model.ErrCodeInvalidTransition,
			fmt.Sprintf("Cannot transition from '%s' to '%s'", project.Status, req.Status),
			model.ErrInvalidTransition,
		)
	}

	// Step 4: Mutate
	project.Status = req.Status
	if req.Progress != nil {
		project.Progress = model.ClampProgress(*req.Progress)
	}
	if req.Status == model.StatusCompleted {
		project.Progress = model.MaxProgress
	}

	// Step 5: Persist atomically
	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.UpdateProjectWithTx(ctx, tx, project); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("status set to %s, progress %d%%", project.Status, project.Progress)
	if req.Notes != nil && *req.Notes != "" {
		notes = *req.Notes
	}
	if err := s.appendTimeline(ctx, tx, project.ID, model.ActionStatusUpdated, &editorID, &notes); err != nil {
		return nil, err
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateClientView(ctx, project.PublicID)

	return s.updatedResponse(project), nil
}

// =====================================================
// UPLOAD DELIVERABLE VERSION (EDITOR)
// =====================================================

func (s *projectService) UploadVersion(ctx context.Context, editorID, projectID uuid.UUID, req model.UploadVersionRequest) (*model.UpdatedProjectResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	// Step 2: Load and authorize
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAssignedTo(editorID) {
		return nil, model.ErrProjectNotFound
	}

	// Step 3: Next version number from existing versions
	versions, err := s.projectRepo.GetVersionsByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}
	number := model.NextVersionNumber(versions)

	// Step 4: Upload to storage BEFORE recording anything. The version row
	// is conditioned on the upload's success, not the other way around.
	objectName := fmt.Sprintf("v%d_%s", number, req.File.Filename)
	stored, err := s.store.UploadBytes(ctx, project.StorageFolder, objectName, req.File.Data, req.File.ContentType)
	if err != nil {
		return nil, model.NewProjectError(model.ErrCodeDependencyFailure, "Failed to upload deliverable", err)
	}

	// Step 5: Record version, force completed, append timeline - one tx.
	// A concurrent upload that grabbed the same number loses the optimistic
	// lock on the project row and commits nothing.
	version := &model.Version{
		ID:            uuid.New(),
		ProjectID:     project.ID,
		Number:        number,
		Filename:      req.File.Filename,
		StorageKey:    stored.Key,
		StorageURL:    stored.URL,
		Notes:         req.Notes,
		ApprovalState: model.ApprovalPending,
	}

	project.Status = model.StatusCompleted
	project.Progress = model.MaxProgress

	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.UpdateProjectWithTx(ctx, tx, project); err != nil {
		return nil, err
	}
	if err := s.projectRepo.CreateVersionWithTx(ctx, tx, version); err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}

	notes := fmt.Sprintf("version %d (%s)", number, req.File.Filename)
	if err := s.appendTimeline(ctx, tx, project.ID, model.ActionVersionUploaded, &editorID, &notes); err != nil {
		return nil, err
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateClientView(ctx, project.PublicID)

	return s.updatedResponse(project), nil
}

// =====================================================
// ADMIN REVIEW
// =====================================================

func (s *projectService) Review(ctx context.Context, adminID, projectID uuid.UUID, req model.ReviewRequest) (*model.UpdatedProjectResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	// Step 2: Load project; review is only legal on completed work
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanBeReviewed() {
		return nil, model.NewProjectError(
			model.ErrCodeInvalidTransition,
			fmt.Sprintf("Review requires status '%s', project is '%s'", model.StatusCompleted, project.Status),
			model.ErrInvalidTransition,
		)
	}

	target, ok := model.ReviewTarget(req.Action, project.Status)
	if !ok {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Unknown review action", nil)
	}

	versions, err := s.projectRepo.GetVersionsByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}
	latest := model.LatestVersion(versions)

	// Step 3: Apply. The reassign flag records the decision without a
	// status change; approve/revision move the project and stamp the
	// latest version's approval state.
	project.Status = target

	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.UpdateProjectWithTx(ctx, tx, project); err != nil {
		return nil, err
	}

	if latest != nil {
		switch req.Action {
		case model.ReviewActionApprove:
			err = s.projectRepo.UpdateVersionApprovalWithTx(ctx, tx, project.ID, latest.Number, model.ApprovalApproved)
		case model.ReviewActionRevision:
			err = s.projectRepo.UpdateVersionApprovalWithTx(ctx, tx, project.ID, latest.Number, model.ApprovalRejected)
		}
		if err != nil {
			return nil, err
		}
	}

	var action string
	switch req.Action {
	case model.ReviewActionApprove:
		action = model.ActionReviewApproved
	case model.ReviewActionRevision:
		action = model.ActionRevisionRequested
	case model.ReviewActionReassign:
		action = model.ActionReassignFlagged
	}
	if err := s.appendTimeline(ctx, tx, project.ID, action, &adminID, &req.Comment); err != nil {
		return nil, err
	}

	comment := &model.AdminComment{
		ID:        uuid.New(),
		ProjectID: project.ID,
		AdminID:   adminID,
		Kind:      model.ReviewCommentKind(req.Action),
		Comment:   req.Comment,
	}
	if err := s.projectRepo.CreateAdminCommentWithTx(ctx, tx, comment); err != nil {
		return nil, fmt.Errorf("failed to create admin comment: %w", err)
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Step 4: Notify after commit
	switch req.Action {
	case model.ReviewActionApprove:
		s.enqueueReviewResult(project, project.ClientEmail, project.ClientName, true, req.Comment)
	case model.ReviewActionRevision:
		if editor, eerr := s.editors.GetEditorByID(ctx, *project.AssignedEditorID); eerr == nil && editor != nil {
			s.enqueueReviewResult(project, editor.Email, editor.FullName, false, req.Comment)
		}
	}
	s.invalidateClientView(ctx, project.PublicID)

	return s.updatedResponse(project), nil
}

// =====================================================
// CLIENT FEEDBACK
// =====================================================

func (s *projectService) SubmitFeedback(ctx context.Context, publicID string, req model.SubmitFeedbackRequest) (*model.UpdatedProjectResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	// Step 2: Load by public id; unknown id reads as not-found
	project, err := s.projectRepo.GetProjectByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptsClientFeedback() {
		return nil, model.NewProjectError(
			model.ErrCodeInvalidTransition,
			fmt.Sprintf("Feedback is not accepted while project is '%s'", project.Status),
			model.ErrInvalidTransition,
		)
	}

	satisfied := req.Satisfied != nil && *req.Satisfied
	target, ok := model.FeedbackTarget(req.Status, satisfied, req.ReEditRequested)
	if !ok {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Unknown feedback response", nil)
	}

	// Step 3: Resolve the version the feedback refers to
	versionNumber := 0
	if req.VersionNumber != nil {
		versionNumber = *req.VersionNumber
	} else {
		versions, verr := s.projectRepo.GetVersionsByProjectID(ctx, project.ID)
		if verr != nil {
			return nil, fmt.Errorf("failed to load versions: %w", verr)
		}
		if latest := model.LatestVersion(versions); latest != nil {
			versionNumber = latest.Number
		}
	}

	feedback := &model.Feedback{
		ID:              uuid.New(),
		ProjectID:       project.ID,
		Message:         req.Message,
		VersionNumber:   versionNumber,
		ResponseState:   req.Status,
		Rating:          req.Rating,
		Satisfied:       req.Satisfied,
		ReEditRequested: req.ReEditRequested,
	}

	project.Status = target

	// Step 4: Persist feedback + status + timeline atomically. Actor is nil
	// in the timeline: client actions are unauthenticated by design.
	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	if err := s.projectRepo.UpdateProjectWithTx(ctx, tx, project); err != nil {
		return nil, err
	}
	if err := s.projectRepo.CreateFeedbackWithTx(ctx, tx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	var action string
	switch target {
	case model.StatusDelivered:
		action = model.ActionClientApproved
	case model.StatusClientReEdit:
		action = model.ActionClientReEdit
	default:
		action = model.ActionClientRevision
	}
	if err := s.appendTimeline(ctx, tx, project.ID, action, nil, &req.Message); err != nil {
		return nil, err
	}

	if err := s.projectRepo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Step 5: A plain revision request (no re-edit) needs an admin to take
	// over; alert the admin inbox after commit.
	if target == model.StatusRevisionRequested {
		s.enqueueClientFeedbackAlert(project, req.Message)
	}
	s.invalidateClientView(ctx, project.PublicID)

	return s.updatedResponse(project), nil
}

// =====================================================
// READ OPERATIONS
// =====================================================

func (s *projectService) GetClientView(ctx context.Context, publicID string) (*model.ClientProjectView, error) {
	key := clientViewKey(publicID)

	if s.cache != nil {
		var cached model.ClientProjectView
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	project, err := s.projectRepo.GetProjectByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	versions, err := s.projectRepo.GetVersionsByProjectID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}

	timeline, err := s.projectRepo.GetTimelineByProjectID(ctx, project.ID, model.AudienceClient)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}

	view := &model.ClientProjectView{
		PublicID:  project.PublicID,
		Title:     project.Title,
		Status:    project.Status,
		Progress:  project.Progress,
		UpdatedAt: project.UpdatedAt,
	}
	if latest := model.LatestVersion(versions); latest != nil {
		view.LatestVersion = &model.ClientVersionView{
			Number:        latest.Number,
			Filename:      latest.Filename,
			StorageURL:    latest.StorageURL,
			ApprovalState: latest.ApprovalState,
			UploadDate:    latest.UploadDate,
		}
	}
	view.Timeline = make([]model.ClientTimelineView, 0, len(timeline))
	for _, entry := range timeline {
		view.Timeline = append(view.Timeline, model.ClientTimelineView{
			Action:    entry.Action,
			Timestamp: entry.CreatedAt,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, clientViewTTL); err != nil {
			logger.Error("Failed to cache client view", err)
		}
	}

	return view, nil
}

func (s *projectService) ListProjects(ctx context.Context, req model.ListProjectsRequest) (*model.ListProjectsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	projects, total, err := s.projectRepo.ListProjects(ctx, req.Status, req.Page, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return buildListResponse(projects, total, req), nil
}

func (s *projectService) ListEditorProjects(ctx context.Context, editorID uuid.UUID, req model.ListProjectsRequest) (*model.ListProjectsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewProjectError(model.ErrCodeValidation, "Invalid request", err)
	}

	projects, total, err := s.projectRepo.ListProjectsByEditorID(ctx, editorID, req.Status, req.Page, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list editor projects: %w", err)
	}

	return buildListResponse(projects, total, req), nil
}

func (s *projectService) GetProjectDetail(ctx context.Context, projectID uuid.UUID) (*model.ProjectDetailResponse, error) {
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, project)
}

func (s *projectService) GetEditorProjectDetail(ctx context.Context, editorID, projectID uuid.UUID) (*model.ProjectDetailResponse, error) {
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAssignedTo(editorID) {
		return nil, model.ErrProjectNotFound
	}
	return s.buildDetail(ctx, project)
}

func (s *projectService) buildDetail(ctx context.Context, project *model.Project) (*model.ProjectDetailResponse, error) {
	versions, err := s.projectRepo.GetVersionsByProjectID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}
	feedback, err := s.projectRepo.GetFeedbackByProjectID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	timeline, err := s.projectRepo.GetTimelineByProjectID(ctx, project.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	comments, err := s.projectRepo.GetAdminCommentsByProjectID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin comments: %w", err)
	}

	detail := &model.ProjectDetailResponse{
		Project:        project,
		Versions:       versions,
		Feedback:       feedback,
		Timeline:       timeline,
		AdminComments:  comments,
		RemainingHours: project.RemainingHours(s.now()),
	}

	if project.AssignedEditorID != nil {
		if editor, eerr := s.editors.GetEditorByID(ctx, *project.AssignedEditorID); eerr == nil && editor != nil {
			detail.Editor = &model.EditorSummary{
				ID:       editor.ID,
				FullName: editor.FullName,
				Email:    editor.Email,
			}
		}
	}

	if files, serr := s.store.ListFiles(ctx, project.StorageFolder); serr != nil {
		logger.Error("failed to list project storage files", serr)
	} else {
		for _, f := range files {
			detail.StorageFiles = append(detail.StorageFiles, model.StorageObject{Key: f.Key, URL: f.URL})
		}
	}

	return detail, nil
}

// =====================================================
// DEADLINE TRACKING
// =====================================================

// CheckDeadlineExceeded evaluates the assignment deadline and latches the
// exceeded flag. The latch is one-way: once set it survives later status
// changes, and only a fresh assignment deadline clears it.
func (s *projectService) CheckDeadlineExceeded(ctx context.Context, projectID uuid.UUID) (bool, error) {
	project, err := s.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return false, err
	}

	if project.IsEditorDeadlineExceeded {
		return true, nil
	}
	if !project.DeadlineExceeded(s.now()) {
		return false, nil
	}

	if err := s.latchDeadline(ctx, project); err != nil {
		return false, err
	}
	return true, nil
}

// SweepOverdueDeadlines latches every overdue project. Run periodically by
// the worker so missed deadlines surface without waiting for a request.
func (s *projectService) SweepOverdueDeadlines(ctx context.Context) (int, error) {
	overdue, err := s.projectRepo.ListOverdueProjects(ctx, s.now())
	if err != nil {
		return 0, err
	}

	latched := 0
	for i := range overdue {
		if err := s.latchDeadline(ctx, &overdue[i]); err != nil {
			logger.Error("Failed to latch overdue deadline", err)
			continue
		}
		latched++
	}

	return latched, nil
}

func (s *projectService) latchDeadline(ctx context.Context, project *model.Project) error {
	set, err := s.projectRepo.LatchDeadlineExceeded(ctx, project.ID, s.now())
	if err != nil {
		return err
	}
	if !set {
		// Another check or sweep latched it first.
		return nil
	}

	// The breach gets exactly one timeline record, written when the latch
	// flips.
	tx, err := s.projectRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.projectRepo.RollbackTx(ctx, tx)

	notes := fmt.Sprintf("deadline was %s", project.EditorDeadline.Format(time.RFC3339))
	if err := s.appendTimeline(ctx, tx, project.ID, model.ActionDeadlineExceeded, nil, &notes); err != nil {
		return err
	}

	return s.projectRepo.CommitTx(ctx, tx)
}

// =====================================================
// PRIVATE HELPERS
// =====================================================

func (s *projectService) appendTimeline(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, action string, actorID *uuid.UUID, notes *string) error {
	entry := &model.TimelineEntry{
		ID:        uuid.New(),
		ProjectID: projectID,
		Action:    action,
		ActorID:   actorID,
		Audience:  model.AudienceForAction(action),
		Notes:     notes,
	}
	if err := s.projectRepo.AppendTimelineWithTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}
	return nil
}

func (s *projectService) updatedResponse(project *model.Project) *model.UpdatedProjectResponse {
	return &model.UpdatedProjectResponse{
		Project:        project,
		RemainingHours: project.RemainingHours(s.now()),
	}
}

func (s *projectService) invalidateClientView(ctx context.Context, publicID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, clientViewKey(publicID)); err != nil {
		logger.Error("Failed to invalidate client view cache", err)
	}
}

func clientViewKey(publicID string) string {
	return "project:client_view:" + publicID
}

func buildListResponse(projects []model.Project, total int, req model.ListProjectsRequest) *model.ListProjectsResponse {
	summaries := make([]model.ProjectSummaryResponse, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, model.ProjectSummaryResponse{
			ID:                       p.ID,
			PublicID:                 p.PublicID,
			Title:                    p.Title,
			ClientName:               p.ClientName,
			Status:                   p.Status,
			Progress:                 p.Progress,
			AssignedEditorID:         p.AssignedEditorID,
			EditorDeadline:           p.EditorDeadline,
			IsEditorDeadlineExceeded: p.IsEditorDeadlineExceeded,
			CreatedAt:                p.CreatedAt,
		})
	}

	totalPages := 0
	if req.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}

	return &model.ListProjectsResponse{
		Projects: summaries,
		Pagination: model.PaginationMeta{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// =====================================================
// NOTIFICATION ENQUEUE (POST-COMMIT, BEST-EFFORT)
// =====================================================

func (s *projectService) enqueueAssignmentNotification(project *model.Project, editor *repository.Editor, isReassignment bool, hours int) {
	payload := shared.AssignmentNotificationPayload{
		ProjectID:      project.ID.String(),
		ProjectTitle:   project.Title,
		EditorEmail:    editor.Email,
		EditorName:     editor.FullName,
		IsReassignment: isReassignment,
		DeadlineHours:  hours,
		Deadline:       project.EditorDeadline.Format(time.RFC3339),
	}
	s.enqueue(shared.TypeNotifyAssignment, payload)
}

func (s *projectService) enqueueReviewResult(project *model.Project, email, name string, approved bool, comment string) {
	payload := shared.ReviewResultPayload{
		ProjectID:      project.ID.String(),
		ProjectTitle:   project.Title,
		RecipientEmail: email,
		RecipientName:  name,
		Approved:       approved,
		Comment:        comment,
	}
	s.enqueue(shared.TypeNotifyReviewResult, payload)
}

func (s *projectService) enqueueClientFeedbackAlert(project *model.Project, message string) {
	payload := shared.ClientFeedbackAlertPayload{
		ProjectID:    project.ID.String(),
		ProjectTitle: project.Title,
		ClientName:   project.ClientName,
		Message:      message,
	}
	s.enqueue(shared.TypeNotifyClientFeedback, payload)
}

func (s *projectService) enqueue(taskType string, payload interface{}) {
	if s.asynq == nil {
		return
	}
	task, err := utils.MarshalTask(taskType, payload)
	if err != nil {
		logger.Error("Failed to marshal notification task", err)
		return
	}
	if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueNotifications), asynq.MaxRetry(3)); err != nil {
		logger.Error("Failed to enqueue notification task", err)
	}
}
