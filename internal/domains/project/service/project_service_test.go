package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editflow-backend/internal/domains/project/model"
	"editflow-backend/internal/domains/project/repository"
	"editflow-backend/internal/shared"
)

// =====================================================
// IN-MEMORY FAKES
// =====================================================

// fakeRepo keeps all state in maps and ignores the tx handle: the service
// passes whatever BeginTx returned back into the *WithTx methods, so a nil
// pgx.Tx round-trips cleanly.
type fakeRepo struct {
	projects map[uuid.UUID]*model.Project
	byPublic map[string]uuid.UUID
	timeline []model.TimelineEntry
	versions []model.Version
	feedback []model.Feedback
	comments []model.AdminComment

	// conflictNext makes the next UpdateProjectWithTx fail the optimistic
	// lock, simulating a concurrent writer between read and write.
	conflictNext bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: make(map[uuid.UUID]*model.Project),
		byPublic: make(map[string]uuid.UUID),
	}
}

func (r *fakeRepo) BeginTx(ctx context.Context) (pgx.Tx, error)       { return nil, nil }
func (r *fakeRepo) CommitTx(ctx context.Context, tx pgx.Tx) error     { return nil }
func (r *fakeRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error   { return nil }

func (r *fakeRepo) CreateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error {
	clone := *project
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.projects[project.ID] = &clone
	r.byPublic[project.PublicID] = project.ID
	return nil
}

func (r *fakeRepo) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	stored, ok := r.projects[projectID]
	if !ok {
		return nil, model.ErrProjectNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeRepo) GetProjectByPublicID(ctx context.Context, publicID string) (*model.Project, error) {
	id, ok := r.byPublic[publicID]
	if !ok {
		return nil, model.ErrProjectNotFound
	}
	return r.GetProjectByID(ctx, id)
}

func (r *fakeRepo) UpdateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error {
	stored, ok := r.projects[project.ID]
	if !ok {
		return model.ErrProjectNotFound
	}
	if r.conflictNext {
		r.conflictNext = false
		return model.ErrVersionMismatch
	}
	if stored.LockVersion != project.LockVersion {
		return model.ErrVersionMismatch
	}
	clone := *project
	clone.LockVersion++
	clone.UpdatedAt = time.Now()
	r.projects[project.ID] = &clone
	project.LockVersion++
	return nil
}

func (r *fakeRepo) AppendTimelineWithTx(ctx context.Context, tx pgx.Tx, entry *model.TimelineEntry) error {
	clone := *entry
	clone.CreatedAt = time.Now()
	r.timeline = append(r.timeline, clone)
	return nil
}

func (r *fakeRepo) GetTimelineByProjectID(ctx context.Context, projectID uuid.UUID, audience string) ([]model.TimelineEntry, error) {
	var out []model.TimelineEntry
	for _, e := range r.timeline {
		if e.ProjectID != projectID {
			continue
		}
		if audience != "" && e.Audience != audience {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) CreateVersionWithTx(ctx context.Context, tx pgx.Tx, version *model.Version) error {
	clone := *version
	clone.UploadDate = time.Now()
	r.versions = append(r.versions, clone)
	return nil
}

func (r *fakeRepo) GetVersionsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Version, error) {
	var out []model.Version
	for _, v := range r.versions {
		if v.ProjectID == projectID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateVersionApprovalWithTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, number int, state string) error {
	for i := range r.versions {
		if r.versions[i].ProjectID == projectID && r.versions[i].Number == number {
			r.versions[i].ApprovalState = state
			return nil
		}
	}
	return model.ErrVersionNotFound
}

func (r *fakeRepo) CreateFeedbackWithTx(ctx context.Context, tx pgx.Tx, feedback *model.Feedback) error {
	clone := *feedback
	clone.CreatedAt = time.Now()
	r.feedback = append(r.feedback, clone)
	return nil
}

func (r *fakeRepo) GetFeedbackByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Feedback, error) {
	var out []model.Feedback
	for _, f := range r.feedback {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateAdminCommentWithTx(ctx context.Context, tx pgx.Tx, comment *model.AdminComment) error {
	clone := *comment
	clone.CreatedAt = time.Now()
	r.comments = append(r.comments, clone)
	return nil
}

func (r *fakeRepo) GetAdminCommentsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.AdminComment, error) {
	var out []model.AdminComment
	for _, c := range r.comments {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListProjects(ctx context.Context, status string, page, limit int) ([]model.Project, int, error) {
	var out []model.Project
	for _, p := range r.projects {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListProjectsByEditorID(ctx context.Context, editorID uuid.UUID, status string, page, limit int) ([]model.Project, int, error) {
	var out []model.Project
	for _, p := range r.projects {
		if !p.IsAssignedTo(editorID) {
			continue
		}
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListOverdueProjects(ctx context.Context, now time.Time) ([]model.Project, error) {
	var out []model.Project
	for _, p := range r.projects {
		if !p.IsEditorDeadlineExceeded && p.DeadlineExceeded(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) LatchDeadlineExceeded(ctx context.Context, projectID uuid.UUID, now time.Time) (bool, error) {
	p, ok := r.projects[projectID]
	if !ok {
		return false, model.ErrProjectNotFound
	}
	if p.IsEditorDeadlineExceeded || !p.DeadlineExceeded(now) {
		return false, nil
	}
	p.IsEditorDeadlineExceeded = true
	return true, nil
}

func (r *fakeRepo) timelineFor(projectID uuid.UUID, action string) []model.TimelineEntry {
	var out []model.TimelineEntry
	for _, e := range r.timeline {
		if e.ProjectID == projectID && e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// fakeStore records uploads and can be told to fail.
type fakeStore struct {
	failUpload bool
	uploads    []string
	grants     []string
}

func (s *fakeStore) CreateFolder(ctx context.Context, name string) (string, error) {
	return name + "/", nil
}

func (s *fakeStore) UploadBytes(ctx context.Context, folder, name string, data []byte, contentType string) (*StoredFile, error) {
	if s.failUpload {
		return nil, errors.New("storage unavailable")
	}
	key := folder + name
	s.uploads = append(s.uploads, key)
	return &StoredFile{Key: key, URL: "https://media.test/" + key}, nil
}

func (s *fakeStore) GrantAccess(ctx context.Context, folder, principalEmail string) error {
	s.grants = append(s.grants, folder+"|"+principalEmail)
	return nil
}

func (s *fakeStore) ListFiles(ctx context.Context, folder string) ([]StoredFile, error) {
	return nil, nil
}

// fakeEnqueuer captures tasks instead of talking to redis.
type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (e *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *fakeEnqueuer) typesSeen() []string {
	var out []string
	for _, t := range e.tasks {
		out = append(out, t.Type())
	}
	return out
}

// fakeDirectory is a static editor lookup.
type fakeDirectory struct {
	editors map[uuid.UUID]*repository.Editor
}

func (d *fakeDirectory) GetEditorByID(ctx context.Context, editorID uuid.UUID) (*repository.Editor, error) {
	e, ok := d.editors[editorID]
	if !ok {
		return nil, model.ErrEditorNotFound
	}
	return e, nil
}

// =====================================================
// TEST HARNESS
// =====================================================

type harness struct {
	repo    *fakeRepo
	store   *fakeStore
	enqueue *fakeEnqueuer
	dir     *fakeDirectory
	svc     *projectService
	editor  uuid.UUID
	admin   uuid.UUID
	clock   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	editorID := uuid.New()
	h := &harness{
		repo:    newFakeRepo(),
		store:   &fakeStore{},
		enqueue: &fakeEnqueuer{},
		dir: &fakeDirectory{editors: map[uuid.UUID]*repository.Editor{
			editorID: {ID: editorID, FullName: "Test Editor", Email: "editor@test.local", IsActive: true},
		}},
		editor: editorID,
		admin:  uuid.New(),
		clock:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	svc := NewProjectService(h.repo, h.dir, h.store, nil, h.enqueue).(*projectService)
	svc.now = func() time.Time { return h.clock }
	h.svc = svc
	return h
}

func (h *harness) seedProject(t *testing.T, status string, editorID *uuid.UUID) *model.Project {
	t.Helper()
	p := &model.Project{
		ID:            uuid.New(),
		PublicID:      fmt.Sprintf("pub-%s", uuid.New().String()[:8]),
		Title:         "Wedding highlight reel",
		ClientName:    "Ana Client",
		ClientEmail:   "ana@client.test",
		Status:        status,
		Progress:      0,
		RawFileName:   "raw.mp4",
		RawStorageKey: "projects/x/raw.mp4",
		StorageFolder: "projects/x/",
	}
	if editorID != nil {
		p.AssignedEditorID = editorID
		p.SetDeadline(h.clock, model.DefaultDeadlineHours)
	}
	require.NoError(t, h.repo.CreateProjectWithTx(context.Background(), nil, p))
	return p
}

func (h *harness) current(t *testing.T, id uuid.UUID) *model.Project {
	t.Helper()
	p, err := h.repo.GetProjectByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// =====================================================
// CREATE PROJECT
// =====================================================

func TestCreateProject_Success(t *testing.T) {
	h := newHarness(t)

	resp, err := h.svc.CreateProject(context.Background(), model.CreateProjectRequest{
		Title:       "Wedding highlight reel",
		ClientName:  "Ana Client",
		ClientEmail: "ana@client.test",
	}, model.UploadPayload{Filename: "raw.mp4", ContentType: "video/mp4", Data: []byte("bytes")})

	require.NoError(t, err)
	assert.Equal(t, model.StatusUploaded, resp.Status)
	assert.NotEmpty(t, resp.PublicID)

	stored, err := h.repo.GetProjectByPublicID(context.Background(), resp.PublicID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUploaded, stored.Status)
	assert.Equal(t, 0, stored.Progress)
	assert.NotEmpty(t, stored.RawStorageKey)

	created := h.repo.timelineFor(stored.ID, model.ActionProjectCreated)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].ActorID)
	assert.Equal(t, model.AudienceClient, created[0].Audience)
}

func TestCreateProject_StorageFailureLeavesNoState(t *testing.T) {
	h := newHarness(t)
	h.store.failUpload = true

	_, err := h.svc.CreateProject(context.Background(), model.CreateProjectRequest{
		Title:       "Wedding highlight reel",
		ClientName:  "Ana Client",
		ClientEmail: "ana@client.test",
	}, model.UploadPayload{Filename: "raw.mp4", ContentType: "video/mp4", Data: []byte("bytes")})

	require.Error(t, err)
	var pErr *model.ProjectError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, model.ErrCodeDependencyFailure, pErr.Code)
	assert.Empty(t, h.repo.projects)
	assert.Empty(t, h.repo.timeline)
}

func TestCreateProject_ValidationFailure(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateProject(context.Background(), model.CreateProjectRequest{
		Title: "No client info",
	}, model.UploadPayload{Filename: "raw.mp4", Data: []byte("x")})

	require.Error(t, err)
	assert.Empty(t, h.repo.projects)
}

// =====================================================
// ASSIGN / REASSIGN
// =====================================================

func TestAssignEditor_FirstAssignment(t *testing.T) {
	h := newHarness(t)
	p := h.seedProject(t, model.StatusUploaded, nil)

	resp, err := h.svc.AssignEditor(context.Background(), h.admin, p.ID, model.AssignEditorRequest{
		EditorID: h.editor,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, resp.Project.Status)
	assert.Equal(t, model.DefaultDeadlineHours, resp.RemainingHours)

	stored := h.current(t, p.ID)
	require.NotNil(t, stored.EditorDeadline)
	assert.Equal(t, h.clock.Add(72*time.Hour), *stored.EditorDeadline)
	assert.False(t, stored.IsEditorDeadlineExceeded)

	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionEditorAssigned), 1)
	assert.Contains(t, h.enqueue.typesSeen(), shared.TypeNotifyAssignment)
	require.Len(t, h.store.grants, 1)
	assert.Contains(t, h.store.grants[0], "editor@test.local")
}

func TestAssignEditor_Reassignment(t *testing.T) {
	h := newHarness(t)
	previous := uuid.New()
	p := h.seedProject(t, model.StatusCompleted, &previous)
	h.repo.projects[p.ID].Progress = 100
	h.repo.projects[p.ID].IsEditorDeadlineExceeded = true

	resp, err := h.svc.AssignEditor(context.Background(), h.admin, p.ID, model.AssignEditorRequest{
		EditorID:       h.editor,
		DeadlineHours:  48,
		IsReassignment: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusReassigned, resp.Project.Status)
	assert.Equal(t, 0, resp.Project.Progress)

	stored := h.current(t, p.ID)
	assert.Equal(t, h.clock.Add(48*time.Hour), *stored.EditorDeadline)
	// A fresh deadline clears the exceeded latch.
	assert.False(t, stored.IsEditorDeadlineExceeded)
	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionEditorReassigned), 1)
}

func TestAssignEditor_FlagWithoutDifferentEditorIsPlainAssignment(t *testing.T) {
	h := newHarness(t)
	current := h.editor
	p := h.seedProject(t, model.StatusInProgress, &current)

	resp, err := h.svc.AssignEditor(context.Background(), h.admin, p.ID, model.AssignEditorRequest{
		EditorID:       h.editor,
		IsReassignment: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, resp.Project.Status)
	assert.Empty(t, h.repo.timelineFor(p.ID, model.ActionEditorReassigned))
}

func TestAssignEditor_UnknownEditor(t *testing.T) {
	h := newHarness(t)
	p := h.seedProject(t, model.StatusUploaded, nil)

	_, err := h.svc.AssignEditor(context.Background(), h.admin, p.ID, model.AssignEditorRequest{
		EditorID: uuid.New(),
	})

	require.Error(t, err)
	var pErr *model.ProjectError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, model.ErrCodeEditorNotFound, pErr.Code)
	assert.Equal(t, model.StatusUploaded, h.current(t, p.ID).Status)
}

func TestAssignEditor_CommentRecorded(t *testing.T) {
	h := newHarness(t)
	p := h.seedProject(t, model.StatusUploaded, nil)
	comment := "Focus on the ceremony footage first"

	_, err := h.svc.AssignEditor(context.Background(), h.admin, p.ID, model.AssignEditorRequest{
		EditorID: h.editor,
		Comment:  &comment,
	})

	require.NoError(t, err)
	comments, err := h.repo.GetAdminCommentsByProjectID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, model.CommentKindAssignment, comments[0].Kind)
	assert.Equal(t, comment, comments[0].Comment)
}

// =====================================================
// EDITOR STATUS UPDATE
// =====================================================

func TestUpdateStatus_ValidTransition(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusAssigned, &editorID)
	progress := 30

	resp, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status:   model.StatusInProgress,
		Progress: &progress,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, resp.Project.Status)
	assert.Equal(t, 30, resp.Project.Progress)
	// Exactly one timeline entry per transition.
	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionStatusUpdated), 1)
}

func TestUpdateStatus_InvalidTransitionLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusDelivered, &editorID)

	_, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status: model.StatusInProgress,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Equal(t, model.StatusDelivered, h.current(t, p.ID).Status)
	assert.Empty(t, h.repo.timeline)
}

func TestUpdateStatus_UnassignedEditorReadsNotFound(t *testing.T) {
	h := newHarness(t)
	other := uuid.New()
	p := h.seedProject(t, model.StatusAssigned, &other)

	_, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status: model.StatusInProgress,
	})

	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestUpdateStatus_ProgressClamped(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor

	over := 150
	p := h.seedProject(t, model.StatusAssigned, &editorID)
	resp, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status:   model.StatusInProgress,
		Progress: &over,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Project.Progress)

	under := -5
	p2 := h.seedProject(t, model.StatusAssigned, &editorID)
	resp, err = h.svc.UpdateStatus(context.Background(), h.editor, p2.ID, model.UpdateStatusRequest{
		Status:   model.StatusInProgress,
		Progress: &under,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Project.Progress)
}

func TestUpdateStatus_CompletedForcesFullProgress(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)
	progress := 60

	resp, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status:   model.StatusCompleted,
		Progress: &progress,
	})

	require.NoError(t, err)
	assert.Equal(t, 100, resp.Project.Progress)
}

func TestUpdateStatus_StaleLockVersionConflicts(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusAssigned, &editorID)

	// Another writer bumps the row between our read and write.
	h.repo.conflictNext = true

	_, err := h.svc.UpdateStatus(context.Background(), h.editor, p.ID, model.UpdateStatusRequest{
		Status: model.StatusInProgress,
	})

	assert.ErrorIs(t, err, model.ErrVersionMismatch)
}

// =====================================================
// VERSION UPLOAD
// =====================================================

func TestUploadVersion_NumbersAreMonotonic(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)

	req := model.UploadVersionRequest{
		File: model.UploadPayload{Filename: "cut.mp4", ContentType: "video/mp4", Data: []byte("v")},
	}

	resp, err := h.svc.UploadVersion(context.Background(), h.editor, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Project.Status)
	assert.Equal(t, 100, resp.Project.Progress)

	// Second cut after a revision round.
	h.repo.projects[p.ID].Status = model.StatusRevisionInProgress
	_, err = h.svc.UploadVersion(context.Background(), h.editor, p.ID, req)
	require.NoError(t, err)

	versions, err := h.repo.GetVersionsByProjectID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Number)
	assert.Equal(t, 2, versions[1].Number)
	assert.Equal(t, model.ApprovalPending, versions[1].ApprovalState)
	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionVersionUploaded), 2)
}

func TestUploadVersion_StorageFailureRecordsNothing(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)
	h.store.failUpload = true

	_, err := h.svc.UploadVersion(context.Background(), h.editor, p.ID, model.UploadVersionRequest{
		File: model.UploadPayload{Filename: "cut.mp4", Data: []byte("v")},
	})

	require.Error(t, err)
	assert.Empty(t, h.repo.versions)
	assert.Equal(t, model.StatusInProgress, h.current(t, p.ID).Status)
}

func TestUploadVersion_WrongEditorReadsNotFound(t *testing.T) {
	h := newHarness(t)
	other := uuid.New()
	p := h.seedProject(t, model.StatusInProgress, &other)

	_, err := h.svc.UploadVersion(context.Background(), h.editor, p.ID, model.UploadVersionRequest{
		File: model.UploadPayload{Filename: "cut.mp4", Data: []byte("v")},
	})

	assert.ErrorIs(t, err, model.ErrProjectNotFound)
	assert.Empty(t, h.store.uploads)
}

// =====================================================
// ADMIN REVIEW
// =====================================================

func (h *harness) seedCompletedWithVersion(t *testing.T) *model.Project {
	t.Helper()
	editorID := h.editor
	p := h.seedProject(t, model.StatusCompleted, &editorID)
	require.NoError(t, h.repo.CreateVersionWithTx(context.Background(), nil, &model.Version{
		ID: uuid.New(), ProjectID: p.ID, Number: 1, Filename: "cut.mp4", ApprovalState: model.ApprovalPending,
	}))
	return p
}

func TestReview_Approve(t *testing.T) {
	h := newHarness(t)
	p := h.seedCompletedWithVersion(t)

	resp, err := h.svc.Review(context.Background(), h.admin, p.ID, model.ReviewRequest{
		Action:  model.ReviewActionApprove,
		Comment: "Looks great, ship it",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Project.Status)

	versions, _ := h.repo.GetVersionsByProjectID(context.Background(), p.ID)
	assert.Equal(t, model.ApprovalApproved, versions[0].ApprovalState)

	comments, _ := h.repo.GetAdminCommentsByProjectID(context.Background(), p.ID)
	require.Len(t, comments, 1)
	assert.Equal(t, model.CommentKindReview, comments[0].Kind)

	entries := h.repo.timelineFor(p.ID, model.ActionReviewApproved)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AudienceClient, entries[0].Audience)
	assert.Contains(t, h.enqueue.typesSeen(), shared.TypeNotifyReviewResult)
}

func TestReview_Revision(t *testing.T) {
	h := newHarness(t)
	p := h.seedCompletedWithVersion(t)

	resp, err := h.svc.Review(context.Background(), h.admin, p.ID, model.ReviewRequest{
		Action:  model.ReviewActionRevision,
		Comment: "Audio sync drifts in the second half",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRevisionRequested, resp.Project.Status)

	versions, _ := h.repo.GetVersionsByProjectID(context.Background(), p.ID)
	assert.Equal(t, model.ApprovalRejected, versions[0].ApprovalState)

	entries := h.repo.timelineFor(p.ID, model.ActionRevisionRequested)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AudienceInternal, entries[0].Audience)
}

func TestReview_ReassignLeavesStatusUntouched(t *testing.T) {
	h := newHarness(t)
	p := h.seedCompletedWithVersion(t)

	resp, err := h.svc.Review(context.Background(), h.admin, p.ID, model.ReviewRequest{
		Action:  model.ReviewActionReassign,
		Comment: "Needs a colorist, current editor is booked",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Project.Status)

	comments, _ := h.repo.GetAdminCommentsByProjectID(context.Background(), p.ID)
	require.Len(t, comments, 1)
	assert.Equal(t, model.CommentKindReassignment, comments[0].Kind)

	versions, _ := h.repo.GetVersionsByProjectID(context.Background(), p.ID)
	assert.Equal(t, model.ApprovalPending, versions[0].ApprovalState)
}

func TestReview_RequiresCompletedStatus(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)

	_, err := h.svc.Review(context.Background(), h.admin, p.ID, model.ReviewRequest{
		Action:  model.ReviewActionApprove,
		Comment: "Too early",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Empty(t, h.repo.timeline)
}

// =====================================================
// CLIENT FEEDBACK
// =====================================================

func TestSubmitFeedback_ApprovedDelivers(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusApproved, &editorID)
	require.NoError(t, h.repo.CreateVersionWithTx(context.Background(), nil, &model.Version{
		ID: uuid.New(), ProjectID: p.ID, Number: 2, Filename: "final.mp4", ApprovalState: model.ApprovalApproved,
	}))

	satisfied := true
	resp, err := h.svc.SubmitFeedback(context.Background(), p.PublicID, model.SubmitFeedbackRequest{
		Status:    model.ResponseApproved,
		Message:   "Perfect, thank you!",
		Satisfied: &satisfied,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, resp.Project.Status)

	rows, _ := h.repo.GetFeedbackByProjectID(context.Background(), p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].VersionNumber)

	entries := h.repo.timelineFor(p.ID, model.ActionClientApproved)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ActorID)
}

func TestSubmitFeedback_ReEditRequested(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusApproved, &editorID)

	resp, err := h.svc.SubmitFeedback(context.Background(), p.PublicID, model.SubmitFeedbackRequest{
		Status:          model.ResponseRevisionRequested,
		Message:         "Please trim the intro",
		ReEditRequested: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusClientReEdit, resp.Project.Status)
	assert.NotContains(t, h.enqueue.typesSeen(), shared.TypeNotifyClientFeedback)
}

func TestSubmitFeedback_PlainRevisionAlertsAdmin(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusApproved, &editorID)

	resp, err := h.svc.SubmitFeedback(context.Background(), p.PublicID, model.SubmitFeedbackRequest{
		Status:  model.ResponseRevisionRequested,
		Message: "Color grading feels off",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRevisionRequested, resp.Project.Status)
	assert.Contains(t, h.enqueue.typesSeen(), shared.TypeNotifyClientFeedback)
}

func TestSubmitFeedback_RejectedOutsideFeedbackStates(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)

	_, err := h.svc.SubmitFeedback(context.Background(), p.PublicID, model.SubmitFeedbackRequest{
		Status:  model.ResponseApproved,
		Message: "Too early to approve",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Empty(t, h.repo.feedback)
}

func TestSubmitFeedback_UnknownPublicID(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.SubmitFeedback(context.Background(), "nope", model.SubmitFeedbackRequest{
		Status:  model.ResponseApproved,
		Message: "hello",
	})

	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

// =====================================================
// DEADLINE TRACKING
// =====================================================

func TestCheckDeadlineExceeded_LatchesOnce(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)
	h.repo.projects[p.ID].SetDeadline(h.clock.Add(-100*time.Hour), 72)

	exceeded, err := h.svc.CheckDeadlineExceeded(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.True(t, h.current(t, p.ID).IsEditorDeadlineExceeded)
	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionDeadlineExceeded), 1)

	// The latch survives a later status change; no second timeline entry.
	h.repo.projects[p.ID].Status = model.StatusCompleted
	exceeded, err = h.svc.CheckDeadlineExceeded(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Len(t, h.repo.timelineFor(p.ID, model.ActionDeadlineExceeded), 1)
}

func TestCheckDeadlineExceeded_NotDue(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusInProgress, &editorID)

	exceeded, err := h.svc.CheckDeadlineExceeded(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, exceeded)
	assert.Empty(t, h.repo.timeline)
}

func TestCheckDeadlineExceeded_PastDeadlineOutsideActiveStates(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusCompleted, &editorID)
	past := h.clock.Add(-10 * time.Hour)
	h.repo.projects[p.ID].EditorDeadline = &past

	exceeded, err := h.svc.CheckDeadlineExceeded(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestSweepOverdueDeadlines(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor

	overdueA := h.seedProject(t, model.StatusAssigned, &editorID)
	h.repo.projects[overdueA.ID].SetDeadline(h.clock.Add(-80*time.Hour), 72)
	overdueB := h.seedProject(t, model.StatusInProgress, &editorID)
	h.repo.projects[overdueB.ID].SetDeadline(h.clock.Add(-80*time.Hour), 72)
	onTime := h.seedProject(t, model.StatusInProgress, &editorID)

	latched, err := h.svc.SweepOverdueDeadlines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, latched)
	assert.True(t, h.current(t, overdueA.ID).IsEditorDeadlineExceeded)
	assert.True(t, h.current(t, overdueB.ID).IsEditorDeadlineExceeded)
	assert.False(t, h.current(t, onTime.ID).IsEditorDeadlineExceeded)

	// Second sweep is a no-op.
	latched, err = h.svc.SweepOverdueDeadlines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, latched)
}

// =====================================================
// CLIENT VIEW
// =====================================================

func TestGetClientView_FiltersInternalTimeline(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusCompleted, &editorID)

	require.NoError(t, h.repo.AppendTimelineWithTx(context.Background(), nil, &model.TimelineEntry{
		ID: uuid.New(), ProjectID: p.ID, Action: model.ActionProjectCreated, Audience: model.AudienceClient,
	}))
	require.NoError(t, h.repo.AppendTimelineWithTx(context.Background(), nil, &model.TimelineEntry{
		ID: uuid.New(), ProjectID: p.ID, Action: model.ActionRevisionRequested, Audience: model.AudienceInternal,
	}))
	require.NoError(t, h.repo.CreateVersionWithTx(context.Background(), nil, &model.Version{
		ID: uuid.New(), ProjectID: p.ID, Number: 3, Filename: "v3.mp4", StorageURL: "https://media.test/v3.mp4",
	}))
	require.NoError(t, h.repo.CreateVersionWithTx(context.Background(), nil, &model.Version{
		ID: uuid.New(), ProjectID: p.ID, Number: 1, Filename: "v1.mp4",
	}))

	view, err := h.svc.GetClientView(context.Background(), p.PublicID)
	require.NoError(t, err)
	assert.Equal(t, p.PublicID, view.PublicID)
	require.Len(t, view.Timeline, 1)
	assert.Equal(t, model.ActionProjectCreated, view.Timeline[0].Action)
	require.NotNil(t, view.LatestVersion)
	assert.Equal(t, 3, view.LatestVersion.Number)
}

// =====================================================
// LISTS AND DETAIL
// =====================================================

func TestListEditorProjects_ScopedToEditor(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	other := uuid.New()
	h.seedProject(t, model.StatusAssigned, &editorID)
	h.seedProject(t, model.StatusAssigned, &other)

	resp, err := h.svc.ListEditorProjects(context.Background(), h.editor, model.ListProjectsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.Total)
	require.Len(t, resp.Projects, 1)
}

func TestGetEditorProjectDetail_OwnershipConflatesToNotFound(t *testing.T) {
	h := newHarness(t)
	other := uuid.New()
	p := h.seedProject(t, model.StatusAssigned, &other)

	_, err := h.svc.GetEditorProjectDetail(context.Background(), h.editor, p.ID)
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestGetProjectDetail_IncludesEditorAndRemainingHours(t *testing.T) {
	h := newHarness(t)
	editorID := h.editor
	p := h.seedProject(t, model.StatusAssigned, &editorID)

	detail, err := h.svc.GetProjectDetail(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Editor)
	assert.Equal(t, "Test Editor", detail.Editor.FullName)
	assert.Equal(t, model.DefaultDeadlineHours, detail.RemainingHours)
}
