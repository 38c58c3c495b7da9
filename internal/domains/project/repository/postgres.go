package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"editflow-backend/internal/domains/project/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &postgresProjectRepository{
		pool: pool,
	}
}

// =====================================================
// TRANSACTION MANAGEMENT
// =====================================================

func (r *postgresProjectRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresProjectRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresProjectRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

// =====================================================
// PROJECT AGGREGATE
// =====================================================

const projectColumns = `
	id, public_id, title, client_name, client_email,
	status, progress,
	assigned_editor_id, assigned_date, editor_deadline_hours, editor_deadline,
	is_editor_deadline_exceeded,
	raw_file_name, raw_storage_key, storage_folder,
	created_at, updated_at, lock_version`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.PublicID,
		&p.Title,
		&p.ClientName,
		&p.ClientEmail,
		&p.Status,
		&p.Progress,
		&p.AssignedEditorID,
		&p.AssignedDate,
		&p.EditorDeadlineHours,
		&p.EditorDeadline,
		&p.IsEditorDeadlineExceeded,
		&p.RawFileName,
		&p.RawStorageKey,
		&p.StorageFolder,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.LockVersion,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresProjectRepository) CreateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error {
	query := `
		INSERT INTO projects (
			id, public_id, title, client_name, client_email,
			status, progress,
			raw_file_name, raw_storage_key, storage_folder,
			lock_version
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10,
			$11
		)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		project.ID,
		project.PublicID,
		project.Title,
		project.ClientName,
		project.ClientEmail,
		project.Status,
		project.Progress,
		project.RawFileName,
		project.RawStorageKey,
		project.StorageFolder,
		project.LockVersion,
	).Scan(&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *postgresProjectRepository) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}

	return project, nil
}

func (r *postgresProjectRepository) GetProjectByPublicID(ctx context.Context, publicID string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE public_id = $1`

	project, err := scanProject(r.pool.QueryRow(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by public id: %w", err)
	}

	return project, nil
}

// UpdateProjectWithTx writes the mutated aggregate with optimistic locking.
// Zero rows affected means another transition committed first; the caller
// must roll back and surface ErrVersionMismatch.
func (r *postgresProjectRepository) UpdateProjectWithTx(ctx context.Context, tx pgx.Tx, project *model.Project) error {
	query := `
		UPDATE projects
		SET status = $1,
		    progress = $2,
		    assigned_editor_id = $3,
		    assigned_date = $4,
		    editor_deadline_hours = $5,
		    editor_deadline = $6,
		    is_editor_deadline_exceeded = $7,
		    lock_version = lock_version + 1,
		    updated_at = NOW()
		WHERE id = $8 AND lock_version = $9
	`

	result, err := tx.Exec(ctx, query,
		project.Status,
		project.Progress,
		project.AssignedEditorID,
		project.AssignedDate,
		project.EditorDeadlineHours,
		project.EditorDeadline,
		project.IsEditorDeadlineExceeded,
		project.ID,
		project.LockVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionMismatch
	}

	project.LockVersion++
	return nil
}

// =====================================================
// TIMELINE LEDGER
// =====================================================

// AppendTimelineWithTx is pure append: no update or delete path exists for
// project_timeline anywhere in this repository.
func (r *postgresProjectRepository) AppendTimelineWithTx(ctx context.Context, tx pgx.Tx, entry *model.TimelineEntry) error {
	query := `
		INSERT INTO project_timeline (id, project_id, action, actor_id, audience, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		entry.ID,
		entry.ProjectID,
		entry.Action,
		entry.ActorID,
		entry.Audience,
		entry.Notes,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}

	return nil
}

func (r *postgresProjectRepository) GetTimelineByProjectID(ctx context.Context, projectID uuid.UUID, audience string) ([]model.TimelineEntry, error) {
	query := `
		SELECT id, project_id, action, actor_id, audience, notes, created_at
		FROM project_timeline
		WHERE project_id = $1 AND ($2 = '' OR audience = $2)
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, projectID, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	defer rows.Close()

	var entries []model.TimelineEntry
	for rows.Next() {
		var e model.TimelineEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Action, &e.ActorID, &e.Audience, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// =====================================================
// VERSION REGISTRY
// =====================================================

func (r *postgresProjectRepository) CreateVersionWithTx(ctx context.Context, tx pgx.Tx, version *model.Version) error {
	query := `
		INSERT INTO project_versions (
			id, project_id, number, filename, storage_key, storage_url, notes, approval_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING upload_date
	`

	err := tx.QueryRow(ctx, query,
		version.ID,
		version.ProjectID,
		version.Number,
		version.Filename,
		version.StorageKey,
		version.StorageURL,
		version.Notes,
		version.ApprovalState,
	).Scan(&version.UploadDate)

	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	return nil
}

func (r *postgresProjectRepository) GetVersionsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Version, error) {
	query := `
		SELECT id, project_id, number, filename, storage_key, storage_url, notes, approval_state, upload_date
		FROM project_versions
		WHERE project_id = $1
		ORDER BY upload_date ASC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get versions: %w", err)
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		var v model.Version
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Number, &v.Filename, &v.StorageKey, &v.StorageURL, &v.Notes, &v.ApprovalState, &v.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

func (r *postgresProjectRepository) UpdateVersionApprovalWithTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, number int, state string) error {
	query := `
		UPDATE project_versions
		SET approval_state = $1
		WHERE project_id = $2 AND number = $3
	`

	result, err := tx.Exec(ctx, query, state, projectID, number)
	if err != nil {
		return fmt.Errorf("failed to update version approval: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrVersionNotFound
	}

	return nil
}

// =====================================================
// FEEDBACK LEDGER
// =====================================================

func (r *postgresProjectRepository) CreateFeedbackWithTx(ctx context.Context, tx pgx.Tx, feedback *model.Feedback) error {
	query := `
		INSERT INTO project_feedback (
			id, project_id, message, version_number, response_state,
			rating, satisfied, re_edit_requested
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		feedback.ID,
		feedback.ProjectID,
		feedback.Message,
		feedback.VersionNumber,
		feedback.ResponseState,
		feedback.Rating,
		feedback.Satisfied,
		feedback.ReEditRequested,
	).Scan(&feedback.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

func (r *postgresProjectRepository) GetFeedbackByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Feedback, error) {
	query := `
		SELECT id, project_id, message, version_number, response_state,
		       rating, satisfied, re_edit_requested, created_at
		FROM project_feedback
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	defer rows.Close()

	var feedback []model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Message, &f.VersionNumber, &f.ResponseState, &f.Rating, &f.Satisfied, &f.ReEditRequested, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, f)
	}

	return feedback, rows.Err()
}

// =====================================================
// ADMIN COMMENTS
// =====================================================

func (r *postgresProjectRepository) CreateAdminCommentWithTx(ctx context.Context, tx pgx.Tx, comment *model.AdminComment) error {
	query := `
		INSERT INTO admin_comments (id, project_id, admin_id, kind, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		comment.ID,
		comment.ProjectID,
		comment.AdminID,
		comment.Kind,
		comment.Comment,
	).Scan(&comment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create admin comment: %w", err)
	}

	return nil
}

func (r *postgresProjectRepository) GetAdminCommentsByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.AdminComment, error) {
	query := `
		SELECT id, project_id, admin_id, kind, comment, created_at
		FROM admin_comments
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin comments: %w", err)
	}
	defer rows.Close()

	var comments []model.AdminComment
	for rows.Next() {
		var c model.AdminComment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.AdminID, &c.Kind, &c.Comment, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// =====================================================
// LIST OPERATIONS
// =====================================================

func (r *postgresProjectRepository) ListProjects(ctx context.Context, status string, page, limit int) ([]model.Project, int, error) {
	return r.listProjects(ctx, `($1 = '' OR status = $1)`, status, page, limit, nil)
}

func (r *postgresProjectRepository) ListProjectsByEditorID(ctx context.Context, editorID uuid.UUID, status string, page, limit int) ([]model.Project, int, error) {
	return r.listProjects(ctx, `assigned_editor_id = $4 AND ($1 = '' OR status = $1)`, status, page, limit, &editorID)
}

func (r *postgresProjectRepository) listProjects(ctx context.Context, where, status string, page, limit int, editorID *uuid.UUID) ([]model.Project, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM projects WHERE ` + where
	listQuery := `SELECT ` + projectColumns + ` FROM projects WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	args := []interface{}{status, limit, offset}
	countArgs := []interface{}{status}
	if editorID != nil {
		args = append(args, *editorID)
		countArgs = append(countArgs, limit, offset, *editorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	return projects, total, rows.Err()
}

// =====================================================
// DEADLINE TRACKING
// =====================================================

// ListOverdueProjects returns projects whose deadline has passed, is still
// in an active editing status and has not been latched yet.
func (r *postgresProjectRepository) ListOverdueProjects(ctx context.Context, now time.Time) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE editor_deadline IS NOT NULL
		  AND editor_deadline < $1
		  AND is_editor_deadline_exceeded = FALSE
		  AND status IN ($2, $3, $4)`

	rows, err := r.pool.Query(ctx, query, now,
		model.StatusAssigned, model.StatusReassigned, model.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue project: %w", err)
		}
		projects = append(projects, *project)
	}

	return projects, rows.Err()
}

// LatchDeadlineExceeded sets the one-way latch. Conditional so concurrent
// sweeps or checks latch (and log) at most once; only SetDeadline on an
// assignment ever clears the flag again.
func (r *postgresProjectRepository) LatchDeadlineExceeded(ctx context.Context, projectID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE projects
		SET is_editor_deadline_exceeded = TRUE,
		    updated_at = NOW()
		WHERE id = $1
		  AND is_editor_deadline_exceeded = FALSE
		  AND editor_deadline IS NOT NULL
		  AND editor_deadline < $2
		  AND status IN ($3, $4, $5)
	`

	result, err := r.pool.Exec(ctx, query, projectID, now,
		model.StatusAssigned, model.StatusReassigned, model.StatusInProgress)
	if err != nil {
		return false, fmt.Errorf("failed to latch deadline exceeded: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
