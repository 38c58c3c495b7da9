package service

import (
	"context"

	"github.com/google/uuid"

	projectrepo "editflow-backend/internal/domains/project/repository"
	"editflow-backend/internal/domains/user/model"
	"editflow-backend/internal/domains/user/repository"
)

// editorDirectory adapts the user repository to the narrow lookup the
// project domain needs for assignment validation.
type editorDirectory struct {
	repo repository.UserRepository
}

// NewEditorDirectory exposes editor accounts to the project domain.
func NewEditorDirectory(repo repository.UserRepository) projectrepo.EditorDirectory {
	return &editorDirectory{repo: repo}
}

func (d *editorDirectory) GetEditorByID(ctx context.Context, editorID uuid.UUID) (*projectrepo.Editor, error) {
	u, err := d.repo.FindByID(ctx, editorID)
	if err != nil {
		return nil, err
	}
	if !u.IsEditor() {
		return nil, model.ErrUserNotFound
	}

	return &projectrepo.Editor{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		IsActive: u.IsActive,
	}, nil
}
