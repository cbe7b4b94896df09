package service

import (
	"context"

	"github.com/shubham-ralli/form-b/internal/models"
)

// FormStore persists forms. Lookups of unknown ids return (nil, nil).
type FormStore interface {
	Create(ctx context.Context, form *models.Form) (string, error)
	FindByID(ctx context.Context, id string) (*models.Form, error)
	// FindByUser returns the user's forms, most recently updated first.
	FindByUser(ctx context.Context, userID string) ([]models.Form, error)
	// FindActive returns every form whose activation flag is not false.
	FindActive(ctx context.Context) ([]models.Form, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, id string, form *models.Form) error
	SetActive(ctx context.Context, id string, active bool, updatedAt string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// SubmissionStore persists submissions.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	// FindByFormIDs returns submissions for any of the forms, newest first.
	FindByFormIDs(ctx context.Context, formIDs []string, skip, limit int) ([]models.Submission, int, error)
	CountByFormIDs(ctx context.Context, formIDs []string) (map[string]int, error)
	// CountSince counts submissions for the forms submitted at or after since.
	CountSince(ctx context.Context, formIDs []string, since string) (int, error)
	DeleteByFormID(ctx context.Context, formID string) (int, error)
}

// UserStore persists users. Emails are stored lower-cased.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (string, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, fields map[string]any) (bool, error)
	UpdateByEmail(ctx context.Context, email string, fields map[string]any) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Stores bundles one backend's stores.
type Stores struct {
	Forms       FormStore
	Submissions SubmissionStore
	Users       UserStore
}
