package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/shubham-ralli/form-b/internal/models"
)

type AdminService struct {
	stores   Stores
	adminKey string
}

func NewAdminService(stores Stores, adminKey string) *AdminService {
	return &AdminService{stores: stores, adminKey: adminKey}
}

type UserStats struct {
	models.UserResponse
	TotalForms       int `json:"totalForms"`
	ActiveForms      int `json:"activeForms"`
	TotalSubmissions int `json:"totalSubmissions"`
}

type SetAdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	AdminKey string `json:"adminKey" validate:"required"`
}

func (s *AdminService) ListUsers(ctx context.Context) ([]UserStats, error) {
	users, err := s.stores.Users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		forms, err := s.stores.Forms.FindByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		counts, err := s.stores.Submissions.CountByFormIDs(ctx, formIDs(forms))
		if err != nil {
			return nil, err
		}
		st := UserStats{UserResponse: u.ToResponse(), TotalForms: len(forms)}
		for _, f := range forms {
			if f.IsActive {
				st.ActiveForms++
			}
			st.TotalSubmissions += counts[f.ID]
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *AdminService) SetUserActive(ctx context.Context, caller Caller, userID string, active bool) (*models.UserResponse, error) {
	if userID == caller.UserID && !active {
		return nil, fail(ErrInvalid, "You cannot deactivate your own account")
	}
	ok, err := s.stores.Users.Update(ctx, userID, map[string]any{"isActive": active})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fail(ErrNotFound, "User not found")
	}
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fail(ErrNotFound, "User not found")
	}
	resp := user.ToResponse()
	return &resp, nil
}

// DeleteUser removes the user's submissions, forms and account. Every step
// is attempted; failures are reported together.
func (s *AdminService) DeleteUser(ctx context.Context, caller Caller, userID string) error {
	if userID == caller.UserID {
		return fail(ErrInvalid, "You cannot delete your own account")
	}
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fail(ErrNotFound, "User not found")
	}
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, f := range forms {
		if _, err := s.stores.Submissions.DeleteByFormID(ctx, f.ID); err != nil {
			result = multierror.Append(result, fmt.Errorf("submissions of form %s: %w", f.ID, err))
		}
	}
	if _, err := s.stores.Forms.DeleteByUser(ctx, userID); err != nil {
		result = multierror.Append(result, fmt.Errorf("forms: %w", err))
	}
	if _, err := s.stores.Users.Delete(ctx, userID); err != nil {
		result = multierror.Append(result, fmt.Errorf("user: %w", err))
	}
	return result.ErrorOrNil()
}

func (s *AdminService) UserForms(ctx context.Context, userID string) ([]models.Form, error) {
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fail(ErrNotFound, "User not found")
	}
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.stores.Submissions.CountByFormIDs(ctx, formIDs(forms))
	if err != nil {
		return nil, err
	}
	for i := range forms {
		forms[i].SubmissionCount = counts[forms[i].ID]
	}
	return forms, nil
}

// SetAdmin promotes the account with the given email. It is disabled unless
// an admin key is configured.
func (s *AdminService) SetAdmin(ctx context.Context, in SetAdminInput) error {
	if s.adminKey == "" {
		return fail(ErrForbidden, "Admin promotion is disabled")
	}
	if err := check(in); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(in.AdminKey), []byte(s.adminKey)) != 1 {
		return fail(ErrForbidden, "Invalid admin key")
	}
	ok, err := s.stores.Users.UpdateByEmail(ctx, in.Email, map[string]any{"role": models.RoleAdmin})
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "User not found")
	}
	return nil
}
