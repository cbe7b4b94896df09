package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shubham-ralli/form-b/internal/models"
)

type FormService struct {
	stores Stores
	now    func() time.Time
}

func NewFormService(stores Stores) *FormService {
	return &FormService{stores: stores, now: time.Now}
}

// FormInput is the body of create and full-update requests.
type FormInput struct {
	Title              string                `json:"title" validate:"required,max=200"`
	Description        string                `json:"description" validate:"max=2000"`
	Elements           []models.Element      `json:"elements" validate:"dive"`
	IsActive           *bool                 `json:"isActive"`
	SubmissionType     models.SubmissionType `json:"submissionType" validate:"omitempty,oneof=message redirect"`
	RedirectURL        string                `json:"redirectUrl" validate:"required_if=SubmissionType redirect,omitempty,url"`
	SuccessMessageHTML string                `json:"successMessageHtml"`
	ButtonText         string                `json:"buttonText" validate:"max=60"`
}

// Caller identifies who is acting.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) admin() bool { return c.Role == models.RoleAdmin }

// PublicListing is one entry of the public form directory.
type PublicListing struct {
	models.PublicForm
	CreatorName     string `json:"creatorName"`
	SubmissionCount int    `json:"submissionCount"`
	CreatedAt       string `json:"createdAt"`
}

func (s *FormService) Create(ctx context.Context, caller Caller, in FormInput) (*models.Form, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}
	if !caller.admin() {
		user, err := s.stores.Users.FindByID(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fail(ErrUnauthorized, "User not found")
		}
		limit := effectivePlan(user, s.now()).Features.MaxForms
		if limit != models.Unlimited {
			n, err := s.stores.Forms.CountByUser(ctx, caller.UserID)
			if err != nil {
				return nil, err
			}
			if n >= limit {
				return nil, fail(ErrQuota, "Form limit reached for your plan. Upgrade to create more forms.")
			}
		}
	}

	now := models.Timestamp(s.now())
	form := &models.Form{UserID: caller.UserID, CreatedAt: now, UpdatedAt: now, IsActive: true}
	apply(form, in)

	id, err := s.stores.Forms.Create(ctx, form)
	if err != nil {
		return nil, err
	}
	form.ID = id
	return form, nil
}

// List returns the caller's forms with submission counts attached.
func (s *FormService) List(ctx context.Context, userID string) ([]models.Form, error) {
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, forms)
}

func (s *FormService) withCounts(ctx context.Context, forms []models.Form) ([]models.Form, error) {
	counts, err := s.stores.Submissions.CountByFormIDs(ctx, formIDs(forms))
	if err != nil {
		return nil, err
	}
	for i := range forms {
		forms[i].SubmissionCount = counts[forms[i].ID]
	}
	return forms, nil
}

// Public returns the unauthenticated view of a form, inactive or not.
func (s *FormService) Public(ctx context.Context, id string) (*models.PublicForm, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := form.Public()
	return &pub, nil
}

// PublicList returns every active form with its creator's name.
func (s *FormService) PublicList(ctx context.Context) ([]PublicListing, error) {
	forms, err := s.stores.Forms.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	forms, err = s.withCounts(ctx, forms)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	out := make([]PublicListing, 0, len(forms))
	for _, f := range forms {
		name, ok := names[f.UserID]
		if !ok && f.UserID != "" {
			if u, err := s.stores.Users.FindByID(ctx, f.UserID); err == nil && u != nil {
				name = u.Name
			}
			names[f.UserID] = name
		}
		if name == "" {
			name = "Unknown"
		}
		out = append(out, PublicListing{
			PublicForm:      f.Public(),
			CreatorName:     name,
			SubmissionCount: f.SubmissionCount,
			CreatedAt:       f.CreatedAt,
		})
	}
	return out, nil
}

func (s *FormService) Update(ctx context.Context, caller Caller, id string, in FormInput) (*models.Form, error) {
	form, err := s.owned(ctx, caller, id, false)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}
	apply(form, in)
	form.UpdatedAt = models.Timestamp(s.now())
	if err := s.stores.Forms.Update(ctx, id, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) SetStatus(ctx context.Context, caller Caller, id string, active bool) (*models.Form, error) {
	form, err := s.owned(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	form.IsActive = active
	form.UpdatedAt = models.Timestamp(s.now())
	ok, err := s.stores.Forms.SetActive(ctx, id, active, form.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fail(ErrNotFound, "Form not found")
	}
	return form, nil
}

// Delete removes a form and its submissions.
func (s *FormService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.owned(ctx, caller, id, true); err != nil {
		return err
	}
	if _, err := s.stores.Submissions.DeleteByFormID(ctx, id); err != nil {
		return err
	}
	ok, err := s.stores.Forms.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "Form not found")
	}
	return nil
}

// Submissions lists a form's submissions for its owner or an admin.
func (s *FormService) Submissions(ctx context.Context, caller Caller, id string, skip, limit int) ([]models.Submission, int, error) {
	if _, err := s.owned(ctx, caller, id, true); err != nil {
		return nil, 0, err
	}
	return s.stores.Submissions.FindByFormIDs(ctx, []string{id}, skip, limit)
}

func (s *FormService) find(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.stores.Forms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, fail(ErrNotFound, "Form not found")
	}
	return form, nil
}

func (s *FormService) owned(ctx context.Context, caller Caller, id string, adminOK bool) (*models.Form, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.UserID != caller.UserID && !(adminOK && caller.admin()) {
		return nil, fail(ErrForbidden, "Not authorized to access this form")
	}
	return form, nil
}

func apply(form *models.Form, in FormInput) {
	form.Title = in.Title
	form.Description = in.Description
	form.Elements = make([]models.Element, len(in.Elements))
	for i, el := range in.Elements {
		if el.ID == "" {
			el.ID = uuid.NewString()
		}
		if el.Width == "" {
			el.Width = models.WidthFull
		}
		form.Elements[i] = el
	}
	if in.IsActive != nil {
		form.IsActive = *in.IsActive
	}
	form.SubmissionType = in.SubmissionType
	if form.SubmissionType == "" {
		form.SubmissionType = models.SubmissionMessage
	}
	form.RedirectURL = in.RedirectURL
	form.SuccessMessageHTML = in.SuccessMessageHTML
	form.ButtonText = in.ButtonText
}
