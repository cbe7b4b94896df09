package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shubham-ralli/form-b/internal/antibot"
	"github.com/shubham-ralli/form-b/internal/models"
)

type SubmissionService struct {
	stores Stores
	bots   *antibot.Checker
	now    func() time.Time
}

func NewSubmissionService(stores Stores, bots *antibot.Checker) *SubmissionService {
	return &SubmissionService{stores: stores, bots: bots, now: time.Now}
}

type SubmitInput struct {
	FormID string         `json:"formId" validate:"required"`
	Data   map[string]any `json:"data"`
}

// Origin is what the server knows about the submitter.
type Origin struct {
	IP        string
	UserAgent string
}

func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput, origin Origin) (*models.Submission, error) {
	if err := check(in); err != nil {
		return nil, fail(ErrInvalid, "Form ID is required")
	}
	form, err := s.stores.Forms.FindByID(ctx, in.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, fail(ErrNotFound, "Form not found")
	}
	if !form.IsActive {
		return nil, fail(ErrForbidden, "This form is not accepting submissions")
	}

	var flags []string
	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	if s.bots != nil {
		flags, data = s.bots.Inspect(ctx, form.ID, origin.IP, origin.UserAgent, data)
	}
	if err := requireFields(form, data); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, form); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		FormID:      form.ID,
		Data:        data,
		SubmittedAt: models.Timestamp(s.now()),
		IPAddress:   origin.IP,
		UserAgent:   origin.UserAgent,
		Flags:       flags,
		UserID:      form.UserID,
	}
	id, err := s.stores.Submissions.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	return sub, nil
}

// checkQuota enforces the owner's monthly submission cap across all of the
// owner's forms. Forms without an owner are uncapped.
func (s *SubmissionService) checkQuota(ctx context.Context, form *models.Form) error {
	if form.UserID == "" {
		return nil
	}
	owner, err := s.stores.Users.FindByID(ctx, form.UserID)
	if err != nil {
		return err
	}
	if owner == nil {
		return nil
	}
	limit := effectivePlan(owner, s.now()).Features.MaxSubmissions
	if limit == models.Unlimited {
		return nil
	}
	forms, err := s.stores.Forms.FindByUser(ctx, owner.ID)
	if err != nil {
		return err
	}
	n, err := s.stores.Submissions.CountSince(ctx, formIDs(forms), monthStart(s.now()))
	if err != nil {
		return err
	}
	if n >= limit {
		return fail(ErrQuota, "This form has reached its monthly submission limit")
	}
	return nil
}

func requireFields(form *models.Form, data map[string]any) error {
	for _, el := range form.Elements {
		if !el.Required || !el.Type.Input() || el.Type == models.ElementFile {
			continue
		}
		if blank(data[el.ID]) {
			label := el.Label
			if label == "" {
				label = el.ID
			}
			return fail(ErrInvalid, fmt.Sprintf("%s is required", label))
		}
	}
	return nil
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

// ListForUser returns submissions across all of the user's forms, newest first.
func (s *SubmissionService) ListForUser(ctx context.Context, userID string, skip, limit int) ([]models.Submission, int, error) {
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.stores.Submissions.FindByFormIDs(ctx, formIDs(forms), skip, limit)
}
