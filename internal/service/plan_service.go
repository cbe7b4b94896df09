package service

import (
	"context"
	"time"

	"github.com/shubham-ralli/form-b/internal/models"
)

type PlanService struct {
	stores Stores
	now    func() time.Time
}

func NewPlanService(stores Stores) *PlanService {
	return &PlanService{stores: stores, now: time.Now}
}

func (s *PlanService) List() []models.Plan {
	return models.Plans
}

type SetPlanInput struct {
	PlanID string `json:"planId" validate:"required"`
}

type UpgradeInput struct {
	Plan string `json:"plan" validate:"required,oneof=monthly yearly"`
}

// SetPlan switches the user to planID without touching the expiry.
func (s *PlanService) SetPlan(ctx context.Context, userID string, in SetPlanInput) (*models.UserResponse, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if !models.KnownPlan(in.PlanID) {
		return nil, fail(ErrInvalid, "Invalid plan")
	}
	return s.update(ctx, userID, map[string]any{
		"plan":          in.PlanID,
		"planUpdatedAt": models.Timestamp(s.now()),
	})
}

// Upgrade moves the user to a pro plan and sets the subscription expiry one
// billing period out.
func (s *PlanService) Upgrade(ctx context.Context, userID string, in UpgradeInput) (*models.UserResponse, error) {
	if err := check(in); err != nil {
		return nil, fail(ErrInvalid, "Invalid plan type")
	}
	now := s.now()
	plan, expiry := models.PlanProMonthly, now.AddDate(0, 1, 0)
	if in.Plan == "yearly" {
		plan, expiry = models.PlanProYearly, now.AddDate(1, 0, 0)
	}
	return s.update(ctx, userID, map[string]any{
		"plan":               plan,
		"planUpdatedAt":      models.Timestamp(now),
		"subscriptionExpiry": models.Timestamp(expiry),
	})
}

func (s *PlanService) update(ctx context.Context, userID string, fields map[string]any) (*models.UserResponse, error) {
	ok, err := s.stores.Users.Update(ctx, userID, fields)
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
