package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shubham-ralli/form-b/internal/auth"
	"github.com/shubham-ralli/form-b/internal/models"
)

type AuthService struct {
	stores    Stores
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(stores Stores, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{stores: stores, jwtSecret: jwtSecret, ttl: ttl, now: time.Now}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Profile is the signed-in user plus current usage.
type Profile struct {
	models.UserResponse
	FormsUsed            int         `json:"formsUsed"`
	SubmissionsThisMonth int         `json:"submissionsThisMonth"`
	SubscriptionExpiry   string      `json:"subscriptionExpiry,omitempty"`
	PlanDetails          models.Plan `json:"planDetails"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	existing, err := s.stores.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fail(ErrConflict, "User already exists")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         models.RoleUser,
		IsActive:     true,
		Plan:         models.PlanFree,
		CreatedAt:    models.Timestamp(s.now()),
	}
	id, err := s.stores.Users.Create(ctx, user)
	if errors.Is(err, models.ErrDuplicateEmail) {
		return nil, fail(ErrConflict, "User already exists")
	}
	if err != nil {
		return nil, err
	}
	user.ID = id
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	user, err := s.stores.Users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(in.Password, user.PasswordHash) {
		return nil, fail(ErrInvalid, "Invalid credentials")
	}
	if !user.IsActive {
		return nil, fail(ErrForbidden, "Account is deactivated. Please contact support.")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, user.ToResponse().Role, s.ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}

// TokenTTL is the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	if s.ttl <= 0 {
		return auth.DefaultTTL
	}
	return s.ttl
}

func (s *AuthService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	used, err := s.stores.Submissions.CountSince(ctx, formIDs(forms), monthStart(s.now()))
	if err != nil {
		return nil, err
	}
	plan := effectivePlan(user, s.now())
	resp := user.ToResponse()
	resp.Plan = plan.ID
	return &Profile{
		UserResponse:         resp,
		FormsUsed:            len(forms),
		SubmissionsThisMonth: used,
		SubscriptionExpiry:   user.SubscriptionExpiry,
		PlanDetails:          plan,
	}, nil
}

// ValidateSession confirms the token's user still exists and is active.
func (s *AuthService) ValidateSession(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fail(ErrNotFound, "User not found")
	}
	if !user.IsActive {
		return nil, fail(ErrForbidden, "Account is deactivated")
	}
	return user, nil
}

// Role implements auth.RoleSource.
func (s *AuthService) Role(ctx context.Context, userID string) (string, error) {
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fail(ErrNotFound, "User not found")
	}
	if !user.IsActive {
		return "", fail(ErrForbidden, "Account is deactivated")
	}
	return user.ToResponse().Role, nil
}

// SeedAdmin creates the admin account unless the email is already taken.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	existing, err := s.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
		Plan:         models.PlanFree,
		CreatedAt:    models.Timestamp(s.now()),
	}
	_, err = s.stores.Users.Create(ctx, user)
	return err
}

func formIDs(forms []models.Form) []string {
	ids := make([]string, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
	}
	return ids
}

// monthStart is the first instant of t's calendar month in UTC.
func monthStart(t time.Time) string {
	t = t.UTC()
	return models.Timestamp(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// effectivePlan drops a lapsed subscription back to the free plan.
func effectivePlan(u *models.User, now time.Time) models.Plan {
	plan := models.PlanByID(u.Plan)
	if plan.ID == models.PlanFree || u.SubscriptionExpiry == "" {
		return plan
	}
	expiry, err := time.Parse(time.RFC3339, u.SubscriptionExpiry)
	if err == nil && now.After(expiry) {
		return models.PlanByID(models.PlanFree)
	}
	return plan
}
