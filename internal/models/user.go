package models

import (
	"encoding/json"
	"errors"
)

// ErrDuplicateEmail is returned by user stores when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                 string `json:"_id,omitempty"`
	Email              string `json:"email"`
	PasswordHash       string `json:"passwordHash,omitempty"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	IsActive           bool   `json:"isActive"`
	Plan               string `json:"plan"`
	PlanUpdatedAt      string `json:"planUpdatedAt,omitempty"`
	SubscriptionExpiry string `json:"subscriptionExpiry,omitempty"`
	CreatedAt          string `json:"createdAt"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Plan      string `json:"plan"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	plan := u.Plan
	if plan == "" {
		plan = PlanFree
	}
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      role,
		Plan:      plan,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UnmarshalJSON treats a missing isActive flag as active.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		IsActive *bool `json:"isActive"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}
