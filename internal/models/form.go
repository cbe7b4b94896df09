package models

import (
	"encoding/json"
	"time"
)

// SubmissionType controls what happens after a successful submission.
type SubmissionType string

const (
	SubmissionMessage  SubmissionType = "message"
	SubmissionRedirect SubmissionType = "redirect"
)

// DefaultSuccessMessageHTML is shown after a submission when the form has no custom markup.
const DefaultSuccessMessageHTML = "<h3>Thank you for your submission!</h3><p>We have received your response.</p>"

// Form is a user-authored schema of elements plus its submission behaviour.
type Form struct {
	ID                 string         `json:"_id,omitempty"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Elements           []Element      `json:"elements"`
	IsActive           bool           `json:"isActive"`
	SubmissionType     SubmissionType `json:"submissionType,omitempty"`
	RedirectURL        string         `json:"redirectUrl,omitempty"`
	SuccessMessageHTML string         `json:"successMessageHtml,omitempty"`
	ButtonText         string         `json:"buttonText,omitempty"`
	UserID             string         `json:"userId,omitempty"`
	CreatedAt          string         `json:"createdAt"`
	UpdatedAt          string         `json:"updatedAt"`
	SubmissionCount    int            `json:"submissionCount"`
}

// PublicForm is the unauthenticated view of a form used by embeds. It never
// carries owner data.
type PublicForm struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Elements           []Element      `json:"elements"`
	IsActive           bool           `json:"isActive"`
	SubmissionType     SubmissionType `json:"submissionType"`
	RedirectURL        string         `json:"redirectUrl,omitempty"`
	SuccessMessageHTML string         `json:"successMessageHtml,omitempty"`
	ButtonText         string         `json:"buttonText,omitempty"`
}

// Public strips owner fields.
func (f *Form) Public() PublicForm {
	st := f.SubmissionType
	if st == "" {
		st = SubmissionMessage
	}
	elements := f.Elements
	if elements == nil {
		elements = []Element{}
	}
	return PublicForm{
		ID:                 f.ID,
		Title:              f.Title,
		Description:        f.Description,
		Elements:           elements,
		IsActive:           f.IsActive,
		SubmissionType:     st,
		RedirectURL:        f.RedirectURL,
		SuccessMessageHTML: f.SuccessMessageHTML,
		ButtonText:         f.ButtonText,
	}
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	if f.Elements != nil {
		elements := make([]Element, len(f.Elements))
		for i, el := range f.Elements {
			elements[i] = el.Clone()
		}
		f.Elements = elements
	}
	return f
}

// FormPatch holds a partial update for a form. Nil fields are left untouched.
type FormPatch struct {
	Title              *string         `json:"title,omitempty"`
	Description        *string         `json:"description,omitempty"`
	Elements           []Element       `json:"elements,omitempty"`
	IsActive           *bool           `json:"isActive,omitempty"`
	SubmissionType     *SubmissionType `json:"submissionType,omitempty"`
	RedirectURL        *string         `json:"redirectUrl,omitempty"`
	SuccessMessageHTML *string         `json:"successMessageHtml,omitempty"`
	ButtonText         *string         `json:"buttonText,omitempty"`
	UpdatedAt          *string         `json:"updatedAt,omitempty"`
	SubmissionCount    *int            `json:"submissionCount,omitempty"`
}

// Apply merges the set fields of p into f.
func (p FormPatch) Apply(f *Form) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Elements != nil {
		f.Elements = p.Elements
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if p.SubmissionType != nil {
		f.SubmissionType = *p.SubmissionType
	}
	if p.RedirectURL != nil {
		f.RedirectURL = *p.RedirectURL
	}
	if p.SuccessMessageHTML != nil {
		f.SuccessMessageHTML = *p.SuccessMessageHTML
	}
	if p.ButtonText != nil {
		f.ButtonText = *p.ButtonText
	}
	if p.UpdatedAt != nil {
		f.UpdatedAt = *p.UpdatedAt
	}
	if p.SubmissionCount != nil {
		f.SubmissionCount = *p.SubmissionCount
	}
}

// Now returns the timestamp format used for every stored date.
func Now() string {
	return Timestamp(time.Now())
}

// Timestamp formats t the way stored dates are formatted.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Bool and String are small helpers for building patches.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }

// UnmarshalJSON accepts documents whose isActive flag is missing and treats
// them as active, as stored forms created before the flag existed are.
func (f *Form) UnmarshalJSON(data []byte) error {
	type plain Form
	aux := struct {
		*plain
		IsActive *bool `json:"isActive"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}
