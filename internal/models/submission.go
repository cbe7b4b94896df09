package models

// Submission flags raised by the anti-bot heuristics.
const (
	FlagHoneypot    = "honeypot"
	FlagRapidRepeat = "rapid_repeat"
	FlagNoUserAgent = "no_user_agent"
	FlagEmptyData   = "empty_payload"
)

// HoneypotField is rendered hidden in embedded forms; humans leave it empty.
const HoneypotField = "formcraft_hp"

// Submission is one completed response to a form. FormID is a plain id, not
// a reference; it may dangle once the form is gone.
type Submission struct {
	ID          string         `json:"id,omitempty"`
	FormID      string         `json:"formId"`
	Data        map[string]any `json:"data"`
	SubmittedAt string         `json:"submittedAt"`
	IPAddress   string         `json:"ipAddress"`
	UserAgent   string         `json:"userAgent"`
	Flags       []string       `json:"flags,omitempty"`
	UserID      string         `json:"userId,omitempty"`
}
