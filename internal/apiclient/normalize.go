package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shubham-ralli/form-b/internal/models"
)

// NormalizeForms accepts either a bare array of forms or an object wrapping
// one under "forms", and returns the canonical list. Every entry gets a
// string id, timestamps and a title.
func NormalizeForms(raw []byte, now time.Time) ([]models.Form, error) {
	raw = bytes.TrimSpace(raw)
	var items []json.RawMessage
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return []models.Form{}, nil
	case raw[0] == '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode forms: %w", err)
		}
	case raw[0] == '{':
		var wrapped struct {
			Forms []json.RawMessage `json:"forms"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode forms: %w", err)
		}
		items = wrapped.Forms
	default:
		return nil, fmt.Errorf("decode forms: unexpected %q", raw[:1])
	}

	forms := make([]models.Form, 0, len(items))
	for _, item := range items {
		f, err := NormalizeForm(item, now)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// NormalizeForm canonicalises one form record.
func NormalizeForm(raw []byte, now time.Time) (models.Form, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Form{}, fmt.Errorf("decode form: %w", err)
	}
	id := ""
	for _, key := range []string{"_id", "id", "formId"} {
		if id == "" {
			id = idString(doc[key])
		}
		delete(doc, key)
	}
	data, _ := json.Marshal(doc)

	var f models.Form
	if err := json.Unmarshal(data, &f); err != nil {
		return models.Form{}, fmt.Errorf("decode form %s: %w", id, err)
	}
	f.ID = id
	stamp := models.Timestamp(now)
	if f.CreatedAt == "" {
		f.CreatedAt = stamp
	}
	if f.UpdatedAt == "" {
		f.UpdatedAt = f.CreatedAt
	}
	if f.Title == "" {
		f.Title = "Form - " + now.UTC().Format("2006-01-02")
	}
	if f.Elements == nil {
		f.Elements = []models.Element{}
	}
	return f, nil
}

func idString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		// Extended JSON object ids.
		if oid, ok := x["$oid"].(string); ok {
			return oid
		}
	}
	return ""
}
