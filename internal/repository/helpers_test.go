package repository

import (
	"testing"

	"github.com/shubham-ralli/form-b/internal/models"
)

func TestDocToSubmissionMovesID(t *testing.T) {
	s, err := docToSubmission(map[string]any{
		"_id":         float64(42),
		"formId":      "7",
		"data":        map[string]any{"name": "Ada"},
		"submittedAt": "2024-05-01T10:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != "42" || s.FormID != "7" {
		t.Fatalf("got id=%q formId=%q", s.ID, s.FormID)
	}
	if s.Data["name"] != "Ada" {
		t.Fatalf("data = %v", s.Data)
	}
}

func TestFormToDocDropsDerivedFields(t *testing.T) {
	doc := formToDoc(&models.Form{ID: "1", Title: "Contact", SubmissionCount: 9})
	if _, ok := doc["_id"]; ok {
		t.Fatal("_id should not be stored")
	}
	if _, ok := doc["submissionCount"]; ok {
		t.Fatal("submissionCount should not be stored")
	}
	if doc["title"] != "Contact" {
		t.Fatalf("title = %v", doc["title"])
	}
}

func TestDocToFormDefaultsActive(t *testing.T) {
	f, err := docToForm(map[string]any{"_id": float64(3), "title": "Legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != "3" || !f.IsActive {
		t.Fatalf("got %+v", f)
	}
}

func TestToNumericID(t *testing.T) {
	if v, ok := toNumericID("12").(float64); !ok || v != 12 {
		t.Fatalf("numeric id = %v", toNumericID("12"))
	}
	if v := toNumericID("abc"); v != "abc" {
		t.Fatalf("string id = %v", v)
	}
}
