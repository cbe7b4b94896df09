package memrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/shubham-ralli/form-b/internal/models"
)

func TestDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Users.Create(ctx, &models.User{Email: "Ann@Example.com"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Users.Create(ctx, &models.User{Email: "ann@example.com"})
	if !errors.Is(err, models.ErrDuplicateEmail) {
		t.Fatalf("err = %v", err)
	}
	u, _ := s.Users.FindByEmail(ctx, "ANN@example.com")
	if u == nil || u.Email != "ann@example.com" {
		t.Fatalf("user = %+v", u)
	}
}

func TestSubmissionPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, at := range []string{"2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z", "2024-01-02T00:00:00Z"} {
		s.Submissions.Create(ctx, &models.Submission{FormID: "f", SubmittedAt: at})
	}
	s.Submissions.Create(ctx, &models.Submission{FormID: "other", SubmittedAt: "2024-01-05T00:00:00Z"})

	subs, total, err := s.Submissions.FindByFormIDs(ctx, []string{"f"}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(subs) != 1 || subs[0].SubmittedAt != "2024-01-02T00:00:00Z" {
		t.Fatalf("total %d subs %+v", total, subs)
	}
	n, _ := s.Submissions.CountSince(ctx, []string{"f", "other"}, "2024-01-02T00:00:00Z")
	if n != 3 {
		t.Fatalf("since = %d", n)
	}
}

func TestFormsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Forms.Create(ctx, &models.Form{UserID: "u", UpdatedAt: "2024-01-01T00:00:00Z", IsActive: true})
	b, _ := s.Forms.Create(ctx, &models.Form{UserID: "u", UpdatedAt: "2024-02-01T00:00:00Z"})
	forms, _ := s.Forms.FindByUser(ctx, "u")
	if len(forms) != 2 || forms[0].ID != b || forms[1].ID != a {
		t.Fatalf("forms = %+v", forms)
	}
	active, _ := s.Forms.FindActive(ctx)
	if len(active) != 1 || active[0].ID != a {
		t.Fatalf("active = %+v", active)
	}
}
