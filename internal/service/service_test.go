package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shubham-ralli/form-b/internal/antibot"
	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/repository/memrepo"
)

type fixture struct {
	stores Stores
	auth   *AuthService
	forms  *FormService
	subs   *SubmissionService
	plans  *PlanService
	stats  *AnalyticsService
	admin  *AdminService
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := memrepo.New()
	stores := Stores{Forms: m.Forms, Submissions: m.Submissions, Users: m.Users}
	f := &fixture{
		stores: stores,
		auth:   NewAuthService(stores, "test-secret", time.Hour),
		forms:  NewFormService(stores),
		subs:   NewSubmissionService(stores, antibot.New(antibot.NewMemoryCounter())),
		plans:  NewPlanService(stores),
		stats:  NewAnalyticsService(stores),
		admin:  NewAdminService(stores, "sesame"),
		now:    time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.auth.now, f.forms.now, f.subs.now, f.plans.now, f.stats.now = clock, clock, clock, clock, clock
	return f
}

func (f *fixture) register(t *testing.T, email string) Caller {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: "User", Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return Caller{UserID: res.User.ID, Role: res.User.Role}
}

func (f *fixture) form(t *testing.T, c Caller, title string) *models.Form {
	t.Helper()
	form, err := f.forms.Create(context.Background(), c, FormInput{
		Title:    title,
		Elements: []models.Element{{Type: models.ElementText, Label: "Name", Required: true}},
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return form
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("got %v, want %v", err, kind)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Register(ctx, RegisterInput{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.User.Email != "ada@example.com" || res.Token == "" || res.User.Plan != models.PlanFree {
		t.Fatalf("register result %+v", res)
	}

	_, err = f.auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	wantKind(t, err, ErrConflict)

	_, err = f.auth.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "12345"})
	wantKind(t, err, ErrInvalid)
	if err.Error() != "Password must be at least 6 characters" {
		t.Fatalf("message = %q", err.Error())
	}

	if _, err := f.auth.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong!!"})
	wantKind(t, err, ErrInvalid)

	f.stores.Users.Update(ctx, res.User.ID, map[string]any{"isActive": false})
	_, err = f.auth.Login(ctx, LoginInput{Email: "ada@example.com", Password: "secret1"})
	wantKind(t, err, ErrForbidden)
}

func TestFreeFormLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	for i := 0; i < 3; i++ {
		f.form(t, u, "Form")
	}
	_, err := f.forms.Create(ctx, u, FormInput{Title: "Fourth"})
	wantKind(t, err, ErrQuota)

	if err := f.auth.SeedAdmin(ctx, "root@example.com", "rootpw"); err != nil {
		t.Fatal(err)
	}
	admin, _ := f.stores.Users.FindByEmail(ctx, "root@example.com")
	ac := Caller{UserID: admin.ID, Role: models.RoleAdmin}
	for i := 0; i < 4; i++ {
		f.form(t, ac, "Admin form")
	}

	f.plans.Upgrade(ctx, u.UserID, UpgradeInput{Plan: "monthly"})
	if _, err := f.forms.Create(ctx, u, FormInput{Title: "Pro form"}); err != nil {
		t.Fatalf("pro user blocked: %v", err)
	}
}

func TestCreateAssignsElementIDs(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "u@example.com")
	form := f.form(t, u, "Contact")
	if form.Elements[0].ID == "" || form.Elements[0].Width != models.WidthFull {
		t.Fatalf("element = %+v", form.Elements[0])
	}
	if !form.IsActive || form.SubmissionType != models.SubmissionMessage {
		t.Fatalf("form defaults = %+v", form)
	}

	_, err := f.forms.Create(context.Background(), u, FormInput{
		Title:    "Bad",
		Elements: []models.Element{{Type: "hologram"}},
	})
	wantKind(t, err, ErrInvalid)

	_, err = f.forms.Create(context.Background(), u, FormInput{Title: "Redirect", SubmissionType: models.SubmissionRedirect})
	wantKind(t, err, ErrInvalid)
}

func TestOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	other := f.register(t, "other@example.com")
	form := f.form(t, owner, "Mine")

	_, err := f.forms.SetStatus(ctx, other, form.ID, false)
	wantKind(t, err, ErrForbidden)
	_, err = f.forms.Update(ctx, other, form.ID, FormInput{Title: "Stolen"})
	wantKind(t, err, ErrForbidden)

	updated, err := f.forms.SetStatus(ctx, Caller{UserID: other.UserID, Role: models.RoleAdmin}, form.ID, false)
	if err != nil || updated.IsActive {
		t.Fatalf("admin toggle: %+v %v", updated, err)
	}
	_, err = f.forms.SetStatus(ctx, owner, "missing", true)
	wantKind(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	form := f.form(t, u, "Doomed")
	keep := f.form(t, u, "Kept")
	for _, id := range []string{form.ID, form.ID, keep.ID} {
		if _, err := f.subs.Submit(ctx, SubmitInput{FormID: id, Data: map[string]any{form.Elements[0].ID: "x", keep.Elements[0].ID: "x"}}, Origin{UserAgent: "UA"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.forms.Delete(ctx, u, form.ID); err != nil {
		t.Fatal(err)
	}
	counts, _ := f.stores.Submissions.CountByFormIDs(ctx, []string{form.ID, keep.ID})
	if counts[form.ID] != 0 || counts[keep.ID] != 1 {
		t.Fatalf("counts after delete = %v", counts)
	}
	list, _ := f.forms.List(ctx, u.UserID)
	if len(list) != 1 || list[0].SubmissionCount != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestSubmitRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	form := f.form(t, u, "Survey")
	field := form.Elements[0].ID

	_, err := f.subs.Submit(ctx, SubmitInput{FormID: "nope", Data: map[string]any{}}, Origin{})
	wantKind(t, err, ErrNotFound)

	_, err = f.subs.Submit(ctx, SubmitInput{FormID: form.ID, Data: map[string]any{field: "  "}}, Origin{UserAgent: "UA"})
	wantKind(t, err, ErrInvalid)

	sub, err := f.subs.Submit(ctx, SubmitInput{FormID: form.ID, Data: map[string]any{
		field:                 "Ada",
		antibot.HoneypotField: "",
	}}, Origin{IP: "10.0.0.1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sub.Data[antibot.HoneypotField]; ok {
		t.Fatal("honeypot stored")
	}
	if len(sub.Flags) != 1 || sub.Flags[0] != models.FlagNoUserAgent {
		t.Fatalf("flags = %v", sub.Flags)
	}
	if sub.UserID != u.UserID || sub.SubmittedAt != "2024-05-15T12:00:00Z" {
		t.Fatalf("submission = %+v", sub)
	}

	f.forms.SetStatus(ctx, u, form.ID, false)
	_, err = f.subs.Submit(ctx, SubmitInput{FormID: form.ID, Data: map[string]any{field: "Ada"}}, Origin{})
	wantKind(t, err, ErrForbidden)
}

func TestMonthlySubmissionCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	a := f.form(t, u, "A")
	b := f.form(t, u, "B")
	data := func(form *models.Form) map[string]any { return map[string]any{form.Elements[0].ID: "x"} }

	f.now = time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if _, err := f.subs.Submit(ctx, SubmitInput{FormID: a.ID, Data: data(a)}, Origin{UserAgent: "UA"}); err != nil {
			t.Fatalf("april submission %d: %v", i, err)
		}
	}

	f.now = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		form := a
		if i%2 == 1 {
			form = b
		}
		if _, err := f.subs.Submit(ctx, SubmitInput{FormID: form.ID, Data: data(form)}, Origin{UserAgent: "UA"}); err != nil {
			t.Fatalf("may submission %d: %v", i, err)
		}
	}
	_, err := f.subs.Submit(ctx, SubmitInput{FormID: b.ID, Data: data(b)}, Origin{UserAgent: "UA"})
	wantKind(t, err, ErrQuota)

	me, err := f.auth.Me(ctx, u.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if me.FormsUsed != 2 || me.SubmissionsThisMonth != 10 {
		t.Fatalf("me = %+v", me)
	}

	all, total, err := f.subs.ListForUser(ctx, u.UserID, 0, 5)
	if err != nil || total != 20 || len(all) != 5 {
		t.Fatalf("list: %d of %d, %v", len(all), total, err)
	}
	if all[0].SubmittedAt < all[4].SubmittedAt {
		t.Fatal("submissions not newest first")
	}
}

func TestUpgradeExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")

	resp, err := f.plans.Upgrade(ctx, u.UserID, UpgradeInput{Plan: "yearly"})
	if err != nil || resp.Plan != models.PlanProYearly {
		t.Fatalf("upgrade: %+v %v", resp, err)
	}
	user, _ := f.stores.Users.FindByID(ctx, u.UserID)
	if user.SubscriptionExpiry != "2025-05-15T12:00:00Z" {
		t.Fatalf("expiry = %q", user.SubscriptionExpiry)
	}

	f.now = f.now.AddDate(1, 0, 1)
	me, _ := f.auth.Me(ctx, u.UserID)
	if me.Plan != models.PlanFree {
		t.Fatalf("lapsed plan = %q", me.Plan)
	}

	_, err = f.plans.Upgrade(ctx, u.UserID, UpgradeInput{Plan: "weekly"})
	wantKind(t, err, ErrInvalid)
	_, err = f.plans.SetPlan(ctx, u.UserID, SetPlanInput{PlanID: "enterprise"})
	wantKind(t, err, ErrInvalid)
}

func TestPublicForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	form := f.form(t, u, "Open")
	closed := f.form(t, u, "Closed")
	f.forms.SetStatus(ctx, u, closed.ID, false)

	pub, err := f.forms.Public(ctx, closed.ID)
	if err != nil || pub.IsActive {
		t.Fatalf("inactive form should still be readable: %+v %v", pub, err)
	}
	list, err := f.forms.PublicList(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != form.ID || list[0].CreatorName != "User" {
		t.Fatalf("public list = %+v", list)
	}
	_, err = f.forms.Public(ctx, "missing")
	wantKind(t, err, ErrNotFound)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")
	a := f.form(t, u, "A")
	b := f.form(t, u, "B")
	f.forms.SetStatus(ctx, u, b.ID, false)
	f.subs.Submit(ctx, SubmitInput{FormID: a.ID, Data: map[string]any{a.Elements[0].ID: "x"}}, Origin{UserAgent: "UA"})

	got, err := f.stats.ForUser(ctx, u.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalForms != 2 || got.ActiveForms != 1 || got.TotalSubmissions != 1 || got.ThisMonth != 1 {
		t.Fatalf("analytics = %+v", got)
	}
}

func TestAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin@example.com")
	admin.Role = models.RoleAdmin
	u := f.register(t, "u@example.com")
	form := f.form(t, u, "Form")
	f.subs.Submit(ctx, SubmitInput{FormID: form.ID, Data: map[string]any{form.Elements[0].ID: "x"}}, Origin{UserAgent: "UA"})

	users, err := f.admin.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("users: %+v %v", users, err)
	}
	for _, st := range users {
		if st.ID == u.UserID && (st.TotalForms != 1 || st.TotalSubmissions != 1) {
			t.Fatalf("stats = %+v", st)
		}
	}

	_, err = f.admin.SetUserActive(ctx, admin, admin.UserID, false)
	wantKind(t, err, ErrInvalid)
	resp, err := f.admin.SetUserActive(ctx, admin, u.UserID, false)
	if err != nil || resp.IsActive {
		t.Fatalf("deactivate: %+v %v", resp, err)
	}

	if err := f.admin.DeleteUser(ctx, admin, u.UserID); err != nil {
		t.Fatal(err)
	}
	if left, _ := f.stores.Users.FindByID(ctx, u.UserID); left != nil {
		t.Fatal("user not deleted")
	}
	if left, _ := f.stores.Forms.FindByID(ctx, form.ID); left != nil {
		t.Fatal("form not deleted")
	}
	counts, _ := f.stores.Submissions.CountByFormIDs(ctx, []string{form.ID})
	if counts[form.ID] != 0 {
		t.Fatal("submissions not deleted")
	}
	wantKind(t, f.admin.DeleteUser(ctx, admin, u.UserID), ErrNotFound)
}

func TestSetAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "u@example.com")

	wantKind(t, f.admin.SetAdmin(ctx, SetAdminInput{Email: "u@example.com", AdminKey: "wrong"}), ErrForbidden)
	wantKind(t, f.admin.SetAdmin(ctx, SetAdminInput{Email: "nobody@example.com", AdminKey: "sesame"}), ErrNotFound)
	if err := f.admin.SetAdmin(ctx, SetAdminInput{Email: "U@example.com", AdminKey: "sesame"}); err != nil {
		t.Fatal(err)
	}
	if role, _ := f.auth.Role(ctx, u.UserID); role != models.RoleAdmin {
		t.Fatalf("role = %q", role)
	}

	disabled := NewAdminService(f.stores, "")
	wantKind(t, disabled.SetAdmin(ctx, SetAdminInput{Email: "u@example.com", AdminKey: "x"}), ErrForbidden)
}
