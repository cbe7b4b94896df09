package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shubham-ralli/form-b/internal/antibot"
	"github.com/shubham-ralli/form-b/internal/handler"
	"github.com/shubham-ralli/form-b/internal/localstore"
	"github.com/shubham-ralli/form-b/internal/repository/memrepo"
	"github.com/shubham-ralli/form-b/internal/router"
	"github.com/shubham-ralli/form-b/internal/service"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	m := memrepo.New()
	stores := service.Stores{Forms: m.Forms, Submissions: m.Submissions, Users: m.Users}
	authSvc := service.NewAuthService(stores, "cli-test", time.Hour)
	formSvc := service.NewFormService(stores)
	subSvc := service.NewSubmissionService(stores, antibot.New(antibot.NewMemoryCounter()))
	srv := httptest.NewServer(router.New("cli-test", authSvc,
		handler.NewHealthHandler(nil),
		handler.NewAuthHandler(authSvc),
		handler.NewFormHandler(formSvc),
		handler.NewSubmissionHandler(subSvc),
		handler.NewPlanHandler(service.NewPlanService(stores)),
		handler.NewAnalyticsHandler(service.NewAnalyticsService(stores)),
		handler.NewAdminHandler(service.NewAdminService(stores, "")),
		handler.NewEmbedHandler(formSvc, subSvc, ""),
	))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"name":"Ann","email":"ann@example.com","password":"secret1"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %s", resp.Status)
	}
	return srv
}

func run(t *testing.T, apiURL, state string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--api-url", apiURL, "--state", state}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("formcraft %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestSessionCommands(t *testing.T) {
	srv := newAPI(t)
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")
	def := filepath.Join(dir, "form.json")
	if err := os.WriteFile(def, []byte(`{"title":"Feedback","elements":[{"id":"msg","type":"textarea","label":"Message"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if out := run(t, srv.URL, state, "login", "--email", "ann@example.com", "--password", "secret1"); !strings.Contains(out, "Logged in as ann@example.com") {
		t.Fatalf("login: %s", out)
	}
	out := run(t, srv.URL, state, "forms", "create", "-f", def)
	if !strings.Contains(out, "Created form") {
		t.Fatalf("create: %s", out)
	}
	id := strings.Fields(strings.TrimPrefix(out, "Created form "))[0]

	if out := run(t, srv.URL, state, "forms", "list"); !strings.Contains(out, id) || !strings.Contains(out, "Feedback") {
		t.Fatalf("list: %s", out)
	}
	if out := run(t, srv.URL, state, "forms", "toggle", id, "--active=false"); !strings.Contains(out, "now inactive") {
		t.Fatalf("toggle: %s", out)
	}
	if out := run(t, srv.URL, state, "embed", "render", id); !strings.Contains(out, "Form Inactive") {
		t.Fatalf("render inactive: %s", out)
	}
	run(t, srv.URL, state, "forms", "toggle", id)
	out = run(t, srv.URL, state, "embed", "render", id, "--submit", "--fill", "msg=hello")
	if !strings.Contains(out, "submit: accepted") || !strings.Contains(out, "Thank you!") {
		t.Fatalf("render submit: %s", out)
	}
	if out := run(t, srv.URL, state, "forms", "list", "--force"); !strings.Contains(out, "true") {
		t.Fatalf("list after toggle: %s", out)
	}
	if out := run(t, srv.URL, state, "forms", "delete", id); !strings.Contains(out, "Deleted form "+id) {
		t.Fatalf("delete: %s", out)
	}
	run(t, srv.URL, state, "logout")

	ls, err := localstore.Open(state)
	if err != nil {
		t.Fatal(err)
	}
	if keys := ls.Keys(); len(keys) != 0 {
		t.Fatalf("state left after logout: %v", keys)
	}
}

func TestForcedListFetchesOnce(t *testing.T) {
	api := newAPI(t)
	var lists atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/forms" {
			lists.Add(1)
		}
		api.Config.Handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	state := filepath.Join(t.TempDir(), "state.json")

	run(t, srv.URL, state, "login", "--email", "ann@example.com", "--password", "secret1")
	run(t, srv.URL, state, "forms", "list", "--force")
	if n := lists.Load(); n != 1 {
		t.Fatalf("list --force without a snapshot made %d fetches, want 1", n)
	}
	run(t, srv.URL, state, "forms", "list")
	if n := lists.Load(); n != 1 {
		t.Fatalf("list with a fresh snapshot fetched again (%d)", n)
	}
}

func TestFailedDeleteKeepsPosition(t *testing.T) {
	api := newAPI(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		api.Config.Handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")

	run(t, srv.URL, state, "login", "--email", "ann@example.com", "--password", "secret1")
	var ids []string
	for _, title := range []string{"First", "Second"} {
		def := filepath.Join(dir, title+".json")
		if err := os.WriteFile(def, []byte(`{"title":"`+title+`","elements":[]}`), 0o600); err != nil {
			t.Fatal(err)
		}
		out := run(t, srv.URL, state, "forms", "create", "-f", def)
		ids = append(ids, strings.Fields(strings.TrimPrefix(out, "Created form "))[0])
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--api-url", srv.URL, "--state", state, "forms", "delete", ids[0]})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("delete against a failing server succeeded")
	}

	out := run(t, srv.URL, state, "forms", "list")
	second, first := strings.Index(out, "Second"), strings.Index(out, "First")
	if second < 0 || first < 0 || second > first {
		t.Fatalf("rolled back form moved:\n%s", out)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--state", state, "forms", "list"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v", err)
	}
}
