package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "42", "a@b.c", "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateToken("s3cret", tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "42" || claims.Email != "a@b.c" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := ValidateToken("other", tok); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestNonPositiveTTLUsesDefault(t *testing.T) {
	tok, err := GenerateToken("s3cret", "1", "a@b.c", "user", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateToken("s3cret", tok); err != nil {
		t.Fatalf("default ttl token rejected: %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("hunter23", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenFromRequest(t *testing.T) {
	cases := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"header", func(r *http.Request) { r.Header.Set("x-auth-token", "def") }, "def"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "ghi"}) }, "ghi"},
		{"legacy cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth-token", Value: "jkl"}) }, "jkl"},
		{"none", func(r *http.Request) {}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(r)
			if got := TokenFromRequest(r); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	h := Middleware("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}

	tok, _ := GenerateToken("s3cret", "7", "u@x.y", "user", time.Hour)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK || seen == nil || seen.UserID != "7" {
		t.Fatalf("status %d, claims %+v", w.Code, seen)
	}
}

type roles map[string]string

func (m roles) Role(_ context.Context, id string) (string, error) {
	r, ok := m[id]
	if !ok {
		return "", errors.New("no such user")
	}
	return r, nil
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(roles{"1": "admin", "2": "user"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for id, want := range map[string]int{"1": http.StatusOK, "2": http.StatusForbidden, "3": http.StatusForbidden} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(WithUser(r.Context(), &Claims{UserID: id}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != want {
			t.Fatalf("user %s: status %d, want %d", id, w.Code, want)
		}
	}
}
