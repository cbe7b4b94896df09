// Package formscache holds the signed-in user's form list for one session.
// It hydrates from a local snapshot while that is fresh, refreshes from the
// API otherwise, and offers local mutation primitives that callers pair with
// their own API calls. Nothing here returns an error: failures are recorded
// as state and read back through Err and Retained.
package formscache

import (
	"context"
	"sync"
	"time"

	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/models"
)

// Local storage keys.
const (
	KeyForms       = "formcraft_forms"
	KeyTimestamp   = "formcraft_forms_timestamp"
	KeyPreferences = "formcraft_user_preferences"
)

const DefaultFreshness = 5 * time.Minute

// Source fetches the authoritative list.
type Source interface {
	ListForms(ctx context.Context) ([]models.Form, error)
}

// Storage is the persistent snapshot backend.
type Storage interface {
	Get(key string, out any) (bool, error)
	Set(key string, v any) error
	Remove(keys ...string) error
}

type Store struct {
	src       Source
	storage   Storage
	freshness time.Duration
	now       func() time.Time

	mu        sync.Mutex
	forms     []models.Form
	lastFetch time.Time
	loading   bool
	err       error
	retained  bool
	closed    bool
}

type Option func(*Store)

// WithClock replaces time.Now. The clock should carry a monotonic reading.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithFreshness(d time.Duration) Option {
	return func(s *Store) { s.freshness = d }
}

func New(src Source, storage Storage, opts ...Option) *Store {
	s := &Store{
		src:       src,
		storage:   storage,
		freshness: DefaultFreshness,
		now:       time.Now,
		forms:     []models.Form{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load is the initial load: hydrate from a fresh snapshot, otherwise fetch.
// The persisted timestamp is read only here; later staleness checks use the
// in-process fetch time.
func (s *Store) Load(ctx context.Context) {
	if forms, age, ok := s.snapshot(); ok && age >= 0 && age < s.freshness {
		s.mu.Lock()
		if !s.closed {
			s.forms = forms
			s.lastFetch = s.now().Add(-age)
		}
		s.mu.Unlock()
		return
	}
	s.Refresh(ctx, true)
}

// Refresh re-fetches the list. Without force it does nothing while the last
// fetch is within the freshness window. A call made while another is in
// flight returns immediately.
func (s *Store) Refresh(ctx context.Context, force bool) {
	s.mu.Lock()
	if s.closed || s.loading {
		s.mu.Unlock()
		return
	}
	if !force && !s.lastFetch.IsZero() && s.now().Sub(s.lastFetch) < s.freshness {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	forms, err := s.src.ListForms(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return
	}
	if err != nil {
		s.err = err
		if snap, _, ok := s.snapshot(); ok {
			s.forms = snap
			s.retained = true
		} else {
			s.retained = len(s.forms) > 0
		}
		log.Warnf("formscache: refresh failed (retained=%v): %v", s.retained, err)
		return
	}
	if forms == nil {
		forms = []models.Form{}
	}
	s.forms = forms
	s.lastFetch = s.now()
	s.err = nil
	s.retained = false
	s.persist()
}

// Forms returns a copy of the current list.
func (s *Store) Forms() []models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Form, len(s.forms))
	for i, f := range s.forms {
		out[i] = f.Clone()
	}
	return out
}

// Add prepends a form, typically one just returned by a create call.
func (s *Store) Add(form models.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.forms = append([]models.Form{form.Clone()}, s.forms...)
	s.persist()
}

// Restore puts form back at index i, clamped to the list bounds. It undoes a
// Delete without moving the form to the top.
func (s *Store) Restore(i int, form models.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.forms) {
		i = len(s.forms)
	}
	forms := make([]models.Form, 0, len(s.forms)+1)
	forms = append(forms, s.forms[:i]...)
	forms = append(forms, form.Clone())
	forms = append(forms, s.forms[i:]...)
	s.forms = forms
	s.persist()
}

// Update merges the set fields of patch into the form with id. It reports
// whether a form matched.
func (s *Store) Update(id string, patch models.FormPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for i := range s.forms {
		if s.forms[i].ID == id {
			patch.Apply(&s.forms[i])
			s.persist()
			return true
		}
	}
	return false
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for i := range s.forms {
		if s.forms[i].ID == id {
			s.forms = append(s.forms[:i:i], s.forms[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Err is the error of the last failed refresh, cleared by a successful one.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Retained reports whether the last refresh failed but known data was kept.
func (s *Store) Retained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retained
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Preferences returns the stored user preferences, or an empty map.
func (s *Store) Preferences() map[string]any {
	prefs := map[string]any{}
	if _, err := s.storage.Get(KeyPreferences, &prefs); err != nil {
		log.Warnf("formscache: read preferences: %v", err)
		return map[string]any{}
	}
	return prefs
}

func (s *Store) SetPreferences(prefs map[string]any) {
	if err := s.storage.Set(KeyPreferences, prefs); err != nil {
		log.Warnf("formscache: write preferences: %v", err)
	}
}

// Close ends the session: the list, its snapshot and the stored preferences
// are dropped, and every later call is a no-op.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.forms = []models.Form{}
	s.lastFetch = time.Time{}
	if err := s.storage.Remove(KeyForms, KeyTimestamp, KeyPreferences); err != nil {
		log.Warnf("formscache: clear local data: %v", err)
	}
}

// snapshot reads the persisted list and its age.
func (s *Store) snapshot() ([]models.Form, time.Duration, bool) {
	var forms []models.Form
	ok, err := s.storage.Get(KeyForms, &forms)
	if err != nil || !ok {
		return nil, 0, false
	}
	var stamp int64
	if ok, err := s.storage.Get(KeyTimestamp, &stamp); err != nil || !ok {
		return forms, -1, forms != nil
	}
	if forms == nil {
		forms = []models.Form{}
	}
	age := s.now().Sub(time.UnixMilli(stamp))
	return forms, age, true
}

// persist writes the snapshot. Callers hold mu.
func (s *Store) persist() {
	if err := s.storage.Set(KeyForms, s.forms); err != nil {
		log.Warnf("formscache: persist forms: %v", err)
		return
	}
	if err := s.storage.Set(KeyTimestamp, s.now().UnixMilli()); err != nil {
		log.Warnf("formscache: persist timestamp: %v", err)
	}
}
