// Package memrepo keeps forms, submissions and users in process memory. It
// backs the "memory" store driver and the service and handler tests.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shubham-ralli/form-b/internal/models"
)

type db struct {
	mu          sync.RWMutex
	seq         int
	forms       map[string]models.Form
	submissions map[string]models.Submission
	users       map[string]models.User
}

func (d *db) nextID() string {
	d.seq++
	return fmt.Sprintf("%d", d.seq)
}

// Stores is one in-memory database.
type Stores struct {
	Forms       *FormRepo
	Submissions *SubmissionRepo
	Users       *UserRepo
}

// New returns an empty set of stores sharing one id sequence.
func New() *Stores {
	d := &db{
		forms:       map[string]models.Form{},
		submissions: map[string]models.Submission{},
		users:       map[string]models.User{},
	}
	return &Stores{
		Forms:       &FormRepo{d},
		Submissions: &SubmissionRepo{d},
		Users:       &UserRepo{d},
	}
}

type FormRepo struct{ db *db }

func (r *FormRepo) Create(_ context.Context, form *models.Form) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f := form.Clone()
	f.ID = r.db.nextID()
	f.SubmissionCount = 0
	r.db.forms[f.ID] = f
	return f.ID, nil
}

func (r *FormRepo) FindByID(_ context.Context, id string) (*models.Form, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	f, ok := r.db.forms[id]
	if !ok {
		return nil, nil
	}
	f = f.Clone()
	return &f, nil
}

func (r *FormRepo) FindByUser(_ context.Context, userID string) ([]models.Form, error) {
	return r.filter(func(f models.Form) bool { return f.UserID == userID }), nil
}

func (r *FormRepo) FindActive(_ context.Context) ([]models.Form, error) {
	return r.filter(func(f models.Form) bool { return f.IsActive }), nil
}

func (r *FormRepo) filter(keep func(models.Form) bool) []models.Form {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Form{}
	for _, f := range r.db.forms {
		if keep(f) {
			out = append(out, f.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return idLess(out[j].ID, out[i].ID)
	})
	return out
}

func (r *FormRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	forms, _ := r.FindByUser(ctx, userID)
	return len(forms), nil
}

func (r *FormRepo) Update(_ context.Context, id string, form *models.Form) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.forms[id]; !ok {
		return nil
	}
	f := form.Clone()
	f.ID = id
	f.SubmissionCount = 0
	r.db.forms[id] = f
	return nil
}

func (r *FormRepo) SetActive(_ context.Context, id string, active bool, updatedAt string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.forms[id]
	if !ok {
		return false, nil
	}
	f.IsActive = active
	f.UpdatedAt = updatedAt
	r.db.forms[id] = f
	return true, nil
}

func (r *FormRepo) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.forms[id]
	delete(r.db.forms, id)
	return ok, nil
}

func (r *FormRepo) DeleteByUser(_ context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, f := range r.db.forms {
		if f.UserID == userID {
			delete(r.db.forms, id)
			n++
		}
	}
	return n, nil
}

type SubmissionRepo struct{ db *db }

func (r *SubmissionRepo) Create(_ context.Context, sub *models.Submission) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s := *sub
	s.ID = r.db.nextID()
	r.db.submissions[s.ID] = s
	return s.ID, nil
}

func (r *SubmissionRepo) FindByFormIDs(_ context.Context, formIDs []string, skip, limit int) ([]models.Submission, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	want := set(formIDs)
	all := []models.Submission{}
	for _, s := range r.db.submissions {
		if want[s.FormID] {
			all = append(all, s)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SubmittedAt != all[j].SubmittedAt {
			return all[i].SubmittedAt > all[j].SubmittedAt
		}
		return idLess(all[j].ID, all[i].ID)
	})
	total := len(all)
	if skip > total {
		skip = total
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *SubmissionRepo) CountByFormIDs(_ context.Context, formIDs []string) (map[string]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	counts := make(map[string]int, len(formIDs))
	for _, id := range formIDs {
		counts[id] = 0
	}
	for _, s := range r.db.submissions {
		if _, ok := counts[s.FormID]; ok {
			counts[s.FormID]++
		}
	}
	return counts, nil
}

func (r *SubmissionRepo) CountSince(_ context.Context, formIDs []string, since string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	want := set(formIDs)
	n := 0
	for _, s := range r.db.submissions {
		if want[s.FormID] && s.SubmittedAt >= since {
			n++
		}
	}
	return n, nil
}

func (r *SubmissionRepo) DeleteByFormID(_ context.Context, formID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, s := range r.db.submissions {
		if s.FormID == formID {
			delete(r.db.submissions, id)
			n++
		}
	}
	return n, nil
}

type UserRepo struct{ db *db }

func (r *UserRepo) Create(_ context.Context, user *models.User) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := *user
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return "", fmt.Errorf("%w: %s", models.ErrDuplicateEmail, u.Email)
		}
	}
	u.ID = r.db.nextID()
	r.db.users[u.ID] = u
	return u.ID, nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindAll(_ context.Context) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return idLess(out[j].ID, out[i].ID)
	})
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, id string, fields map[string]any) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return false, nil
	}
	applyUserFields(&u, fields)
	r.db.users[id] = u
	return true, nil
}

func (r *UserRepo) UpdateByEmail(_ context.Context, email string, fields map[string]any) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email = strings.ToLower(email)
	for id, u := range r.db.users {
		if u.Email == email {
			applyUserFields(&u, fields)
			r.db.users[id] = u
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.users[id]
	delete(r.db.users, id)
	return ok, nil
}

// applyUserFields mirrors a "$set" of the stored user document keys.
func applyUserFields(u *models.User, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "isActive":
			u.IsActive, _ = v.(bool)
		case "role":
			u.Role, _ = v.(string)
		case "plan":
			u.Plan, _ = v.(string)
		case "planUpdatedAt":
			u.PlanUpdatedAt, _ = v.(string)
		case "subscriptionExpiry":
			u.SubscriptionExpiry, _ = v.(string)
		case "name":
			u.Name, _ = v.(string)
		case "passwordHash":
			u.PasswordHash, _ = v.(string)
		}
	}
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// idLess orders the numeric ids this package hands out.
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
