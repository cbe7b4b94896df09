package repository

import (
	"context"
	"fmt"

	"github.com/shubham-ralli/form-b/internal/db"
	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/oxidb"
)

const FormsCollection = "formcraft_forms"

type FormRepo struct {
	pool *db.Pool
}

func NewFormRepo(pool *db.Pool) *FormRepo {
	return &FormRepo{pool: pool}
}

func (r *FormRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, FormsCollection, "userId"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, FormsCollection, []string{"userId", "updatedAt"})
}

func (r *FormRepo) Create(ctx context.Context, form *models.Form) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, FormsCollection, formToDoc(form))
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, FormsCollection, byID(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return docToForm(doc)
}

func (r *FormRepo) FindByUser(ctx context.Context, userID string) ([]models.Form, error) {
	return r.find(ctx, map[string]any{"userId": userID})
}

// FindActive treats a missing isActive as active, so it filters on "not false".
func (r *FormRepo) FindActive(ctx context.Context) ([]models.Form, error) {
	return r.find(ctx, map[string]any{"isActive": map[string]any{"$ne": false}})
}

func (r *FormRepo) find(ctx context.Context, query map[string]any) ([]models.Form, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, FormsCollection, query, &oxidb.FindOptions{
		Sort: map[string]any{"updatedAt": -1},
	})
	if err != nil {
		return nil, err
	}
	forms := make([]models.Form, 0, len(docs))
	for _, d := range docs {
		f, err := docToForm(d)
		if err != nil {
			continue
		}
		forms = append(forms, *f)
	}
	return forms, nil
}

func (r *FormRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	c := r.pool.Get()
	return c.Count(ctx, FormsCollection, map[string]any{"userId": userID})
}

func (r *FormRepo) Update(ctx context.Context, id string, form *models.Form) error {
	c := r.pool.Get()
	_, err := c.UpdateOne(ctx, FormsCollection, byID(id), map[string]any{"$set": formToDoc(form)})
	return err
}

func (r *FormRepo) SetActive(ctx context.Context, id string, active bool, updatedAt string) (bool, error) {
	c := r.pool.Get()
	n, err := affected(c.UpdateOne(ctx, FormsCollection, byID(id), map[string]any{
		"$set": map[string]any{"isActive": active, "updatedAt": updatedAt},
	}))
	return n > 0, err
}

func (r *FormRepo) Delete(ctx context.Context, id string) (bool, error) {
	c := r.pool.Get()
	n, err := affected(c.DeleteOne(ctx, FormsCollection, byID(id)))
	return n > 0, err
}

func (r *FormRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	c := r.pool.Get()
	return affected(c.Delete(ctx, FormsCollection, map[string]any{"userId": userID}))
}

// submissionCount is derived on read and never stored.
func formToDoc(f *models.Form) map[string]any {
	return toDoc(f, "_id", "submissionCount")
}

func docToForm(doc map[string]any) (*models.Form, error) {
	var f models.Form
	if err := fromDoc(doc, &f); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}
	return &f, nil
}
