package repository

import (
	"context"
	"fmt"

	"github.com/shubham-ralli/form-b/internal/db"
	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/oxidb"
)

const SubmissionsCollection = "formcraft_submissions"

type SubmissionRepo struct {
	pool *db.Pool
}

func NewSubmissionRepo(pool *db.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, SubmissionsCollection, "formId"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, SubmissionsCollection, []string{"formId", "submittedAt"})
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, SubmissionsCollection, toDoc(sub, "id"))
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *SubmissionRepo) FindByFormIDs(ctx context.Context, formIDs []string, skip, limit int) ([]models.Submission, int, error) {
	if len(formIDs) == 0 {
		return []models.Submission{}, 0, nil
	}
	c := r.pool.Get()
	query := inForms(formIDs)

	total, err := c.Count(ctx, SubmissionsCollection, query)
	if err != nil {
		return nil, 0, err
	}

	opts := &oxidb.FindOptions{Sort: map[string]any{"submittedAt": -1}, Skip: &skip}
	if limit > 0 {
		opts.Limit = &limit
	}
	docs, err := c.Find(ctx, SubmissionsCollection, query, opts)
	if err != nil {
		return nil, 0, err
	}

	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		s, err := docToSubmission(d)
		if err != nil {
			continue
		}
		subs = append(subs, *s)
	}
	return subs, total, nil
}

func (r *SubmissionRepo) CountByFormIDs(ctx context.Context, formIDs []string) (map[string]int, error) {
	c := r.pool.Get()
	counts := make(map[string]int, len(formIDs))
	for _, id := range formIDs {
		n, err := c.Count(ctx, SubmissionsCollection, map[string]any{"formId": id})
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, nil
}

func (r *SubmissionRepo) CountSince(ctx context.Context, formIDs []string, since string) (int, error) {
	if len(formIDs) == 0 {
		return 0, nil
	}
	c := r.pool.Get()
	query := inForms(formIDs)
	query["submittedAt"] = map[string]any{"$gte": since}
	return c.Count(ctx, SubmissionsCollection, query)
}

func (r *SubmissionRepo) DeleteByFormID(ctx context.Context, formID string) (int, error) {
	c := r.pool.Get()
	return affected(c.Delete(ctx, SubmissionsCollection, map[string]any{"formId": formID}))
}

func inForms(formIDs []string) map[string]any {
	return map[string]any{"formId": map[string]any{"$in": anySlice(formIDs)}}
}

// Submissions expose their id as "id" rather than "_id".
func docToSubmission(doc map[string]any) (*models.Submission, error) {
	normalizeID(doc)
	if id, ok := doc["_id"]; ok {
		doc["id"] = id
		delete(doc, "_id")
	}
	var s models.Submission
	if err := fromDoc(doc, &s); err != nil {
		return nil, fmt.Errorf("unmarshal submission: %w", err)
	}
	return &s, nil
}
