package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shubham-ralli/form-b/internal/db"
	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/oxidb"
)

const UsersCollection = "formcraft_users"

type UserRepo struct {
	pool *db.Pool
}

func NewUserRepo(pool *db.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	return c.CreateUniqueIndex(ctx, UsersCollection, "email")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, map[string]any{"email": strings.ToLower(email)})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, byID(id))
}

func (r *UserRepo) findOne(ctx context.Context, query map[string]any) (*models.User, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, UsersCollection, query)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return docToUser(doc)
}

func (r *UserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, UsersCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": -1},
	})
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		u, err := docToUser(d)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	c := r.pool.Get()
	doc := toDoc(user, "_id")
	doc["email"] = strings.ToLower(user.Email)
	result, err := c.Insert(ctx, UsersCollection, doc)
	var conflict *oxidb.ConflictError
	if errors.As(err, &conflict) {
		return "", fmt.Errorf("%w: %s", models.ErrDuplicateEmail, conflict.Msg)
	}
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *UserRepo) Update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	c := r.pool.Get()
	n, err := affected(c.UpdateOne(ctx, UsersCollection, byID(id), map[string]any{"$set": fields}))
	return n > 0, err
}

func (r *UserRepo) UpdateByEmail(ctx context.Context, email string, fields map[string]any) (bool, error) {
	c := r.pool.Get()
	n, err := affected(c.UpdateOne(ctx, UsersCollection,
		map[string]any{"email": strings.ToLower(email)}, map[string]any{"$set": fields}))
	return n > 0, err
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	c := r.pool.Get()
	n, err := affected(c.DeleteOne(ctx, UsersCollection, byID(id)))
	return n > 0, err
}

func docToUser(doc map[string]any) (*models.User, error) {
	var u models.User
	if err := fromDoc(doc, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
