// Package mongorepo stores forms, submissions and users in MongoDB.
package mongorepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/service"
)

const (
	FormsCollection       = "forms"
	SubmissionsCollection = "submissions"
	UsersCollection       = "users"
)

// Open connects to uri and returns stores on database name. The returned
// close func disconnects the client.
func Open(ctx context.Context, uri, name string) (service.Stores, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return service.Stores{}, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return service.Stores{}, nil, fmt.Errorf("mongo: ping: %w", err)
	}
	db := client.Database(name)
	stores := service.Stores{
		Forms:       &FormRepo{coll: db.Collection(FormsCollection)},
		Submissions: &SubmissionRepo{coll: db.Collection(SubmissionsCollection)},
		Users:       &UserRepo{coll: db.Collection(UsersCollection)},
	}
	return stores, client.Disconnect, nil
}

// EnsureIndexes creates the lookup indexes every store relies on.
func EnsureIndexes(ctx context.Context, s service.Stores) error {
	type indexed interface {
		indexes() []mongo.IndexModel
		collection() *mongo.Collection
	}
	for _, st := range []any{s.Forms, s.Submissions, s.Users} {
		ix, ok := st.(indexed)
		if !ok {
			continue
		}
		if _, err := ix.collection().Indexes().CreateMany(ctx, ix.indexes()); err != nil {
			return fmt.Errorf("mongo: indexes on %s: %w", ix.collection().Name(), err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids never match anything.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// toDoc round-trips v through JSON so stored keys match the REST field
// names, then drops the given keys.
func toDoc(v any, drop ...string) (bson.M, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mongo: encode %T: %w", v, err)
	}
	var doc bson.M
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mongo: encode %T: %w", v, err)
	}
	for _, k := range drop {
		delete(doc, k)
	}
	return doc, nil
}

// fromDoc decodes a raw document into out, renaming _id to idKey.
func fromDoc(doc bson.M, idKey string, out any) error {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		delete(doc, "_id")
		doc[idKey] = oid.Hex()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, idKey string) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		var v T
		if err := fromDoc(doc, idKey, &v); err != nil {
			return nil, fmt.Errorf("mongo: decode %v: %w", doc[idKey], err)
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

type FormRepo struct{ coll *mongo.Collection }

func (r *FormRepo) collection() *mongo.Collection { return r.coll }

func (r *FormRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}}}
}

func (r *FormRepo) Create(ctx context.Context, form *models.Form) (string, error) {
	doc, err := toDoc(form, "_id", "submissionCount")
	if err != nil {
		return "", err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f models.Form
	if err := fromDoc(doc, "_id", &f); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}
	return &f, nil
}

func (r *FormRepo) FindByUser(ctx context.Context, userID string) ([]models.Form, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *FormRepo) FindActive(ctx context.Context) ([]models.Form, error) {
	return r.find(ctx, bson.M{"isActive": bson.M{"$ne": false}})
}

func (r *FormRepo) find(ctx context.Context, filter bson.M) ([]models.Form, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Form](ctx, cur, "_id")
}

func (r *FormRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID})
	return int(n), err
}

func (r *FormRepo) Update(ctx context.Context, id string, form *models.Form) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	doc, err := toDoc(form, "_id", "submissionCount")
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": doc})
	return err
}

func (r *FormRepo) SetActive(ctx context.Context, id string, active bool, updatedAt string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": updatedAt}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *FormRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *FormRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type SubmissionRepo struct{ coll *mongo.Collection }

func (r *SubmissionRepo) collection() *mongo.Collection { return r.coll }

func (r *SubmissionRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{{Keys: bson.D{{Key: "formId", Value: 1}, {Key: "submittedAt", Value: -1}}}}
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	doc, err := toDoc(sub, "id")
	if err != nil {
		return "", err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (r *SubmissionRepo) FindByFormIDs(ctx context.Context, formIDs []string, skip, limit int) ([]models.Submission, int, error) {
	if len(formIDs) == 0 {
		return []models.Submission{}, 0, nil
	}
	filter := bson.M{"formId": bson.M{"$in": formIDs}}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	subs, err := decodeAll[models.Submission](ctx, cur, "id")
	return subs, int(total), err
}

func (r *SubmissionRepo) CountByFormIDs(ctx context.Context, formIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(formIDs))
	for _, id := range formIDs {
		counts[id] = 0
	}
	if len(formIDs) == 0 {
		return counts, nil
	}
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"formId": bson.M{"$in": formIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$formId", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.N
	}
	return counts, cur.Err()
}

func (r *SubmissionRepo) CountSince(ctx context.Context, formIDs []string, since string) (int, error) {
	if len(formIDs) == 0 {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"formId":      bson.M{"$in": formIDs},
		"submittedAt": bson.M{"$gte": since},
	})
	return int(n), err
}

func (r *SubmissionRepo) DeleteByFormID(ctx context.Context, formID string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"formId": formID})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type UserRepo struct{ coll *mongo.Collection }

func (r *UserRepo) collection() *mongo.Collection { return r.coll }

func (r *UserRepo) indexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	doc, err := toDoc(user, "_id")
	if err != nil {
		return "", err
	}
	doc["email"] = strings.ToLower(user.Email)
	res, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("%w: %v", models.ErrDuplicateEmail, err)
	}
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := fromDoc(doc, "_id", &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cur, "_id")
}

func (r *UserRepo) Update(ctx context.Context, id string, fields map[string]any) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	return r.update(ctx, bson.M{"_id": oid}, fields)
}

func (r *UserRepo) UpdateByEmail(ctx context.Context, email string, fields map[string]any) (bool, error) {
	return r.update(ctx, bson.M{"email": strings.ToLower(email)}, fields)
}

func (r *UserRepo) update(ctx context.Context, filter bson.M, fields map[string]any) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
