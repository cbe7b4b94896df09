package mongorepo

import (
	"context"
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shubham-ralli/form-b/internal/models"
)

func TestToDocDropsKeys(t *testing.T) {
	doc, err := toDoc(&models.Form{ID: "x", Title: "Contact", SubmissionCount: 4}, "_id", "submissionCount")
	if err != nil {
		t.Fatalf("toDoc: %v", err)
	}
	if _, ok := doc["_id"]; ok {
		t.Fatalf("_id kept: %v", doc)
	}
	if _, ok := doc["submissionCount"]; ok {
		t.Fatalf("submissionCount kept: %v", doc)
	}
	if doc["title"] != "Contact" {
		t.Fatalf("title = %v", doc["title"])
	}
}

func TestToDocReportsEncodeErrors(t *testing.T) {
	if _, err := toDoc(map[string]any{"score": math.NaN()}); err == nil {
		t.Fatal("NaN encoded without error")
	}
}

func TestDecodeAllReportsBadDocuments(t *testing.T) {
	ctx := context.Background()
	good := bson.M{"_id": primitive.NewObjectID(), "title": "Contact"}
	bad := bson.M{"_id": primitive.NewObjectID(), "title": bson.A{"not", "a", "string"}}

	cur, err := mongo.NewCursorFromDocuments([]any{good}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	forms, err := decodeAll[models.Form](ctx, cur, "_id")
	if err != nil || len(forms) != 1 || forms[0].Title != "Contact" {
		t.Fatalf("forms = %+v, %v", forms, err)
	}

	cur, err = mongo.NewCursorFromDocuments([]any{good, bad}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if forms, err := decodeAll[models.Form](ctx, cur, "_id"); err == nil {
		t.Fatalf("bad document skipped silently: %+v", forms)
	}
}
