package examtype

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

const examTypesNS = "health_tracker.exam_types"

func TestExamTypeRepoMongo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes reference values", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, examTypesNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "glucose"},
			{Key: "unit", Value: "mg/dL"},
			{Key: "reference_values", Value: bson.D{
				{Key: "adult", Value: bson.D{{Key: "min", Value: 70.0}, {Key: "max", Value: 99.0}}},
			}},
		}))

		et, err := NewExamTypeRepoMongo(mt.DB).GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r, ok := et.RangeFor("adult")
		if !ok || !r.Contains(85) || r.Contains(120) {
			t.Errorf("unexpected range %+v", r)
		}
		if et.Unit == nil || *et.Unit != "mg/dL" {
			t.Errorf("unexpected unit %v", et.Unit)
		}
	})
}

func TestExamTypeRepoMongo_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := NewExamTypeRepoMongo(mt.DB).Delete(context.Background(), primitive.NewObjectID()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewExamTypeRepoMongo(mt.DB).Delete(context.Background(), primitive.NewObjectID())
		if !errors.Is(err, apierr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestExamTypeRepoMongo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		et := &ExamType{Name: "hdl", ReferenceValues: map[string]ReferenceRange{}}
		if err := NewExamTypeRepoMongo(mt.DB).Create(context.Background(), et); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if et.ID.IsZero() {
			t.Error("expected id to be assigned")
		}
	})
}
