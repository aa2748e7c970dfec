package doctor

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

const doctorsNS = "health_tracker.doctors"

func doctorDoc(id primitive.ObjectID, name, specialty string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: "doc@example.com"},
		{Key: "specialty", Value: specialty},
		{Key: "license_number", Value: "CRM-1234"},
	}
}

func TestDoctorRepoMongo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, doctorsNS, mtest.FirstBatch, doctorDoc(id, "Dr. Silva", "hematology")))

		d, err := NewDoctorRepoMongo(mt.DB).GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.ID != id || d.Name != "Dr. Silva" || d.Specialty != "hematology" {
			t.Errorf("unexpected doctor %+v", d)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, doctorsNS, mtest.FirstBatch))

		_, err := NewDoctorRepoMongo(mt.DB).GetByID(context.Background(), primitive.NewObjectID())
		if !errors.Is(err, apierr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDoctorRepoMongo_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, doctorsNS, mtest.FirstBatch,
			doctorDoc(primitive.NewObjectID(), "Dr. A", "cardiology"),
			doctorDoc(primitive.NewObjectID(), "Dr. B", "nephrology"),
		))

		items, err := NewDoctorRepoMongo(mt.DB).List(context.Background(), 0, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 || items[1].Specialty != "nephrology" {
			t.Errorf("unexpected items %+v", items)
		}
	})
}

func TestDoctorRepoMongo_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doctorDoc(id, "Dr. Silva", "oncology")}))

		d, err := NewDoctorRepoMongo(mt.DB).Update(context.Background(), id, map[string]interface{}{"specialty": "oncology"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Specialty != "oncology" {
			t.Errorf("expected oncology, got %s", d.Specialty)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewDoctorRepoMongo(mt.DB).Update(context.Background(), primitive.NewObjectID(), map[string]interface{}{"specialty": "x"})
		if !errors.Is(err, apierr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
