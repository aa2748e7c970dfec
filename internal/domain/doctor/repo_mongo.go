package doctor

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type doctorRepoMongo struct {
	coll *mongo.Collection
}

func NewDoctorRepoMongo(database *mongo.Database) Repository {
	return &doctorRepoMongo{coll: database.Collection(db.DoctorsCollection)}
}

func (r *doctorRepoMongo) Create(ctx context.Context, d *Doctor) error {
	d.ID = db.NewID()
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepoMongo) GetByID(ctx context.Context, id primitive.ObjectID) (*Doctor, error) {
	return decodeDoctor(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func decodeDoctor(res *mongo.SingleResult) (*Doctor, error) {
	var d Doctor
	err := res.Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return &d, nil
}

func (r *doctorRepoMongo) List(ctx context.Context, skip, limit int) ([]*Doctor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	out := []*Doctor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	return out, nil
}

func (r *doctorRepoMongo) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Doctor, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeDoctor(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts))
}

func (r *doctorRepoMongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if res.DeletedCount == 0 {
		return apierr.ErrNotFound
	}
	return nil
}
