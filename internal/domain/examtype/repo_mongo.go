package examtype

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

type examTypeRepoMongo struct {
	coll *mongo.Collection
}

func NewExamTypeRepoMongo(database *mongo.Database) Repository {
	return &examTypeRepoMongo{coll: database.Collection(db.ExamTypesCollection)}
}

func decodeExamType(res *mongo.SingleResult) (*ExamType, error) {
	var e ExamType
	err := res.Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find exam type: %w", err)
	}
	return &e, nil
}

func (r *examTypeRepoMongo) Create(ctx context.Context, e *ExamType) error {
	e.ID = db.NewID()
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert exam type: %w", err)
	}
	return nil
}

func (r *examTypeRepoMongo) GetByID(ctx context.Context, id primitive.ObjectID) (*ExamType, error) {
	return decodeExamType(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *examTypeRepoMongo) List(ctx context.Context, skip, limit int) ([]*ExamType, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list exam types: %w", err)
	}
	out := []*ExamType{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode exam types: %w", err)
	}
	return out, nil
}

func (r *examTypeRepoMongo) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*ExamType, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeExamType(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts))
}

func (r *examTypeRepoMongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete exam type: %w", err)
	}
	if res.DeletedCount == 0 {
		return apierr.ErrNotFound
	}
	return nil
}
