package bloodtest

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

type bloodTestRepoMongo struct {
	coll *mongo.Collection
}

func NewBloodTestRepoMongo(database *mongo.Database) Repository {
	return &bloodTestRepoMongo{coll: database.Collection(db.BloodTestsCollection)}
}

var newestFirst = bson.D{{Key: "test_date", Value: -1}, {Key: "_id", Value: -1}}

// patientFilter matches a patient's tests and, when testType is set, the
// tests labelled with it or listing it as an exam type id.
func patientFilter(patientID primitive.ObjectID, testType string) bson.M {
	filter := bson.M{"patient_id": patientID}
	if testType == "" {
		return filter
	}
	or := bson.A{bson.M{"test_type": testType}}
	if oid, err := primitive.ObjectIDFromHex(testType); err == nil {
		or = append(or, bson.M{"exam_types": oid})
	}
	filter["$or"] = or
	return filter
}

// metricFilter matches an unwound result addressed by name or by id.
func metricFilter(metric string) bson.M {
	or := bson.A{bson.M{"results.exam_type_name": metric}}
	if oid, err := primitive.ObjectIDFromHex(metric); err == nil {
		or = append(or, bson.M{"results.exam_type_id": oid})
	}
	return bson.M{"$or": or}
}

func decodeBloodTest(res *mongo.SingleResult) (*BloodTest, error) {
	var bt BloodTest
	err := res.Decode(&bt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find blood test: %w", err)
	}
	return &bt, nil
}

func (r *bloodTestRepoMongo) Create(ctx context.Context, bt *BloodTest) error {
	bt.ID = db.NewID()
	if _, err := r.coll.InsertOne(ctx, bt); err != nil {
		return fmt.Errorf("insert blood test: %w", err)
	}
	return nil
}

func (r *bloodTestRepoMongo) GetByID(ctx context.Context, id primitive.ObjectID) (*BloodTest, error) {
	return decodeBloodTest(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *bloodTestRepoMongo) List(ctx context.Context, q Query) ([]*BloodTest, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, patientFilter(q.PatientID, q.TestType), opts)
	if err != nil {
		return nil, fmt.Errorf("list blood tests: %w", err)
	}
	out := []*BloodTest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode blood tests: %w", err)
	}
	return out, nil
}

func (r *bloodTestRepoMongo) Latest(ctx context.Context, patientID primitive.ObjectID, testType string) (*BloodTest, error) {
	opts := options.FindOne().SetSort(newestFirst)
	bt, err := decodeBloodTest(r.coll.FindOne(ctx, patientFilter(patientID, testType), opts))
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, nil
	}
	return bt, err
}

func (r *bloodTestRepoMongo) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*BloodTest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeBloodTest(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts))
}

func (r *bloodTestRepoMongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete blood test: %w", err)
	}
	if res.DeletedCount == 0 {
		return apierr.ErrNotFound
	}
	return nil
}

// metricPipeline keeps the first result per test that carries the metric.
func metricPipeline(patientID primitive.ObjectID, testType, metric string) mongo.Pipeline {
	oldestFirst := bson.D{{Key: "test_date", Value: 1}, {Key: "_id", Value: 1}}
	return mongo.Pipeline{
		{{Key: "$match", Value: patientFilter(patientID, testType)}},
		{{Key: "$sort", Value: oldestFirst}},
		{{Key: "$unwind", Value: "$results"}},
		{{Key: "$match", Value: metricFilter(metric)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "test_date", Value: bson.M{"$first": "$test_date"}},
			{Key: "value", Value: bson.M{"$first": "$results.value"}},
		}}},
		{{Key: "$sort", Value: oldestFirst}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "date", Value: "$test_date"},
			{Key: "value", Value: 1},
		}}},
	}
}

func (r *bloodTestRepoMongo) MetricSeries(ctx context.Context, patientID primitive.ObjectID, testType, metric string) ([]Point, error) {
	cur, err := r.coll.Aggregate(ctx, metricPipeline(patientID, testType, metric))
	if err != nil {
		return nil, fmt.Errorf("aggregate metric series: %w", err)
	}
	out := []Point{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode metric series: %w", err)
	}
	return out, nil
}
