package bloodtest

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository stores blood tests. List and Latest order by test_date
// descending with the id as tie-breaker so pages are stable. Latest returns
// (nil, nil) when the patient has no matching test.
type Repository interface {
	Create(ctx context.Context, bt *BloodTest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*BloodTest, error)
	List(ctx context.Context, q Query) ([]*BloodTest, error)
	Latest(ctx context.Context, patientID primitive.ObjectID, testType string) (*BloodTest, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*BloodTest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// MetricSeries returns (test_date, value) for every matching test that
	// carries the metric, oldest first. Tests without it are skipped.
	MetricSeries(ctx context.Context, patientID primitive.ObjectID, testType, metric string) ([]Point, error)
}
