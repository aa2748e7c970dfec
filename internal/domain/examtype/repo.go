package examtype

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repository interface {
	Create(ctx context.Context, e *ExamType) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*ExamType, error)
	List(ctx context.Context, skip, limit int) ([]*ExamType, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*ExamType, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
