package doctor

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Doctor, error)
	List(ctx context.Context, skip, limit int) ([]*Doctor, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Doctor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
