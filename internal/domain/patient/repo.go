package patient

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is implemented by the document store and the Postgres store.
// Missing ids yield apierr.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Patient, error)
	List(ctx context.Context, q ListQuery) ([]*Patient, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Patient, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
