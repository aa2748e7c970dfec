package doctor

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := d.Details.Validate(); err != nil {
		return err
	}
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	now := s.now()
	d.CreatedAt, d.UpdatedAt = now, now
	return s.repo.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id primitive.ObjectID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, skip, limit int) ([]*Doctor, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *Service) UpdateDoctor(ctx context.Context, id primitive.ObjectID, patch Patch) (*Doctor, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	set := patch.Fields()
	set["updated_at"] = s.now()
	return s.repo.Update(ctx, id, set)
}

func (s *Service) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
