package patient

import (
	"context"
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

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := p.Details.Validate(); err != nil {
		return err
	}
	p.Diseases = normalizeDiseases(p.Diseases)
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id primitive.ObjectID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, q ListQuery) ([]*Patient, error) {
	return s.repo.List(ctx, q)
}

// UpdatePatient sets only the supplied fields and refreshes updated_at.
func (s *Service) UpdatePatient(ctx context.Context, id primitive.ObjectID, patch Patch) (*Patient, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	set := patch.Fields()
	set["updated_at"] = s.now()
	return s.repo.Update(ctx, id, set)
}

// DeletePatient does not cascade: blood tests keep their patient_id.
func (s *Service) DeletePatient(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
