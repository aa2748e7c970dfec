package examtype

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

func (s *Service) CreateExamType(ctx context.Context, e *ExamType) error {
	if err := e.Validate(); err != nil {
		return err
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	return s.repo.Create(ctx, e)
}

func (s *Service) GetExamType(ctx context.Context, id primitive.ObjectID) (*ExamType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListExamTypes(ctx context.Context, skip, limit int) ([]*ExamType, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *Service) UpdateExamType(ctx context.Context, id primitive.ObjectID, patch Patch) (*ExamType, error) {
	set, err := patch.Fields()
	if err != nil {
		return nil, err
	}
	set["updated_at"] = s.now()
	return s.repo.Update(ctx, id, set)
}

// DeleteExamType leaves blood tests that reference the exam type untouched.
func (s *Service) DeleteExamType(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
