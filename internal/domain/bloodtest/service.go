package bloodtest

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

const (
	DefaultSummaryCap = 1000
	RecentDefault     = 5
	RecentMax         = 50
)

// Counter counts domain events by one label value.
type Counter interface {
	Inc(labelValue string)
}

type nopCounter struct{}

func (nopCounter) Inc(string) {}

type Service struct {
	repo       Repository
	validator  *Validator
	summaryCap int
	now        func() time.Time

	created  Counter
	rejected Counter
}

// NewService wires the store and the reference validator. summaryCap bounds
// how many of a patient's most recent tests Summarize folds; older tests are
// left out of the summary.
func NewService(repo Repository, validator *Validator, summaryCap int) *Service {
	if summaryCap <= 0 {
		summaryCap = DefaultSummaryCap
	}
	return &Service{
		repo:       repo,
		validator:  validator,
		summaryCap: summaryCap,
		now:        func() time.Time { return time.Now().UTC() },
		created:    nopCounter{},
		rejected:   nopCounter{},
	}
}

// SetCounters installs the counters for stored tests (by test type) and for
// writes rejected by reference validation (by reason).
func (s *Service) SetCounters(created, rejected Counter) {
	s.created = created
	s.rejected = rejected
}

// rejectionReason labels a validation failure, or returns "" for errors that
// are not the client's.
func rejectionReason(err error) string {
	var notFound *ReferenceNotFoundError
	var invalid *InvalidReferenceError
	switch {
	case errors.As(err, &notFound):
		return string(notFound.Kind)
	case errors.As(err, &invalid):
		return "InvalidReference"
	case apierr.IsBadRequest(err):
		return "Validation"
	}
	return ""
}

// CreateBloodTest validates every reference and then inserts. The
// validation and the insert are separate store calls; a referenced entity
// deleted in between is not detected.
func (s *Service) CreateBloodTest(ctx context.Context, d Draft) (*BloodTest, error) {
	bt, err := s.validator.ValidateAndPrepare(ctx, d)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.rejected.Inc(reason)
		}
		return nil, err
	}
	if err := s.repo.Create(ctx, bt); err != nil {
		return nil, err
	}
	s.created.Inc(typeKey(bt.TestType))
	return bt, nil
}

func (s *Service) GetBloodTest(ctx context.Context, id primitive.ObjectID) (*BloodTest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, q Query) ([]*BloodTest, error) {
	return s.repo.List(ctx, q)
}

// LatestForPatient returns nil without error when no test matches.
func (s *Service) LatestForPatient(ctx context.Context, patientID primitive.ObjectID, testType string) (*BloodTest, error) {
	return s.repo.Latest(ctx, patientID, testType)
}

func (s *Service) RecentForPatient(ctx context.Context, patientID primitive.ObjectID, limit int) ([]*BloodTest, error) {
	return s.repo.List(ctx, Query{PatientID: patientID, Limit: limit})
}

// UpdateBloodTest merges the supplied fields. References present in the
// patch are checked the same way as on create.
func (s *Service) UpdateBloodTest(ctx context.Context, id primitive.ObjectID, patch Patch) (*BloodTest, error) {
	set, err := s.validator.PreparePatch(ctx, patch)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.rejected.Inc(reason)
		}
		return nil, err
	}
	set["updated_at"] = s.now()
	return s.repo.Update(ctx, id, set)
}

func (s *Service) DeleteBloodTest(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) MetricTimeSeries(ctx context.Context, patientID primitive.ObjectID, testType, metric string) ([]Point, error) {
	return s.repo.MetricSeries(ctx, patientID, testType, metric)
}

// Summarize folds the patient's most recent tests, at most summaryCap of
// them.
func (s *Service) Summarize(ctx context.Context, patientID primitive.ObjectID, metric string) (Summary, error) {
	tests, err := s.repo.List(ctx, Query{PatientID: patientID, Limit: s.summaryCap})
	if err != nil {
		return Summary{}, err
	}
	return summarize(tests, metric), nil
}
