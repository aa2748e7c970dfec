package bloodtest

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/domain/doctor"
	"github.com/healthtracker/healthtracker/internal/domain/examtype"
	"github.com/healthtracker/healthtracker/internal/domain/patient"
	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type PatientFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*patient.Patient, error)
}

type ExamTypeFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*examtype.ExamType, error)
}

type DoctorFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*doctor.Doctor, error)
}

// Validator checks the cross-entity references of a blood test. It only
// reads; nothing is written.
//
// Lookups run in a fixed order (patient, listed exam types, doctor, result
// exam types) and stop at the first miss.
type Validator struct {
	patients  PatientFinder
	examTypes ExamTypeFinder
	doctors   DoctorFinder
	now       func() time.Time
}

func NewValidator(patients PatientFinder, examTypes ExamTypeFinder, doctors DoctorFinder) *Validator {
	return &Validator{
		patients:  patients,
		examTypes: examTypes,
		doctors:   doctors,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// parsed holds the ids of a payload after syntax checking.
type parsed struct {
	patientID *primitive.ObjectID
	examTypes []primitive.ObjectID
	doctorID  *primitive.ObjectID
	results   []ExamResult
}

func parseRef(field, s string) (primitive.ObjectID, error) {
	id, err := db.ParseID(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, &InvalidReferenceError{Field: field, Value: s}
	}
	return id, nil
}

func parseExamTypes(ss []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ss))
	for _, s := range ss {
		id, err := parseRef("exam_types", s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parseResults(rs []ResultDraft) ([]ExamResult, error) {
	out := make([]ExamResult, 0, len(rs))
	for _, r := range rs {
		id, err := parseRef("results.exam_type_id", r.ExamTypeID)
		if err != nil {
			return nil, err
		}
		out = append(out, ExamResult{ExamTypeID: id, Value: r.Value})
	}
	return out, nil
}

// resolve performs the lookups for every reference present in p and stamps
// exam type names onto the results.
func (v *Validator) resolve(ctx context.Context, p *parsed) error {
	if p.patientID != nil {
		if _, err := v.patients.GetByID(ctx, *p.patientID); err != nil {
			return refNotFound(err, RefPatient, "patient_id", *p.patientID)
		}
	}

	names := make(map[primitive.ObjectID]string, len(p.examTypes))
	for _, id := range p.examTypes {
		et, err := v.examTypes.GetByID(ctx, id)
		if err != nil {
			return refNotFound(err, RefExamType, "exam_types", id)
		}
		names[id] = et.Name
	}

	if p.doctorID != nil {
		if _, err := v.doctors.GetByID(ctx, *p.doctorID); err != nil {
			return refNotFound(err, RefDoctor, "doctor_id", *p.doctorID)
		}
	}

	for i := range p.results {
		id := p.results[i].ExamTypeID
		name, ok := names[id]
		if !ok {
			et, err := v.examTypes.GetByID(ctx, id)
			if err != nil {
				return refNotFound(err, RefExamType, "results.exam_type_id", id)
			}
			name = et.Name
			names[id] = name
		}
		p.results[i].ExamTypeName = name
	}
	return nil
}

// refNotFound turns a repository miss into a ReferenceNotFoundError and passes
// store failures through.
func refNotFound(err error, kind RefKind, field string, id primitive.ObjectID) error {
	if errors.Is(err, apierr.ErrNotFound) {
		return &ReferenceNotFoundError{Kind: kind, Field: field, ID: id.Hex()}
	}
	return err
}

// ValidateAndPrepare checks d and returns the record to insert, with
// created_at equal to updated_at. Every id is syntax checked before the first
// lookup.
func (v *Validator) ValidateAndPrepare(ctx context.Context, d Draft) (*BloodTest, error) {
	if strings.TrimSpace(d.PatientID) == "" {
		return nil, apierr.Invalid("patient_id is required")
	}
	if d.TestDate.IsZero() {
		return nil, apierr.Invalid("test_date is required")
	}
	if strings.TrimSpace(d.LabName) == "" {
		return nil, apierr.Invalid("lab_name is required")
	}

	var (
		p   parsed
		err error
	)
	pid, err := parseRef("patient_id", d.PatientID)
	if err != nil {
		return nil, err
	}
	p.patientID = &pid
	if p.examTypes, err = parseExamTypes(d.ExamTypes); err != nil {
		return nil, err
	}
	if d.DoctorID != nil && strings.TrimSpace(*d.DoctorID) != "" {
		did, err := parseRef("doctor_id", *d.DoctorID)
		if err != nil {
			return nil, err
		}
		p.doctorID = &did
	}
	if p.results, err = parseResults(d.Results); err != nil {
		return nil, err
	}

	if err := v.resolve(ctx, &p); err != nil {
		return nil, err
	}

	now := v.now()
	return &BloodTest{
		PatientID: pid,
		TestDate:  d.TestDate.UTC(),
		TestType:  strings.TrimSpace(d.TestType),
		ExamTypes: p.examTypes,
		Results:   p.results,
		DoctorID:  p.doctorID,
		LabName:   strings.TrimSpace(d.LabName),
		Notes:     d.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PreparePatch validates the references present in patch and returns the
// fields to set. Absent references are not looked up.
func (v *Validator) PreparePatch(ctx context.Context, patch Patch) (map[string]interface{}, error) {
	var (
		p   parsed
		err error
	)
	set := map[string]interface{}{}

	if patch.PatientID != nil {
		pid, err := parseRef("patient_id", *patch.PatientID)
		if err != nil {
			return nil, err
		}
		p.patientID = &pid
		set["patient_id"] = pid
	}
	if patch.ExamTypes != nil {
		if p.examTypes, err = parseExamTypes(*patch.ExamTypes); err != nil {
			return nil, err
		}
		set["exam_types"] = p.examTypes
	}
	if patch.DoctorID != nil {
		if strings.TrimSpace(*patch.DoctorID) == "" {
			set["doctor_id"] = (*primitive.ObjectID)(nil)
		} else {
			did, err := parseRef("doctor_id", *patch.DoctorID)
			if err != nil {
				return nil, err
			}
			p.doctorID = &did
			set["doctor_id"] = p.doctorID
		}
	}
	if patch.Results != nil {
		if p.results, err = parseResults(*patch.Results); err != nil {
			return nil, err
		}
	}

	if patch.TestDate != nil {
		if patch.TestDate.IsZero() {
			return nil, apierr.Invalid("test_date must not be empty")
		}
		set["test_date"] = patch.TestDate.UTC()
	}
	if patch.LabName != nil {
		name := strings.TrimSpace(*patch.LabName)
		if name == "" {
			return nil, apierr.Invalid("lab_name must not be empty")
		}
		set["lab_name"] = name
	}
	if patch.TestType != nil {
		set["test_type"] = strings.TrimSpace(*patch.TestType)
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}

	if err := v.resolve(ctx, &p); err != nil {
		return nil, err
	}
	if patch.Results != nil {
		set["results"] = p.results
	}
	return set, nil
}
