package bloodtest

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

// ExamResult is one measured value inside a blood test. ExamTypeName is
// copied from the exam type when the test is written so that metrics can be
// addressed by name.
type ExamResult struct {
	ExamTypeID   primitive.ObjectID `json:"exam_type_id" bson:"exam_type_id"`
	ExamTypeName string             `json:"exam_type_name,omitempty" bson:"exam_type_name,omitempty"`
	Value        float64            `json:"value" bson:"value"`
}

// BloodTest is stored in the blood_tests collection with its results
// embedded.
type BloodTest struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id"`
	PatientID primitive.ObjectID   `json:"patient_id" bson:"patient_id"`
	TestDate  time.Time            `json:"test_date" bson:"test_date"`
	TestType  string               `json:"test_type,omitempty" bson:"test_type,omitempty"`
	ExamTypes []primitive.ObjectID `json:"exam_types" bson:"exam_types"`
	Results   []ExamResult         `json:"results" bson:"results"`
	DoctorID  *primitive.ObjectID  `json:"doctor_id,omitempty" bson:"doctor_id,omitempty"`
	LabName   string               `json:"lab_name" bson:"lab_name"`
	Notes     *string              `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// ResultDraft is a result as submitted by a client.
type ResultDraft struct {
	ExamTypeID string  `json:"exam_type_id"`
	Value      float64 `json:"value"`
}

// Draft is the create payload. Ids are kept as strings until the validator
// has checked that they are well formed.
type Draft struct {
	PatientID string        `json:"patient_id"`
	TestDate  time.Time     `json:"test_date"`
	TestType  string        `json:"test_type,omitempty"`
	ExamTypes []string      `json:"exam_types"`
	Results   []ResultDraft `json:"results"`
	DoctorID  *string       `json:"doctor_id,omitempty"`
	LabName   string        `json:"lab_name"`
	Notes     *string       `json:"notes,omitempty"`
}

// Patch is the body of a partial update. An empty doctor_id clears the
// doctor reference.
type Patch struct {
	PatientID *string        `json:"patient_id,omitempty"`
	TestDate  *time.Time     `json:"test_date,omitempty"`
	TestType  *string        `json:"test_type,omitempty"`
	ExamTypes *[]string      `json:"exam_types,omitempty"`
	Results   *[]ResultDraft `json:"results,omitempty"`
	DoctorID  *string        `json:"doctor_id,omitempty"`
	LabName   *string        `json:"lab_name,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
}

// testDateLayouts are tried in order. Forms without a zone are read as UTC,
// so a plain "2024-01-15" from a date picker lands on midnight UTC.
var testDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTestDate accepts RFC 3339 timestamps, zone-less ISO date-times and
// plain dates.
func ParseTestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range testDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apierr.Invalid("test_date must be a date (YYYY-MM-DD) or an ISO 8601 date-time, got %q", s)
}

type testDate struct {
	set bool
	t   time.Time
}

func (d *testDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return apierr.Invalid("test_date must be a string")
	}
	t, err := ParseTestDate(s)
	if err != nil {
		return err
	}
	d.set, d.t = true, t
	return nil
}

func (d *Draft) UnmarshalJSON(b []byte) error {
	type plain Draft
	aux := struct {
		*plain
		TestDate testDate `json:"test_date"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.TestDate.set {
		d.TestDate = aux.TestDate.t
	}
	return nil
}

func (p *Patch) UnmarshalJSON(b []byte) error {
	type plain Patch
	aux := struct {
		*plain
		TestDate testDate `json:"test_date"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.TestDate.set {
		t := aux.TestDate.t
		p.TestDate = &t
	}
	return nil
}

// Query selects a page of one patient's history. TestType matches either the
// test_type label or an exam type id listed in exam_types.
type Query struct {
	PatientID primitive.ObjectID
	TestType  string
	Skip      int
	Limit     int
}

// Point is one sample of a metric time series.
type Point struct {
	Date  time.Time `json:"date" bson:"date"`
	Value float64   `json:"value" bson:"value"`
}

// MetricKeyMatches reports whether r is addressed by key, either by exam type
// id or by exam type name.
func (r ExamResult) MetricKeyMatches(key string) bool {
	return r.ExamTypeName == key || r.ExamTypeID.Hex() == key
}
