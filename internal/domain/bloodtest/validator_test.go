package bloodtest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

func newTestValidator(refs *refStore) *Validator {
	v := NewValidator(patientFinder{refs}, examTypeFinder{refs}, doctorFinder{refs})
	v.now = func() time.Time { return fixedNow }
	return v
}

func TestValidator_LookupOrder(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient()
	a := refs.addExamType("hdl")
	b := refs.addExamType("ldl")
	c := refs.addExamType("glucose")
	doc := refs.addDoctor()
	docHex := doc.Hex()

	_, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), Draft{
		PatientID: pid.Hex(),
		TestDate:  fixedNow,
		ExamTypes: []string{a.Hex(), b.Hex()},
		Results:   []ResultDraft{{ExamTypeID: c.Hex(), Value: 1}},
		DoctorID:  &docHex,
		LabName:   "Central Lab",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"patient:" + pid.Hex(),
		"exam_type:" + a.Hex(),
		"exam_type:" + b.Hex(),
		"doctor:" + doc.Hex(),
		"exam_type:" + c.Hex(),
	}
	if !reflect.DeepEqual(refs.calls, want) {
		t.Errorf("lookup order\n got %v\nwant %v", refs.calls, want)
	}
}

func TestValidator_ShortCircuitsOnFirstMissingExamType(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient()
	missing := primitive.NewObjectID()
	later := refs.addExamType("ldl")

	_, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), Draft{
		PatientID: pid.Hex(),
		TestDate:  fixedNow,
		ExamTypes: []string{missing.Hex(), later.Hex()},
		LabName:   "Central Lab",
	})

	var rnf *ReferenceNotFoundError
	if !errors.As(err, &rnf) || rnf.Kind != RefExamType || rnf.ID != missing.Hex() {
		t.Fatalf("expected ExamTypeNotFound(%s), got %v", missing.Hex(), err)
	}
	if len(refs.calls) != 2 {
		t.Errorf("expected lookups to stop after the miss, got %v", refs.calls)
	}
}

func TestValidator_MissingResultExamType(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient()
	missing := primitive.NewObjectID()

	_, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), Draft{
		PatientID: pid.Hex(),
		TestDate:  fixedNow,
		Results:   []ResultDraft{{ExamTypeID: missing.Hex(), Value: 4.2}},
		LabName:   "Central Lab",
	})

	var rnf *ReferenceNotFoundError
	if !errors.As(err, &rnf) || rnf.Field != "results.exam_type_id" {
		t.Fatalf("expected result ExamTypeNotFound, got %v", err)
	}
}

func TestValidator_DoctorNotFound(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient()
	doc := primitive.NewObjectID().Hex()

	_, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), Draft{
		PatientID: pid.Hex(),
		TestDate:  fixedNow,
		DoctorID:  &doc,
		LabName:   "Central Lab",
	})

	var rnf *ReferenceNotFoundError
	if !errors.As(err, &rnf) || rnf.Kind != RefDoctor {
		t.Fatalf("expected DoctorNotFound, got %v", err)
	}
}

func TestValidator_EmptyDoctorIsAbsent(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient()
	empty := ""

	bt, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), Draft{
		PatientID: pid.Hex(),
		TestDate:  fixedNow,
		DoctorID:  &empty,
		LabName:   "Central Lab",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.DoctorID != nil {
		t.Error("expected no doctor reference")
	}
}

func TestValidator_MalformedIDsRejectedBeforeLookup(t *testing.T) {
	tests := []struct {
		name  string
		draft func(pid string) Draft
		field string
	}{
		{"patient", func(string) Draft {
			return Draft{PatientID: "12345", TestDate: fixedNow, LabName: "L"}
		}, "patient_id"},
		{"exam type", func(pid string) Draft {
			return Draft{PatientID: pid, TestDate: fixedNow, LabName: "L", ExamTypes: []string{"nope"}}
		}, "exam_types"},
		{"doctor", func(pid string) Draft {
			d := "doc-1"
			return Draft{PatientID: pid, TestDate: fixedNow, LabName: "L", DoctorID: &d}
		}, "doctor_id"},
		{"result", func(pid string) Draft {
			return Draft{PatientID: pid, TestDate: fixedNow, LabName: "L", Results: []ResultDraft{{ExamTypeID: "x"}}}
		}, "results.exam_type_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := newRefStore()
			pid := refs.addPatient()

			_, err := newTestValidator(refs).ValidateAndPrepare(context.Background(), tt.draft(pid.Hex()))

			var ir *InvalidReferenceError
			if !errors.As(err, &ir) || ir.Field != tt.field {
				t.Fatalf("expected InvalidReference on %s, got %v", tt.field, err)
			}
			if len(refs.calls) != 0 {
				t.Errorf("expected no lookups, got %v", refs.calls)
			}
		})
	}
}

func TestValidator_RequiredFields(t *testing.T) {
	refs := newRefStore()
	pid := refs.addPatient().Hex()
	v := newTestValidator(refs)

	for name, d := range map[string]Draft{
		"patient_id": {TestDate: fixedNow, LabName: "L"},
		"test_date":  {PatientID: pid, LabName: "L"},
		"lab_name":   {PatientID: pid, TestDate: fixedNow},
	} {
		_, err := v.ValidateAndPrepare(context.Background(), d)
		var ve *apierr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestValidator_StoreErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")
	err := refNotFound(boom, RefPatient, "patient_id", primitive.NewObjectID())
	if err != boom {
		t.Errorf("expected store error to pass through, got %v", err)
	}
}

func TestValidator_PreparePatch_OnlyLooksUpSuppliedReferences(t *testing.T) {
	refs := newRefStore()
	glucose := refs.addExamType("glucose")
	lab := "North Lab"
	results := []ResultDraft{{ExamTypeID: glucose.Hex(), Value: 88}}

	set, err := newTestValidator(refs).PreparePatch(context.Background(), Patch{LabName: &lab, Results: &results})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs.calls) != 1 {
		t.Errorf("expected a single exam type lookup, got %v", refs.calls)
	}
	got, ok := set["results"].([]ExamResult)
	if !ok || len(got) != 1 || got[0].ExamTypeName != "glucose" {
		t.Errorf("expected stamped results, got %#v", set["results"])
	}
	if set["lab_name"] != lab {
		t.Errorf("expected lab_name %q, got %v", lab, set["lab_name"])
	}
	if _, ok := set["patient_id"]; ok {
		t.Error("absent fields must not be set")
	}
}

func TestValidator_PreparePatch_ClearsDoctor(t *testing.T) {
	refs := newRefStore()
	empty := ""
	set, err := newTestValidator(refs).PreparePatch(context.Background(), Patch{DoctorID: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := set["doctor_id"]
	if !ok {
		t.Fatal("expected doctor_id to be cleared")
	}
	if p, _ := v.(*primitive.ObjectID); p != nil {
		t.Errorf("expected nil doctor id, got %v", p)
	}
}
