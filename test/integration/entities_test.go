package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/healthtracker/healthtracker/internal/domain/doctor"
	"github.com/healthtracker/healthtracker/internal/domain/examtype"
	"github.com/healthtracker/healthtracker/internal/domain/patient"
	"github.com/healthtracker/healthtracker/internal/domain/person"
	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

func TestPatient_SearchUpdateDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.createPatient(t, "Ada Lovelace", "ada@example.com")
	e.createPatient(t, "Grace Hopper", "grace@navy.example")
	e.createPatient(t, "100% Real", "percent@example.com")

	found, err := e.patients.ListPatients(ctx, patient.ListQuery{Limit: 10, Search: "LOVE"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != ada.ID {
		t.Errorf("expected Ada, got %v", found)
	}

	found, _ = e.patients.ListPatients(ctx, patient.ListQuery{Limit: 10, Search: "navy"})
	if len(found) != 1 || found[0].Name != "Grace Hopper" {
		t.Errorf("expected email match, got %v", found)
	}

	found, _ = e.patients.ListPatients(ctx, patient.ListQuery{Limit: 10, Search: "%"})
	if len(found) != 1 || found[0].Name != "100% Real" {
		t.Errorf("expected literal percent match, got %v", found)
	}

	phone := "+44 20 7946 0000"
	diseases := []string{"asthma"}
	updated, err := e.patients.UpdatePatient(ctx, ada.ID, patient.Patch{Diseases: &diseases, DetailsPatch: person.DetailsPatch{Phone: &phone}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != phone || len(updated.Diseases) != 1 || updated.Diseases[0] != "asthma" || updated.Email != "ada@example.com" {
		t.Errorf("unexpected merge %+v", updated)
	}

	if err := e.patients.DeletePatient(ctx, ada.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.patients.GetPatient(ctx, ada.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDoctor_RoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d := &doctor.Doctor{Details: details("Dr. House", "house@example.com"), Specialty: "diagnostics", LicenseNumber: "MD-1"}
	if err := e.doctors.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	specialty := "nephrology"
	updated, err := e.doctors.UpdateDoctor(ctx, d.ID, doctor.Patch{Specialty: &specialty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Specialty != "nephrology" || updated.LicenseNumber != "MD-1" {
		t.Errorf("unexpected merge %+v", updated)
	}

	list, err := e.doctors.ListDoctors(ctx, 0, 100)
	if err != nil || len(list) != 1 {
		t.Errorf("expected one doctor, got %v (%v)", list, err)
	}
}

func TestExamType_ReferenceValuesRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	et := e.createExamType(t, "glucose")

	got, err := e.examTypes.GetExamType(ctx, et.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	r, ok := got.RangeFor("Adult")
	if !ok || r.Min != 70 || r.Max != 99 || got.Unit == nil || *got.Unit != "mg/dL" {
		t.Errorf("unexpected exam type %+v", got)
	}

	ranges := map[string]examtype.ReferenceRange{"child": {Min: 60, Max: 100}}
	updated, err := e.examTypes.UpdateExamType(ctx, et.ID, examtype.Patch{ReferenceValues: ranges})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := updated.RangeFor("adult"); ok {
		t.Error("expected reference values to be replaced")
	}

	if err := e.examTypes.DeleteExamType(ctx, et.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.examTypes.DeleteExamType(ctx, et.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
