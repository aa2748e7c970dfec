package bloodtest

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

func TestParseTestDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T08:30", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"2024-01-15T08:30:05", time.Date(2024, 1, 15, 8, 30, 5, 0, time.UTC)},
		{"2024-01-15T08:30:05.250", time.Date(2024, 1, 15, 8, 30, 5, 250000000, time.UTC)},
		{"2024-01-15T08:30:00Z", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"2024-01-15T08:30:00-03:00", time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTestDate(tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}

	var ve *apierr.ValidationError
	if _, err := ParseTestDate("15/01/2024"); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestDraft_UnmarshalDateOnly(t *testing.T) {
	var d Draft
	body := `{"patient_id":"abc","test_date":"2024-01-15","lab_name":"Central","exam_types":["x"]}`
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.TestDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected test_date %v", d.TestDate)
	}
	if d.PatientID != "abc" || d.LabName != "Central" || len(d.ExamTypes) != 1 {
		t.Errorf("other fields not decoded: %+v", d)
	}
}

func TestDraft_UnmarshalBadDate(t *testing.T) {
	var d Draft
	err := json.Unmarshal([]byte(`{"test_date":"yesterday"}`), &d)
	if !apierr.IsBadRequest(err) {
		t.Errorf("expected a bad request error, got %v", err)
	}
}

func TestPatch_UnmarshalTestDate(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"test_date":"2024-02-01","lab_name":"Other"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TestDate == nil || !p.TestDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected test_date %v", p.TestDate)
	}
	if p.LabName == nil || *p.LabName != "Other" {
		t.Errorf("lab_name not decoded: %v", p.LabName)
	}

	var absent Patch
	if err := json.Unmarshal([]byte(`{"notes":"n"}`), &absent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.TestDate != nil {
		t.Errorf("expected nil test_date, got %v", absent.TestDate)
	}
}
