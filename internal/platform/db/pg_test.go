package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

func TestUpdateSet(t *testing.T) {
	now := time.Now()
	patient := NewID()
	set, args := UpdateSet(map[string]interface{}{
		"updated_at": now,
		"lab_name":   "Central Lab",
		"patient_id": patient,
	})

	want := "lab_name = $2, patient_id = $3, updated_at = $4"
	if set != want {
		t.Errorf("UpdateSet() = %q, want %q", set, want)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if args[0] != "Central Lab" {
		t.Errorf("args[0] = %v", args[0])
	}
	if args[1] != patient.Hex() {
		t.Errorf("expected id to be rendered as hex, got %v", args[1])
	}
}

func TestUpdateSet_Empty(t *testing.T) {
	set, args := UpdateSet(nil)
	if set != "" || len(args) != 0 {
		t.Errorf("expected empty output, got %q %v", set, args)
	}
}

func TestNotFound(t *testing.T) {
	if !errors.Is(NotFound(pgx.ErrNoRows), apierr.ErrNotFound) {
		t.Error("expected ErrNoRows to map to ErrNotFound")
	}
	other := fmt.Errorf("boom")
	if NotFound(other) != other {
		t.Error("expected other errors to pass through")
	}
}

func TestLikeContains(t *testing.T) {
	tests := map[string]string{
		"ana":     "%ana%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		if got := LikeContains(in); got != want {
			t.Errorf("LikeContains(%q) = %q, want %q", in, got, want)
		}
	}
}
