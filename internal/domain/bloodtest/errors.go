package bloodtest

import "fmt"

// RefKind names the collection a reference points into.
type RefKind string

const (
	RefPatient  RefKind = "Patient"
	RefExamType RefKind = "ExamType"
	RefDoctor   RefKind = "Doctor"
)

// InvalidReferenceError is returned when a supplied id is not well formed.
// No lookup is attempted for it.
type InvalidReferenceError struct {
	Field string
	Value string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid id for %s: %q", e.Field, e.Value)
}

func (e *InvalidReferenceError) BadRequest() bool { return true }

// ReferenceNotFoundError is returned when a well formed id resolves to
// nothing. It is a client error, unlike a missing blood test.
type ReferenceNotFoundError struct {
	Kind  RefKind
	Field string
	ID    string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %s: %s", e.Kind, e.Field, e.ID)
}

func (e *ReferenceNotFoundError) BadRequest() bool { return true }
