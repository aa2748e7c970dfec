package db

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a string is not a well-formed document id.
var ErrInvalidID = errors.New("malformed id")

// ParseID converts a 24-character hex string into a document id. Ids are
// ObjectIDs regardless of the store driver so they stay portable between
// backends.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// NewID returns a fresh document id.
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// IDPtrHex renders an optional id for drivers that store ids as text.
func IDPtrHex(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}

// IDsHex renders a list of ids as hex strings.
func IDsHex(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// IDsFromHex is the inverse of IDsHex. It fails on the first malformed entry.
func IDsFromHex(ss []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ss))
	for _, s := range ss {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
