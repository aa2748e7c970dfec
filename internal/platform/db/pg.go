package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

// Queryable is the subset of pgx shared by pools, connections and
// transactions.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// NotFound maps pgx.ErrNoRows onto apierr.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apierr.ErrNotFound
	}
	return err
}

// UpdateSet renders a partial update as "col = $n" assignments. Placeholders
// start at $2 because $1 is reserved for the row id. Columns are emitted in
// sorted order so the generated SQL is stable.
func UpdateSet(fields map[string]interface{}) (string, []interface{}) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	assignments := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for i, col := range cols {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, PGValue(fields[col]))
	}
	return strings.Join(assignments, ", "), args
}

// PGValue converts document ids into their text form, leaving every other
// value to pgx's own encoders.
func PGValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case *primitive.ObjectID:
		return IDPtrHex(val)
	case []primitive.ObjectID:
		return IDsHex(val)
	default:
		return v
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
