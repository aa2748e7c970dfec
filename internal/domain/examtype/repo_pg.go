package examtype

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type examTypeRepoPG struct{ pool *pgxpool.Pool }

func NewExamTypeRepoPG(pool *pgxpool.Pool) Repository {
	return &examTypeRepoPG{pool: pool}
}

const examTypeCols = `id, name, description, unit, reference_values, created_at, updated_at`

func scanExamType(row pgx.Row) (*ExamType, error) {
	var (
		e  ExamType
		id string
	)
	// reference_values is JSONB; pgx decodes it straight into the map.
	err := row.Scan(&id, &e.Name, &e.Description, &e.Unit, &e.ReferenceValues, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	if e.ID, err = db.ParseID(id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *examTypeRepoPG) Create(ctx context.Context, e *ExamType) error {
	e.ID = db.NewID()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exam_types (id, name, description, unit, reference_values, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID.Hex(), e.Name, e.Description, e.Unit, e.ReferenceValues, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert exam type: %w", err)
	}
	return nil
}

func (r *examTypeRepoPG) GetByID(ctx context.Context, id primitive.ObjectID) (*ExamType, error) {
	return scanExamType(r.pool.QueryRow(ctx, `SELECT `+examTypeCols+` FROM exam_types WHERE id = $1`, id.Hex()))
}

func (r *examTypeRepoPG) List(ctx context.Context, skip, limit int) ([]*ExamType, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+examTypeCols+` FROM exam_types ORDER BY name LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list exam types: %w", err)
	}
	defer rows.Close()

	out := []*ExamType{}
	for rows.Next() {
		e, err := scanExamType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *examTypeRepoPG) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*ExamType, error) {
	assignments, args := db.UpdateSet(set)
	args = append([]interface{}{id.Hex()}, args...)
	return scanExamType(r.pool.QueryRow(ctx,
		`UPDATE exam_types SET `+assignments+` WHERE id = $1 RETURNING `+examTypeCols, args...))
}

func (r *examTypeRepoPG) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_types WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("delete exam type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierr.ErrNotFound
	}
	return nil
}
