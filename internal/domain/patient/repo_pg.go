package patient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, name, email, date_of_birth, gender, phone, address, notes,
	diseases, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		p  Patient
		id string
	)
	err := row.Scan(&id, &p.Name, &p.Email, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Address, &p.Notes,
		&p.Diseases, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	if p.ID, err = db.ParseID(id); err != nil {
		return nil, err
	}
	if p.Diseases == nil {
		p.Diseases = []string{}
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = db.NewID()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, date_of_birth, gender, phone, address, notes,
			diseases, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID.Hex(), p.Name, p.Email, p.DateOfBirth, p.Gender, p.Phone, p.Address, p.Notes,
		p.Diseases, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id primitive.ObjectID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id.Hex()))
}

func (r *patientRepoPG) List(ctx context.Context, q ListQuery) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients`
	args := []interface{}{}
	if q.Search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, db.LikeContains(q.Search))
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	out := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *patientRepoPG) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Patient, error) {
	assignments, args := db.UpdateSet(set)
	args = append([]interface{}{id.Hex()}, args...)
	return scanPatient(r.pool.QueryRow(ctx,
		`UPDATE patients SET `+assignments+` WHERE id = $1 RETURNING `+patientCols, args...))
}

func (r *patientRepoPG) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierr.ErrNotFound
	}
	return nil
}
