package doctor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) Repository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, name, email, date_of_birth, gender, phone, address, notes,
	specialty, license_number, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var (
		d  Doctor
		id string
	)
	err := row.Scan(&id, &d.Name, &d.Email, &d.DateOfBirth, &d.Gender, &d.Phone, &d.Address, &d.Notes,
		&d.Specialty, &d.LicenseNumber, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	if d.ID, err = db.ParseID(id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = db.NewID()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, email, date_of_birth, gender, phone, address, notes,
			specialty, license_number, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID.Hex(), d.Name, d.Email, d.DateOfBirth, d.Gender, d.Phone, d.Address, d.Notes,
		d.Specialty, d.LicenseNumber, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id primitive.ObjectID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id.Hex()))
}

func (r *doctorRepoPG) List(ctx context.Context, skip, limit int) ([]*Doctor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	out := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *doctorRepoPG) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*Doctor, error) {
	assignments, args := db.UpdateSet(set)
	args = append([]interface{}{id.Hex()}, args...)
	return scanDoctor(r.pool.QueryRow(ctx,
		`UPDATE doctors SET `+assignments+` WHERE id = $1 RETURNING `+doctorCols, args...))
}

func (r *doctorRepoPG) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierr.ErrNotFound
	}
	return nil
}
