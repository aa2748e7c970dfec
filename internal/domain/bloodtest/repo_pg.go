package bloodtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
)

type bloodTestRepoPG struct{ pool *pgxpool.Pool }

func NewBloodTestRepoPG(pool *pgxpool.Pool) Repository {
	return &bloodTestRepoPG{pool: pool}
}

const bloodTestCols = `id, patient_id, test_date, test_type, exam_types, results, doctor_id,
	lab_name, notes, created_at, updated_at`

// typeClause is the SQL form of the type filter; $2 is the filter value and
// an empty value disables it.
const typeClause = `($2 = '' OR test_type = $2 OR $2 = ANY(exam_types))`

func scanBloodTest(row pgx.Row) (*BloodTest, error) {
	var (
		bt        BloodTest
		id        string
		patientID string
		testType  *string
		examTypes []string
		doctorID  *string
	)
	err := row.Scan(&id, &patientID, &bt.TestDate, &testType, &examTypes, &bt.Results, &doctorID,
		&bt.LabName, &bt.Notes, &bt.CreatedAt, &bt.UpdatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	if bt.ID, err = db.ParseID(id); err != nil {
		return nil, err
	}
	if bt.PatientID, err = db.ParseID(patientID); err != nil {
		return nil, err
	}
	if bt.ExamTypes, err = db.IDsFromHex(examTypes); err != nil {
		return nil, err
	}
	if doctorID != nil {
		did, err := db.ParseID(*doctorID)
		if err != nil {
			return nil, err
		}
		bt.DoctorID = &did
	}
	if testType != nil {
		bt.TestType = *testType
	}
	if bt.Results == nil {
		bt.Results = []ExamResult{}
	}
	return &bt, nil
}

func (r *bloodTestRepoPG) collect(rows pgx.Rows, err error) ([]*BloodTest, error) {
	if err != nil {
		return nil, fmt.Errorf("query blood tests: %w", err)
	}
	defer rows.Close()

	out := []*BloodTest{}
	for rows.Next() {
		bt, err := scanBloodTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	return out, rows.Err()
}

func (r *bloodTestRepoPG) Create(ctx context.Context, bt *BloodTest) error {
	bt.ID = db.NewID()
	var testType *string
	if bt.TestType != "" {
		testType = &bt.TestType
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blood_tests (id, patient_id, test_date, test_type, exam_types, results, doctor_id,
			lab_name, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		bt.ID.Hex(), bt.PatientID.Hex(), bt.TestDate, testType, db.IDsHex(bt.ExamTypes), bt.Results,
		db.IDPtrHex(bt.DoctorID), bt.LabName, bt.Notes, bt.CreatedAt, bt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert blood test: %w", err)
	}
	return nil
}

func (r *bloodTestRepoPG) GetByID(ctx context.Context, id primitive.ObjectID) (*BloodTest, error) {
	return scanBloodTest(r.pool.QueryRow(ctx, `SELECT `+bloodTestCols+` FROM blood_tests WHERE id = $1`, id.Hex()))
}

func (r *bloodTestRepoPG) List(ctx context.Context, q Query) ([]*BloodTest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bloodTestCols+` FROM blood_tests
		WHERE patient_id = $1 AND `+typeClause+`
		ORDER BY test_date DESC, id DESC
		LIMIT $3 OFFSET $4`,
		q.PatientID.Hex(), q.TestType, q.Limit, q.Skip)
	return r.collect(rows, err)
}

func (r *bloodTestRepoPG) Latest(ctx context.Context, patientID primitive.ObjectID, testType string) (*BloodTest, error) {
	bt, err := scanBloodTest(r.pool.QueryRow(ctx, `
		SELECT `+bloodTestCols+` FROM blood_tests
		WHERE patient_id = $1 AND `+typeClause+`
		ORDER BY test_date DESC, id DESC
		LIMIT 1`,
		patientID.Hex(), testType))
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, nil
	}
	return bt, err
}

func (r *bloodTestRepoPG) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*BloodTest, error) {
	if tt, ok := set["test_type"].(string); ok && tt == "" {
		set["test_type"] = nil
	}
	assignments, args := db.UpdateSet(set)
	args = append([]interface{}{id.Hex()}, args...)
	return scanBloodTest(r.pool.QueryRow(ctx,
		`UPDATE blood_tests SET `+assignments+` WHERE id = $1 RETURNING `+bloodTestCols, args...))
}

func (r *bloodTestRepoPG) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blood_tests WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("delete blood test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierr.ErrNotFound
	}
	return nil
}

func (r *bloodTestRepoPG) MetricSeries(ctx context.Context, patientID primitive.ObjectID, testType, metric string) ([]Point, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT bt.test_date, m.value
		FROM blood_tests bt
		CROSS JOIN LATERAL (
			SELECT (e.elem->>'value')::float8 AS value
			FROM jsonb_array_elements(bt.results) WITH ORDINALITY AS e(elem, ord)
			WHERE e.elem->>'exam_type_name' = $3 OR e.elem->>'exam_type_id' = $3
			ORDER BY e.ord
			LIMIT 1
		) m
		WHERE bt.patient_id = $1 AND `+typeClause+`
		ORDER BY bt.test_date ASC, bt.id ASC`,
		patientID.Hex(), testType, metric)
	if err != nil {
		return nil, fmt.Errorf("query metric series: %w", err)
	}
	defer rows.Close()

	out := []Point{}
	for rows.Next() {
		var (
			date  time.Time
			value float64
		)
		if err := rows.Scan(&date, &value); err != nil {
			return nil, err
		}
		out = append(out, Point{Date: date, Value: value})
	}
	return out, rows.Err()
}
