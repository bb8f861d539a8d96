package bookings

import (
	"context"

	"github.com/example/gaiola-watcher/internal/db"
)

// PostgresStore keeps booking records in the booking_records table.
type PostgresStore struct{ db *db.DB }

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

func (s *PostgresStore) Put(ctx context.Context, subjectName, code string) error {
	return s.db.Exec(ctx, `
INSERT INTO booking_records(subject_name, code)
VALUES ($1,$2)
ON CONFLICT (subject_name, code) DO NOTHING`, subjectName, code)
}

func (s *PostgresStore) FindByName(ctx context.Context, subjectName string) (string, error) {
	var code string
	err := s.db.QueryRow(ctx, `
SELECT code FROM booking_records
WHERE lower(subject_name)=lower($1)
ORDER BY created_at DESC
LIMIT 1`, subjectName).Scan(&code)
	if err != nil {
		if db.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectName, code string) (bool, error) {
	n, err := s.db.ExecRows(ctx, `
DELETE FROM booking_records
WHERE lower(subject_name)=lower($1) AND code=$2`, subjectName, code)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
SELECT subject_name, code, created_at
FROM booking_records
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.SubjectName, &rec.Code, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
