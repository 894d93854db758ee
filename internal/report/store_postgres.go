package report

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

//go:embed schema.sql
var schemaSQL string

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed report store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the exam_reports table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure report schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateReport(ctx context.Context, r ExamReport) (ExamReport, error) {
	if err := r.Validate(); err != nil {
		return ExamReport{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO exam_reports (student_id, subject, score, selected_path, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 RETURNING id::text, created_at`,
		r.StudentID,
		r.Subject,
		r.Score,
		nullIfEmpty(r.SelectedPath),
		createdAt,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return ExamReport{}, fmt.Errorf("insert report: %w", err)
	}

	return r, nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (ExamReport, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	r, err := scanReport(s.pool.QueryRow(ctx,
		`SELECT id::text, student_id, subject, score, selected_path, created_at
		 FROM exam_reports
		 WHERE id = $1::uuid`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ExamReport{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return ExamReport{}, fmt.Errorf("get report: %w", err)
	}

	return r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, studentID, subject string) ([]ExamReport, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, student_id, subject, score, selected_path, created_at
		 FROM exam_reports
		 WHERE student_id = $1
		   AND subject = $2
		 ORDER BY created_at ASC, id ASC`,
		studentID,
		subject,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []ExamReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, nil
}

// scanReport reads one exam_reports row; a NULL selected_path stays nil.
func scanReport(row pgx.Row) (ExamReport, error) {
	var r ExamReport
	var path []byte
	if err := row.Scan(&r.ID, &r.StudentID, &r.Subject, &r.Score, &path, &r.CreatedAt); err != nil {
		return ExamReport{}, err
	}
	r.SelectedPath = path
	return r, nil
}

func nullIfEmpty(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
