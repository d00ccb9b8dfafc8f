package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"goeffect/domain/core"
	"goeffect/domain/report"
)

// ReportRepository persists standardization reports as JSON payloads keyed by
// report ID, so standardized magnitudes can be compared across runs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Migrate creates the backing table if it does not exist.
func (r *ReportRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS standardization_reports (
			id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL DEFAULT '',
			method TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create standardization_reports table: %w", err)
	}
	return nil
}

// Save inserts a report.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO standardization_reports (id, dataset, method, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query,
		rep.ID.String(),
		rep.Dataset,
		string(rep.Request.Method),
		payload,
		rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// Get loads a report by ID.
func (r *ReportRepository) Get(ctx context.Context, id core.ReportID) (*report.Report, error) {
	query := `SELECT payload FROM standardization_reports WHERE id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &rep, nil
}

// ListRecent loads the most recently created reports.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]report.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT payload FROM standardization_reports
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []report.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		var rep report.Report
		if err := json.Unmarshal(payload, &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report row: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Purge deletes reports older than the cutoff. Retention is an operational
// concern; nothing in the core depends on it.
func (r *ReportRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM standardization_reports WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reports: %w", err)
	}
	return res.RowsAffected()
}
