package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/shaharishay14/service-tracker/internal/model"
)

// PostgresWriter persists service requests to PostgreSQL.
type PostgresWriter struct {
	db      *sql.DB
	withGeo bool
}

// NewPostgresWriter opens a connection, runs the schema migration, and
// returns a ready-to-use writer.
func NewPostgresWriter(dsn string, withGeo bool) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db, withGeo: withGeo}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS service_requests (
			id                    TEXT PRIMARY KEY,
			opened_at             TIMESTAMPTZ NOT NULL,
			responded_at          TIMESTAMPTZ NOT NULL,
			region                TEXT        NOT NULL,
			issue_type            TEXT        NOT NULL,
			status                VARCHAR(20) NOT NULL,
			response_time_minutes NUMERIC(10,2) NOT NULL,
			latitude              NUMERIC(9,6),
			longitude             NUMERIC(9,6)
		);

		CREATE INDEX IF NOT EXISTS idx_service_requests_region ON service_requests(region);
		CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status);
		CREATE INDEX IF NOT EXISTS idx_service_requests_opened ON service_requests(opened_at);
	`)
	return err
}

// Write batch-upserts the given requests.
func (pw *PostgresWriter) Write(rows []model.ServiceRequest) error {
	if len(rows) == 0 {
		return nil
	}
	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []model.ServiceRequest) error {
	const cols = 9
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))

		var lat, lon interface{}
		if pw.withGeo {
			lat, lon = r.Latitude, r.Longitude
		}
		valueArgs = append(valueArgs,
			r.ID, r.OpenedAt, r.RespondedAt, r.Region, r.IssueType,
			string(r.Status), r.ResponseTimeMinutes, lat, lon)
	}

	query := fmt.Sprintf(`
		INSERT INTO service_requests
			(id, opened_at, responded_at, region, issue_type, status, response_time_minutes, latitude, longitude)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
