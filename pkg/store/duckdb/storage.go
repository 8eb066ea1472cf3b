package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const DefaultDbPath = "report-atlas.db"

const ReportSnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS report_snapshots (
		profile VARCHAR NOT NULL,
		report_id VARCHAR NOT NULL,
		report_name VARCHAR,
		payload VARCHAR NOT NULL,
		fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile, report_id)
	);
`

var bootQueries = []string{
	ReportSnapshotsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		settings.DbPath = DefaultDbPath
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return fmt.Errorf("boot query: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
