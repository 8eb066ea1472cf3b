package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps the last raw run result of each report per profile.
type Store interface {
	Save(ctx context.Context, snapshot store.ReportSnapshot) error
	Get(ctx context.Context, profile, reportID string) (*store.ReportSnapshot, error)
	List(ctx context.Context, profile string) ([]store.ReportSnapshot, error)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

func (s *snapshotStore) conn(ctx context.Context) execQuerier {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *snapshotStore) Save(ctx context.Context, snapshot store.ReportSnapshot) error {
	if snapshot.Profile == "" || snapshot.ReportID == "" {
		return fmt.Errorf("snapshot requires profile and report id")
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC()
	}

	// One snapshot per report: the old row goes in the same transaction.
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := s.conn(ctx)
		if _, err := conn.ExecContext(ctx, `
			DELETE FROM report_snapshots
			WHERE profile = ? AND report_id = ?`,
			snapshot.Profile, snapshot.ReportID,
		); err != nil {
			return fmt.Errorf("replace snapshot: %w", err)
		}

		if _, err := conn.ExecContext(ctx, `
			INSERT INTO report_snapshots (profile, report_id, report_name, payload, fetched_at)
			VALUES (?, ?, ?, ?, ?)`,
			snapshot.Profile,
			snapshot.ReportID,
			snapshot.ReportName,
			string(snapshot.Payload),
			snapshot.FetchedAt,
		); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		return nil
	})
}

func (s *snapshotStore) Get(ctx context.Context, profile, reportID string) (*store.ReportSnapshot, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT report_name, payload, fetched_at
		FROM report_snapshots
		WHERE profile = ? AND report_id = ?`,
		profile, reportID,
	)

	snapshot := store.ReportSnapshot{Profile: profile, ReportID: reportID}
	var name sql.NullString
	var payload string
	if err := row.Scan(&name, &payload, &snapshot.FetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, profile, reportID)
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snapshot.ReportName = name.String
	snapshot.Payload = []byte(payload)
	return &snapshot, nil
}

// List returns the profile's snapshots without payloads, newest first.
func (s *snapshotStore) List(ctx context.Context, profile string) ([]store.ReportSnapshot, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT report_id, report_name, fetched_at
		FROM report_snapshots
		WHERE profile = ?
		ORDER BY fetched_at DESC, report_id`,
		profile,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []store.ReportSnapshot
	for rows.Next() {
		snapshot := store.ReportSnapshot{Profile: profile}
		var name sql.NullString
		if err := rows.Scan(&snapshot.ReportID, &name, &snapshot.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshot.ReportName = name.String
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}
