package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/account"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/dashboard"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/snapshot"
	"github.com/de-tools/report-atlas/pkg/store/s3"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Setting keys shared by the root flags and the environment.
const (
	KeyProfile     = "profile"
	KeyConfig      = "config"
	KeyCredentials = "credentials"
	KeyDB          = "db"
	KeyS3Bucket    = "s3-bucket"
	KeyS3Prefix    = "s3-prefix"
	KeyLogLevel    = "log-level"
)

// JSONReporter prints raw documents and plain values.
type JSONReporter interface {
	Raw(doc []byte) error
	Value(v any) error
}

// Uploader publishes a file and returns where it went.
type Uploader interface {
	Upload(ctx context.Context, file *store.File, metadata map[string]string) (string, error)
}

// Env carries what commands share. Profiles, clients, the snapshot database
// and the uploader are resolved on first use so that offline commands such as
// report parse never need credentials.
type Env struct {
	Settings *viper.Viper
	Tables   *export.Reporter
	JSON     JSONReporter
	Out      io.Writer

	// Explorer and NewUploader replace the defaults built from settings.
	Explorer    account.Explorer
	NewUploader func(ctx context.Context, bucket, prefix string) (Uploader, error)

	db *sql.DB
}

func (e *Env) Profile() string {
	return e.Settings.GetString(KeyProfile)
}

func (e *Env) explorer() (account.Explorer, error) {
	if e.Explorer != nil {
		return e.Explorer, nil
	}
	registry, err := e.registry()
	if err != nil {
		return nil, err
	}
	e.Explorer = account.NewExplorer(registry, nil)
	return e.Explorer, nil
}

func (e *Env) registry() (config.Registry, error) {
	return config.Discover(e.Settings.GetString(KeyConfig), e.Settings.GetString(KeyCredentials))
}

// Reports builds the report service. With cache set the snapshot database is
// opened as well.
func (e *Env) Reports(cache bool) (*report.Service, error) {
	explorer, err := e.explorer()
	if err != nil {
		return nil, err
	}
	if !cache {
		return report.NewService(explorer, nil), nil
	}

	snapshots, err := e.snapshots()
	if err != nil {
		return nil, err
	}
	return report.NewService(explorer, snapshots), nil
}

func (e *Env) Dashboards() (*dashboard.Service, error) {
	explorer, err := e.explorer()
	if err != nil {
		return nil, err
	}
	return dashboard.NewService(explorer), nil
}

func (e *Env) Profiles() (account.Explorer, error) {
	return e.explorer()
}

func (e *Env) snapshots() (snapshot.Store, error) {
	if e.db == nil {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: e.Settings.GetString(KeyDB)})
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot database: %w", err)
		}
		e.db = db
	}
	return snapshot.NewStore(e.db)
}

// Save writes file into dir and, when an S3 bucket is configured, uploads it.
// It returns the locations the file was written to.
func (e *Env) Save(ctx context.Context, file *store.File, dir string, metadata map[string]string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Int("bytes", len(file.Content)).Msg("file written")
	locations := []string{path}

	bucket := e.Settings.GetString(KeyS3Bucket)
	if bucket == "" {
		return locations, nil
	}

	newUploader := e.NewUploader
	if newUploader == nil {
		newUploader = func(ctx context.Context, bucket, prefix string) (Uploader, error) {
			return s3.NewUploaderFromEnv(ctx, bucket, prefix)
		}
	}
	uploader, err := newUploader(ctx, bucket, e.Settings.GetString(KeyS3Prefix))
	if err != nil {
		return locations, fmt.Errorf("failed to configure s3 upload: %w", err)
	}
	uri, err := uploader.Upload(ctx, file, metadata)
	if err != nil {
		return locations, err
	}
	return append(locations, uri), nil
}

func (e *Env) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
