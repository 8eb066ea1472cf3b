package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func TestNewStore(t *testing.T) {
	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_SaveAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	fetched := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, f.store.Save(ctx, store.ReportSnapshot{
		Profile: "prod", ReportID: "00O1", ReportName: "Pipeline",
		Payload: []byte(`{"factMap": {}}`), FetchedAt: fetched,
	}))
	require.NoError(t, f.store.Save(ctx, store.ReportSnapshot{
		Profile: "prod", ReportID: "00O1", ReportName: "Pipeline v2",
		Payload: []byte(`{"factMap": {"T!T": {}}}`), FetchedAt: fetched.Add(time.Hour),
	}))

	got, err := f.store.Get(ctx, "prod", "00O1")
	require.NoError(t, err)
	assert.Equal(t, "Pipeline v2", got.ReportName)
	assert.JSONEq(t, `{"factMap": {"T!T": {}}}`, string(got.Payload))
	assert.True(t, fetched.Add(time.Hour).Equal(got.FetchedAt))

	_, err = f.store.Get(ctx, "sandbox", "00O1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := duckdb.InTransaction(ctx, f.db, func(ctx context.Context) error {
		for i, id := range []string{"00O1", "00O2"} {
			err := f.store.Save(ctx, store.ReportSnapshot{
				Profile: "prod", ReportID: id, Payload: []byte(`{}`), FetchedAt: base.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	snapshots, err := f.store.List(ctx, "prod")
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "00O2", snapshots[0].ReportID)
	assert.Nil(t, snapshots[0].Payload)
}

func TestStore_SaveValidation(t *testing.T) {
	f := setupFixture(t)
	err := f.store.Save(context.Background(), store.ReportSnapshot{ReportID: "00O1"})
	assert.Error(t, err)
}

func TestStore_SaveReplacesInTransaction(t *testing.T) {
	snap := store.ReportSnapshot{Profile: "prod", ReportID: "00O1", ReportName: "Pipeline", Payload: []byte(`{}`)}

	t.Run("own transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		s, err := NewStore(db)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM report_snapshots").
			WithArgs("prod", "00O1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO report_snapshots").
			WithArgs("prod", "00O1", "Pipeline", `{}`, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Save(context.Background(), snap))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins caller transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		s, err := NewStore(db)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM report_snapshots").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO report_snapshots").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = duckdb.InTransaction(context.Background(), db, func(ctx context.Context) error {
			return s.Save(ctx, snap)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		s, err := NewStore(db)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM report_snapshots").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO report_snapshots").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err = s.Save(context.Background(), snap)

		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_GetMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT report_name, payload, fetched_at").
		WithArgs("prod", "00O9").
		WillReturnRows(sqlmock.NewRows([]string{"report_name", "payload", "fetched_at"}))

	_, err = s.Get(context.Background(), "prod", "00O9")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
