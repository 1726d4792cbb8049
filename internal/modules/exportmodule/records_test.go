package exportmodule

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/apperrors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db, mock
}

func TestListRecordsFiltersBySession(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "title", "file_size", "compressed", "step_count", "status", "created_at"}).
		AddRow("rec-2", "sess-1", "take two", int64(2048), true, 3, "completed", now).
		AddRow("rec-1", "sess-1", "take one", int64(4096), false, 1, "failed", now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT \* FROM "export_records" WHERE session_id = .+ ORDER BY created_at desc`).
		WithArgs("sess-1").
		WillReturnRows(rows)

	records, err := ListRecords(db, "sess-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-2", records[0].ID)
	assert.Equal(t, "completed", records[0].Status)
	assert.True(t, records[0].Compressed)
	assert.Equal(t, "failed", records[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecordsQueryFailureWrapsDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "export_records"`).
		WillReturnError(errors.New("connection reset"))

	records, err := ListRecords(db, "")
	require.Error(t, err)
	assert.Nil(t, records)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DATABASE_ERROR", appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
