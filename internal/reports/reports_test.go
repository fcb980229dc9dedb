package reports

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stockapp/stockpos/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestPurgeSalesOlderThan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sale_items`)).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "sales"`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	purged, err := repo.PurgeSalesOlderThan(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeSalesRejectsNonPositiveYears(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	_, err := repo.PurgeSalesOlderThan(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevenueDefaultsToZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS revenue`).
		WillReturnRows(mock.NewRows([]string{"revenue"}).AddRow("0"))

	revenue, err := repo.Revenue(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsOverDailySeries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 3)
	mock.ExpectQuery(`SELECT DATE\(sale_date\) AS day`).
		WillReturnRows(mock.NewRows([]string{"day", "revenue"}).
			AddRow(from, "100.00").
			AddRow(from.AddDate(0, 0, 1), "200.00").
			AddRow(from.AddDate(0, 0, 2), "600.00"))

	st, err := repo.Stats(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Days)
	assert.InDelta(t, 300.0, st.Mean, 0.001)
	assert.InDelta(t, 200.0, st.Median, 0.001)
	assert.InDelta(t, 600.0, st.Max, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSalesCSV(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery(`SELECT id AS sale_id, sale_date, total_amount`).
		WillReturnRows(mock.NewRows([]string{"sale_id", "sale_date", "total_amount"}).
			AddRow(int64(1001), from.Add(10*time.Hour), "63.00"))

	var buf bytes.Buffer
	require.NoError(t, repo.ExportSalesCSV(context.Background(), &buf, from, to, 0))

	out := buf.String()
	assert.Contains(t, out, "sale_id")
	assert.Contains(t, out, "1001")
	assert.Contains(t, out, "63")
	require.NoError(t, mock.ExpectationsWereMet())
}
