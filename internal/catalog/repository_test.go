package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/asaskevich/EventBus"
	"github.com/stockapp/stockpos/internal/domain"
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

func categoryRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "name"})
}

func TestDeleteProductBlockedBySaleHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormProductRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sale_items"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrProductHasSales)
	// the delete statement must never be issued
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductWithoutHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormProductRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sale_items"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithReassignmentMovesProductsFirst(t *testing.T) {
	db, mock := newMockDB(t)
	bus := EventBus.New()
	repo := NewGormCategoryRepository(db, bus)

	changed := false
	require.NoError(t, bus.Subscribe(TopicCategoryChanged, func() { changed = true }))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(categoryRows(mock).AddRow(int64(7), "Snacks"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(categoryRows(mock).AddRow(int64(1), domain.FallbackCategoryName))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "category_id"=$1 WHERE category_id = $2`)).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithReassignment(context.Background(), 7, 1))
	assert.True(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithReassignmentProtectsFallback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormCategoryRepository(db, nil)

	// deleting into itself is refused before any query
	err := repo.DeleteWithReassignment(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrFallbackCategoryProtected)

	// the fallback category itself cannot be the delete target
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(categoryRows(mock).AddRow(int64(1), domain.FallbackCategoryName))

	err = repo.DeleteWithReassignment(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrFallbackCategoryProtected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithReassignmentRequiresExistingFallback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormCategoryRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(categoryRows(mock).AddRow(int64(7), "Snacks"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(categoryRows(mock))

	err := repo.DeleteWithReassignment(context.Background(), 7, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
