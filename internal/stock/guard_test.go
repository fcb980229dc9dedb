package stock

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
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

func TestDecreaseGuardedUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)).
		WithArgs(3, int64(42), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, guard.Decrease(context.Background(), 42, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseInsufficientStock(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	// zero rows affected means the condition failed at write time
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)).
		WithArgs(10, int64(42), 10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := guard.Decrease(context.Background(), 42, 10)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(42), ise.ProductID)
	assert.Equal(t, 10, ise.Requested)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseRejectsNonPositiveDelta(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	err := guard.Decrease(context.Background(), 42, 0)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	err = guard.Decrease(context.Background(), 42, -5)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	// no statement may reach the database
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrease(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock + $1 WHERE id = $2`)).
		WithArgs(5, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, guard.Increase(context.Background(), 42, 5))

	// unknown product resolves to zero rows
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock + $1 WHERE id = $2`)).
		WithArgs(5, int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := guard.Increase(context.Background(), 999, 5)
	require.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetExact(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	err := guard.SetExact(context.Background(), 42, -1)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=$1 WHERE id = $2`)).
		WithArgs(0, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, guard.SetExact(context.Background(), 42, 0))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseWrapsStorageErrors(t *testing.T) {
	db, mock := newMockDB(t)
	guard := NewGuard(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1`)).
		WillReturnError(errors.New("connection reset"))

	err := guard.Decrease(context.Background(), 42, 1)
	require.Error(t, err)
	assert.True(t, common.IsPersistence(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
