package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/orbitsaas/credit-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const testOrgID = "01J9ZX3M5K8Q2W4R6T8V0Y2C4E"

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return gdb, mock
}

func TestCreditBalanceRepository_UpdateBalance(t *testing.T) {
	t.Run("compare-and-set succeeds when prior balance matches", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditBalanceRepository(gdb)

		mock.ExpectExec("UPDATE `credit_balances`").
			WithArgs(int64(70), sqlmock.AnyArg(), testOrgID, int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateBalance(context.Background(), testOrgID, 100, 70)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale prior balance reports a conflict", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditBalanceRepository(gdb)

		mock.ExpectExec("UPDATE `credit_balances`").
			WithArgs(int64(70), sqlmock.AnyArg(), testOrgID, int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateBalance(context.Background(), testOrgID, 100, 70)

		assert.ErrorIs(t, err, repository.ErrBalanceConflict)
	})
}

func TestCreditBalanceRepository_FindByOrgID(t *testing.T) {
	t.Run("missing row maps to not found", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditBalanceRepository(gdb)

		mock.ExpectQuery("SELECT (.+) FROM `credit_balances`").
			WithArgs(testOrgID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"org_id", "balance"}))

		_, err := repo.FindByOrgID(testOrgID)

		assert.ErrorIs(t, err, repository.ErrBalanceNotFound)
	})
}

func TestCreditBalanceRepository_Create(t *testing.T) {
	t.Run("duplicate row maps to already exists", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditBalanceRepository(gdb)

		mock.ExpectExec("INSERT INTO `credit_balances`").
			WillReturnError(&driver.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), &model.CreditBalance{OrgID: testOrgID, Balance: 100})

		assert.ErrorIs(t, err, repository.ErrBalanceExists)
	})
}
