package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/orbitsaas/credit-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestCreditTransactionRepository_Create(t *testing.T) {
	transaction := &model.CreditTransaction{
		OrgID:        testOrgID,
		TxType:       model.TxTypeDeduction,
		Amount:       -30,
		BalanceAfter: 70,
		Reference:    "op-1",
		CreatedAt:    time.Now(),
	}

	t.Run("appends a row", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditTransactionRepository(gdb)

		mock.ExpectExec("INSERT INTO `credit_transactions`").
			WillReturnResult(sqlmock.NewResult(41, 1))

		err := repo.Create(context.Background(), transaction)

		assert.NoError(t, err)
		assert.Equal(t, int64(41), transaction.TransactionID)
	})

	t.Run("duplicate reference maps to existed", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditTransactionRepository(gdb)

		mock.ExpectExec("INSERT INTO `credit_transactions`").
			WillReturnError(&driver.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), transaction)

		assert.ErrorIs(t, err, repository.ErrTransactionExisted)
	})
}

func TestCreditTransactionRepository_ListByOrgID(t *testing.T) {
	t.Run("limit clamped to the maximum page size", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := repository.NewCreditTransactionRepository(gdb)

		rows := sqlmock.NewRows([]string{"transaction_id", "org_id", "tx_type", "amount", "balance_after", "reference"}).
			AddRow(2, testOrgID, "DEDUCTION", -30, 70, "op-1").
			AddRow(1, testOrgID, "GRANT", 100, 100, "grant-1")

		mock.ExpectQuery("SELECT (.+) FROM `credit_transactions`").
			WithArgs(testOrgID, repository.MaxHistoryLimit).
			WillReturnRows(rows)

		txs, err := repo.ListByOrgID(testOrgID, 500, 0)

		assert.NoError(t, err)
		assert.Len(t, txs, 2)
		assert.Equal(t, int64(2), txs[0].TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
