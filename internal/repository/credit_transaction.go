package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"gorm.io/gorm"
)

var (
	ErrTransactionExisted  = errors.New("TRANSACTION_EXISTED")
	ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
)

const (
	MaxHistoryLimit = 100
	MinHistoryLimit = 1
)

type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *model.CreditTransaction) error
	GetByReference(orgID string, txType model.TxType, reference string) (*model.CreditTransaction, error)
	GetByID(orgID string, transactionID int64) (*model.CreditTransaction, error)
	ListByOrgID(orgID string, limit, offset int) ([]model.CreditTransaction, error)
}

type creditTransaction struct {
	db *gorm.DB
}

func NewCreditTransactionRepository(db *gorm.DB) CreditTransactionRepository {
	return &creditTransaction{db: db}
}

// Create appends one row to the transaction log. The unique index on
// (org_id, tx_type, reference) is the storage-level idempotency guard:
// a duplicate insert comes back as ErrTransactionExisted and the caller
// decides whether that means "replay" or "rejected".
func (t *creditTransaction) Create(ctx context.Context, tx *model.CreditTransaction) error {
	db := GetTx(ctx, t.db)
	err := db.Create(tx).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrTransactionExisted
	}

	return err
}

func (t *creditTransaction) GetByReference(orgID string, txType model.TxType, reference string) (*model.CreditTransaction, error) {
	var tx model.CreditTransaction
	err := t.db.Where("org_id = ? AND tx_type = ? AND reference = ?", orgID, txType, reference).First(&tx).Error
	if err == nil {
		return &tx, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (t *creditTransaction) GetByID(orgID string, transactionID int64) (*model.CreditTransaction, error) {
	var tx model.CreditTransaction
	err := t.db.Where("org_id = ? AND transaction_id = ?", orgID, transactionID).First(&tx).Error
	if err == nil {
		return &tx, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

// ListByOrgID returns a most-recent-first page. Out-of-range offsets produce
// an empty page, never an error.
func (t *creditTransaction) ListByOrgID(orgID string, limit, offset int) ([]model.CreditTransaction, error) {
	if limit < MinHistoryLimit {
		limit = MinHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	var txs []model.CreditTransaction
	err := t.db.Where("org_id = ?", orgID).
		Order("transaction_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	return txs, nil
}
