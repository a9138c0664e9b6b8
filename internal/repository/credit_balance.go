package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"gorm.io/gorm"
)

var (
	ErrBalanceNotFound = errors.New("BALANCE_NOT_FOUND")
	ErrBalanceExists   = errors.New("BALANCE_EXISTED")
	ErrBalanceConflict = errors.New("BALANCE_CONFLICT")
)

type CreditBalanceRepository interface {
	Create(ctx context.Context, cb *model.CreditBalance) error
	FindByOrgID(orgID string) (model.CreditBalance, error)
	UpdateBalance(ctx context.Context, orgID string, expectedPrior, newBalance int64) error
}

type creditBalance struct {
	db *gorm.DB
}

func NewCreditBalanceRepository(db *gorm.DB) CreditBalanceRepository {
	return &creditBalance{db: db}
}

func (r *creditBalance) Create(ctx context.Context, cb *model.CreditBalance) error {
	db := GetTx(ctx, r.db)
	err := db.Create(cb).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrBalanceExists
	}

	return err
}

func (r *creditBalance) FindByOrgID(orgID string) (model.CreditBalance, error) {
	var cb model.CreditBalance
	if err := r.db.Where("org_id = ?", orgID).First(&cb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CreditBalance{}, ErrBalanceNotFound
		}
		return model.CreditBalance{}, err
	}
	return cb, nil
}

// UpdateBalance is a compare-and-set on the stored balance. The expected
// prior balance is the optimistic-concurrency token: when another writer got
// there first the predicate matches no row and the caller must re-read.
func (r *creditBalance) UpdateBalance(ctx context.Context, orgID string, expectedPrior, newBalance int64) error {
	db := GetTx(ctx, r.db)
	res := db.Model(&model.CreditBalance{}).
		Where("org_id = ? AND balance = ?", orgID, expectedPrior).
		Updates(map[string]interface{}{"balance": newBalance, "updated_at": time.Now()})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrBalanceConflict
	}

	return nil
}
