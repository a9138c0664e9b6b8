package repository

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"gorm.io/gorm"
)

type DeductionFailureRepository interface {
	Create(ctx context.Context, failure *model.CreditDeductionFailure) error
}

type deductionFailure struct {
	db *gorm.DB
}

func NewDeductionFailureRepository(db *gorm.DB) DeductionFailureRepository {
	return &deductionFailure{db: db}
}

func (r *deductionFailure) Create(ctx context.Context, failure *model.CreditDeductionFailure) error {
	db := GetTx(ctx, r.db)
	return db.Create(failure).Error
}
