package mocks

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/stretchr/testify/mock"
)

type CreditTransactionRepository struct {
	mock.Mock
}

func (m *CreditTransactionRepository) Create(ctx context.Context, tx *model.CreditTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *CreditTransactionRepository) GetByReference(orgID string, txType model.TxType, reference string) (*model.CreditTransaction, error) {
	args := m.Called(orgID, txType, reference)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.CreditTransaction), args.Error(1)
}

func (m *CreditTransactionRepository) GetByID(orgID string, transactionID int64) (*model.CreditTransaction, error) {
	args := m.Called(orgID, transactionID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.CreditTransaction), args.Error(1)
}

func (m *CreditTransactionRepository) ListByOrgID(orgID string, limit, offset int) ([]model.CreditTransaction, error) {
	args := m.Called(orgID, limit, offset)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]model.CreditTransaction), args.Error(1)
}
