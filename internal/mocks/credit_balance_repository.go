package mocks

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/stretchr/testify/mock"
)

type CreditBalanceRepository struct {
	mock.Mock
}

func (m *CreditBalanceRepository) Create(ctx context.Context, cb *model.CreditBalance) error {
	args := m.Called(ctx, cb)
	return args.Error(0)
}

func (m *CreditBalanceRepository) FindByOrgID(orgID string) (model.CreditBalance, error) {
	args := m.Called(orgID)
	return args.Get(0).(model.CreditBalance), args.Error(1)
}

func (m *CreditBalanceRepository) UpdateBalance(ctx context.Context, orgID string, expectedPrior, newBalance int64) error {
	args := m.Called(ctx, orgID, expectedPrior, newBalance)
	return args.Error(0)
}
