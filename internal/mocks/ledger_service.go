package mocks

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"github.com/stretchr/testify/mock"
)

type LedgerService struct {
	mock.Mock
}

func (m *LedgerService) Purchase(ctx context.Context, cmd service.PurchaseCommand) (service.LedgerResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.LedgerResult), args.Error(1)
}

func (m *LedgerService) Deduct(ctx context.Context, cmd service.DeductCommand) (service.LedgerResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.LedgerResult), args.Error(1)
}

func (m *LedgerService) Grant(ctx context.Context, cmd service.GrantCommand) (service.LedgerResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.LedgerResult), args.Error(1)
}

func (m *LedgerService) Refund(ctx context.Context, cmd service.RefundCommand) (service.LedgerResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.LedgerResult), args.Error(1)
}

func (m *LedgerService) GetBalance(ctx context.Context, caller service.Caller, orgID string) (service.BalanceResult, error) {
	args := m.Called(ctx, caller, orgID)
	return args.Get(0).(service.BalanceResult), args.Error(1)
}

func (m *LedgerService) GetHistory(ctx context.Context, query service.HistoryQuery) (service.HistoryResult, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(service.HistoryResult), args.Error(1)
}

func (m *LedgerService) Authorize(caller service.Caller, orgID string) error {
	args := m.Called(caller, orgID)
	return args.Error(0)
}

func (m *LedgerService) ResolvePackage(ctx context.Context, packageID string) (model.CreditPackage, error) {
	args := m.Called(ctx, packageID)
	return args.Get(0).(model.CreditPackage), args.Error(1)
}
