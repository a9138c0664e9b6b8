package mocks

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/stretchr/testify/mock"
)

type DeductionFailureRepository struct {
	mock.Mock
}

func (m *DeductionFailureRepository) Create(ctx context.Context, failure *model.CreditDeductionFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}
