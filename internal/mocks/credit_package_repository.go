package mocks

import (
	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/stretchr/testify/mock"
)

type CreditPackageRepository struct {
	mock.Mock
}

func (m *CreditPackageRepository) FindByID(packageID string) (model.CreditPackage, error) {
	args := m.Called(packageID)
	return args.Get(0).(model.CreditPackage), args.Error(1)
}
