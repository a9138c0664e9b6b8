package repository

import (
	"errors"

	"github.com/orbitsaas/credit-ledger/internal/model"
	"gorm.io/gorm"
)

var ErrPackageNotFound = errors.New("PACKAGE_NOT_FOUND")

type CreditPackageRepository interface {
	FindByID(packageID string) (model.CreditPackage, error)
}

type creditPackage struct {
	db *gorm.DB
}

func NewCreditPackageRepository(db *gorm.DB) CreditPackageRepository {
	return &creditPackage{db: db}
}

func (r *creditPackage) FindByID(packageID string) (model.CreditPackage, error) {
	var pkg model.CreditPackage
	err := r.db.Where("package_id = ? AND active = ?", packageID, true).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CreditPackage{}, ErrPackageNotFound
		}
		return model.CreditPackage{}, err
	}
	return pkg, nil
}
