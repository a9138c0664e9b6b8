package model

import "time"

type CreditPackage struct {
	PackageID  string    `gorm:"column:package_id;primaryKey;type:varchar(64)"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Credits    int64     `gorm:"column:credits;not null"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
}

func (CreditPackage) TableName() string {
	return "credit_packages"
}
