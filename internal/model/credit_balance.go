package model

import "time"

type CreditBalance struct {
	OrgID     string    `gorm:"column:org_id;primaryKey;type:char(26)"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (CreditBalance) TableName() string {
	return "credit_balances"
}
