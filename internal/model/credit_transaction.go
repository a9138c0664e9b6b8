package model

import "time"

type TxType string

const (
	TxTypePurchase   TxType = "PURCHASE"
	TxTypeDeduction  TxType = "DEDUCTION"
	TxTypeGrant      TxType = "GRANT"
	TxTypeRefund     TxType = "REFUND"
	TxTypeAdjustment TxType = "ADJUSTMENT"
)

// Amount is the signed delta applied to the balance; BalanceAfter is the
// balance snapshot once the delta is committed. Rows are written once and
// never mutated, so replaying deltas in insertion order reconstructs the
// current balance exactly.
type CreditTransaction struct {
	TransactionID int64     `gorm:"column:transaction_id;primaryKey;autoIncrement;<-:create"`
	OrgID         string    `gorm:"column:org_id;type:char(26);not null;uniqueIndex:uniq_org_type_reference;<-:create"`
	TxType        TxType    `gorm:"column:tx_type;type:varchar(20);not null;uniqueIndex:uniq_org_type_reference;<-:create"`
	Amount        int64     `gorm:"column:amount;not null;<-:create"`
	BalanceAfter  int64     `gorm:"column:balance_after;not null;<-:create"`
	Reference     string    `gorm:"column:reference;type:varchar(64);not null;uniqueIndex:uniq_org_type_reference;<-:create"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;<-:create"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
