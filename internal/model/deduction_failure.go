package model

import "time"

type FailureReason string

const (
	FailureInsufficientBalance FailureReason = "INSUFFICIENT_BALANCE"
	FailureConcurrentConflict  FailureReason = "CONCURRENT_CONFLICT"
	FailureInvalidRequest      FailureReason = "INVALID_REQUEST"
)

// CreditDeductionFailure is an audit record for deductions that never
// committed. It never participates in balance computation.
type CreditDeductionFailure struct {
	FailureID       int64         `gorm:"column:failure_id;primaryKey;autoIncrement;<-:create"`
	OrgID           string        `gorm:"column:org_id;type:char(26);not null;index;<-:create"`
	AttemptedAmount int64         `gorm:"column:attempted_amount;not null;<-:create"`
	Reason          FailureReason `gorm:"column:reason;type:enum('INSUFFICIENT_BALANCE','CONCURRENT_CONFLICT','INVALID_REQUEST');not null;<-:create"`
	CreatedAt       time.Time     `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;<-:create"`
}

func (CreditDeductionFailure) TableName() string {
	return "credit_deduction_failures"
}
