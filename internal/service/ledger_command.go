package service

import (
	"time"

	"github.com/orbitsaas/credit-ledger/internal/model"
)

// Caller is the authenticated identity forwarded by the upstream gateway.
// Ledger operations never read ambient request state; authorization is
// decided from these fields alone.
type Caller struct {
	OrgID string
	Role  string
}

const RoleAdmin = "admin"

type PurchaseCommand struct {
	Caller     Caller
	OrgID      string
	PackageID  string
	PaymentRef string
}

type DeductCommand struct {
	Caller       Caller
	OrgID        string
	Amount       int64
	OperationRef string
}

type GrantCommand struct {
	Caller   Caller
	OrgID    string
	Amount   int64
	Reason   string
	GrantRef string
}

type RefundCommand struct {
	Caller        Caller
	OrgID         string
	TransactionID int64
}

type HistoryQuery struct {
	Caller Caller
	OrgID  string
	Limit  int
	Offset int
}

type LedgerResult struct {
	OrgID           string    `json:"org_id"`
	NewBalance      int64     `json:"new_balance"`
	TransactionID   int64     `json:"transaction_id"`
	TransactionTime time.Time `json:"transaction_time"`
}

type BalanceResult struct {
	OrgID     string    `json:"org_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HistoryResult struct {
	OrgID        string                    `json:"org_id"`
	Transactions []model.CreditTransaction `json:"transactions"`
}
