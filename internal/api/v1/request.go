package v1

type GetBalanceRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
}

type GetTransactionsRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset         int    `json:"offset" validate:"omitempty,min=0"`
}

type PurchaseRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
	PackageID      string `json:"package_id" validate:"required,max=64"`
}

type DeductRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
	Amount         int64  `json:"amount" validate:"required,min=1"`
	OperationRef   string `json:"operation_ref" validate:"required,max=64"`
}

type GrantRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
	Amount         int64  `json:"amount" validate:"required,min=1"`
	Reason         string `json:"reason" validate:"required,max=255"`
	GrantRef       string `json:"grant_ref" validate:"required,max=64"`
}

type RefundRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,orgid"`
	TransactionID  int64  `json:"transaction_id" validate:"required,min=1"`
}
