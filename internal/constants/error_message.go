package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeConcurrentConflict  = "CONCURRENT_CONFLICT"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeOperationFailed     = "OPERATION_FAILED"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

const (
	ErrMsgInsufficientBalance = "not enough credits"
	ErrMsgConcurrentConflict  = "balance was modified concurrently, retry the operation"
	ErrMsgInvalidRequest      = "invalid request"
	ErrMsgForbidden           = "caller is not allowed to operate on this organization"
	ErrMsgOperationFailed     = "operation failed"
)

const (
	BalanceRetrieved  = "balance retrieved successfully"
	HistoryRetrieved  = "transactions retrieved successfully"
	PurchaseAccepted  = "purchase accepted, credits will be added once payment is confirmed"
	CreditsDeducted   = "credits deducted successfully"
	CreditsGranted    = "credits granted successfully"
	DeductionRefunded = "deduction refunded successfully"
)

var errorMessages = map[string]string{
	ErrCodeInsufficientBalance: ErrMsgInsufficientBalance,
	ErrCodeConcurrentConflict:  ErrMsgConcurrentConflict,
	ErrCodeInvalidRequest:      ErrMsgInvalidRequest,
	ErrCodeForbidden:           ErrMsgForbidden,
	ErrCodeOperationFailed:     ErrMsgOperationFailed,
}

func GetErrorMessage(code string) string {
	msg, exists := errorMessages[code]
	if !exists {
		return ""
	}
	return msg
}
