package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orbitsaas/credit-ledger/internal/api/contract"
	"github.com/orbitsaas/credit-ledger/internal/api/validator"
	"github.com/orbitsaas/credit-ledger/internal/constants"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/publishers"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"go.uber.org/zap"
)

const (
	headerOrgID = "X-Org-ID"
	headerRole  = "X-Org-Role"
)

type Handler struct {
	logger        *zap.Logger
	ledgerService service.LedgerService
	charges       publishers.ChargePublisher
	XValidator    validator.IXValidator
	metrics       *metrics.Metrics
}

func NewHandler(logger *zap.Logger, ledgerService service.LedgerService, charges publishers.ChargePublisher,
	XValidator validator.IXValidator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:        logger,
		ledgerService: ledgerService,
		charges:       charges,
		XValidator:    XValidator,
		metrics:       metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// caller identity is resolved by the upstream gateway and forwarded as
// headers; the ledger never trusts the request body for it.
func callerFrom(c *fiber.Ctx) service.Caller {
	return service.Caller{
		OrgID: c.Get(headerOrgID),
		Role:  c.Get(headerRole),
	}
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	var handlerRequest GetBalanceRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	balance, err := h.ledgerService.GetBalance(c.UserContext(), callerFrom(c), handlerRequest.OrganizationID)
	if err != nil {
		return err
	}

	return c.JSON(contract.Ok(constants.BalanceRetrieved, balance))
}

func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	var handlerRequest GetTransactionsRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	query := service.HistoryQuery{
		Caller: callerFrom(c),
		OrgID:  handlerRequest.OrganizationID,
		Limit:  handlerRequest.Limit,
		Offset: handlerRequest.Offset,
	}

	history, err := h.ledgerService.GetHistory(c.UserContext(), query)
	if err != nil {
		return err
	}

	return c.JSON(contract.Ok(constants.HistoryRetrieved, history))
}

// Purchase does not credit anything directly: it validates the package,
// hands a charge request to the payment processor queue and reports the
// payment reference back. Credits land once the confirmation returns through
// the payment worker.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest PurchaseRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	if err := h.ledgerService.Authorize(callerFrom(c), handlerRequest.OrganizationID); err != nil {
		return err
	}

	pkg, err := h.ledgerService.ResolvePackage(c.UserContext(), handlerRequest.PackageID)
	if err != nil {
		return err
	}

	charge := publishers.ChargeRequest{
		OrganizationID: handlerRequest.OrganizationID,
		PackageID:      pkg.PackageID,
		AmountCents:    pkg.PriceCents,
		PaymentRef:     uuid.NewString(),
	}

	if err := h.charges.PublishCharge(c.UserContext(), charge); err != nil {
		h.logger.Error("Failed to publish charge request",
			zap.String("org_id", handlerRequest.OrganizationID),
			zap.String("package_id", handlerRequest.PackageID),
			zap.Error(err),
		)
		return service.NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	h.logger.Info("Charge request accepted",
		zap.String("org_id", handlerRequest.OrganizationID),
		zap.String("package_id", handlerRequest.PackageID),
		zap.String("payment_ref", charge.PaymentRef),
		zap.Duration("duration", time.Since(start)),
	)

	return c.Status(fiber.StatusAccepted).JSON(contract.Ok(constants.PurchaseAccepted, charge))
}

func (h *Handler) Deduct(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest DeductRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.DeductCommand{
		Caller:       callerFrom(c),
		OrgID:        handlerRequest.OrganizationID,
		Amount:       handlerRequest.Amount,
		OperationRef: handlerRequest.OperationRef,
	}

	result, err := h.ledgerService.Deduct(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.logger.Info("Credits deducted",
		zap.String("org_id", cmd.OrgID),
		zap.Int64("amount", cmd.Amount),
		zap.Duration("duration", time.Since(start)),
	)

	return c.JSON(contract.Ok(constants.CreditsDeducted, result))
}

func (h *Handler) Grant(c *fiber.Ctx) error {
	var handlerRequest GrantRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.GrantCommand{
		Caller:   callerFrom(c),
		OrgID:    handlerRequest.OrganizationID,
		Amount:   handlerRequest.Amount,
		Reason:   handlerRequest.Reason,
		GrantRef: handlerRequest.GrantRef,
	}

	result, err := h.ledgerService.Grant(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(contract.Ok(constants.CreditsGranted, result))
}

func (h *Handler) Refund(c *fiber.Ctx) error {
	var handlerRequest RefundRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.RefundCommand{
		Caller:        callerFrom(c),
		OrgID:         handlerRequest.OrganizationID,
		TransactionID: handlerRequest.TransactionID,
	}

	result, err := h.ledgerService.Refund(c.UserContext(), cmd)
	if err != nil {
		h.logger.Error("Error refunding deduction", zap.Error(err))
		return err
	}

	return c.JSON(contract.Ok(constants.DeductionRefunded, result))
}
