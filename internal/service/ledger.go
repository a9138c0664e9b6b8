package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/orbitsaas/credit-ledger/internal/constants"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/orbitsaas/credit-ledger/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInsufficientBalance = errors.New("INSUFFICIENT_BALANCE")
	ErrConflictExhausted   = errors.New("balance conflict retries exhausted")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
	ErrMissingReference    = errors.New("operation reference is required")
	ErrUnknownPackage      = errors.New("unknown or inactive credit package")
	ErrNotRefundable       = errors.New("referenced transaction is not a deduction")
	ErrAlreadyRefunded     = errors.New("deduction has already been refunded")
	ErrForbidden           = errors.New("caller is not authorized for this organization")
)

type LedgerService interface {
	Purchase(ctx context.Context, cmd PurchaseCommand) (LedgerResult, error)
	Deduct(ctx context.Context, cmd DeductCommand) (LedgerResult, error)
	Grant(ctx context.Context, cmd GrantCommand) (LedgerResult, error)
	Refund(ctx context.Context, cmd RefundCommand) (LedgerResult, error)
	GetBalance(ctx context.Context, caller Caller, orgID string) (BalanceResult, error)
	GetHistory(ctx context.Context, query HistoryQuery) (HistoryResult, error)
	ResolvePackage(ctx context.Context, packageID string) (model.CreditPackage, error)
	Authorize(caller Caller, orgID string) error
}

type ledgerService struct {
	txManager           repository.TxManager
	balanceRepo         repository.CreditBalanceRepository
	transactionRepo     repository.CreditTransactionRepository
	failureRepo         repository.DeductionFailureRepository
	packageRepo         repository.CreditPackageRepository
	log                 *zap.Logger
	metrics             *metrics.Metrics
	maxConflictRetries  int
	defaultHistoryLimit int
}

func NewLedgerService(txManager repository.TxManager, balanceRepo repository.CreditBalanceRepository,
	transactionRepo repository.CreditTransactionRepository, failureRepo repository.DeductionFailureRepository,
	packageRepo repository.CreditPackageRepository, log *zap.Logger, metrics *metrics.Metrics,
	maxConflictRetries, defaultHistoryLimit int) LedgerService {
	if maxConflictRetries < 1 {
		maxConflictRetries = 3
	}
	if defaultHistoryLimit < 1 {
		defaultHistoryLimit = 20
	}
	return &ledgerService{txManager: txManager, balanceRepo: balanceRepo, transactionRepo: transactionRepo,
		failureRepo: failureRepo, packageRepo: packageRepo, log: log, metrics: metrics,
		maxConflictRetries: maxConflictRetries, defaultHistoryLimit: defaultHistoryLimit}
}

func (s *ledgerService) Purchase(ctx context.Context, cmd PurchaseCommand) (LedgerResult, error) {
	if err := s.authorize(cmd.Caller, cmd.OrgID, false); err != nil {
		return LedgerResult{}, err
	}

	pkg, err := s.ResolvePackage(ctx, cmd.PackageID)
	if err != nil {
		return LedgerResult{}, err
	}

	reference := cmd.PaymentRef
	if reference == "" {
		reference = cmd.PackageID
	}

	result, err := s.applyDelta(ctx, cmd.OrgID, pkg.Credits, model.TxTypePurchase, reference, true)
	if err != nil {
		return LedgerResult{}, err
	}

	s.log.Info("Credits purchased",
		zap.String("org_id", cmd.OrgID),
		zap.String("package_id", cmd.PackageID),
		zap.Int64("credits", pkg.Credits),
		zap.Int64("new_balance", result.NewBalance),
	)

	return result, nil
}

func (s *ledgerService) Deduct(ctx context.Context, cmd DeductCommand) (LedgerResult, error) {
	if err := s.authorize(cmd.Caller, cmd.OrgID, false); err != nil {
		return LedgerResult{}, err
	}

	if cmd.Amount <= 0 {
		s.recordFailure(ctx, cmd.OrgID, cmd.Amount, model.FailureInvalidRequest)
		return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrNonPositiveAmount)
	}

	if cmd.OperationRef == "" {
		s.recordFailure(ctx, cmd.OrgID, cmd.Amount, model.FailureInvalidRequest)
		return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrMissingReference)
	}

	result, err := s.applyDelta(ctx, cmd.OrgID, -cmd.Amount, model.TxTypeDeduction, cmd.OperationRef, true)
	if err == nil {
		s.log.Info("Credits deducted",
			zap.String("org_id", cmd.OrgID),
			zap.Int64("amount", cmd.Amount),
			zap.Int64("new_balance", result.NewBalance),
		)
		return result, nil
	}

	var serviceErr Error
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case constants.ErrCodeInsufficientBalance:
			s.recordFailure(ctx, cmd.OrgID, cmd.Amount, model.FailureInsufficientBalance)
		case constants.ErrCodeConcurrentConflict:
			s.recordFailure(ctx, cmd.OrgID, cmd.Amount, model.FailureConcurrentConflict)
		}
	}

	return LedgerResult{}, err
}

func (s *ledgerService) Grant(ctx context.Context, cmd GrantCommand) (LedgerResult, error) {
	if err := s.authorize(cmd.Caller, cmd.OrgID, true); err != nil {
		return LedgerResult{}, err
	}

	if cmd.Amount <= 0 {
		return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrNonPositiveAmount)
	}

	if cmd.GrantRef == "" {
		return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrMissingReference)
	}

	result, err := s.applyDelta(ctx, cmd.OrgID, cmd.Amount, model.TxTypeGrant, cmd.GrantRef, true)
	if err != nil {
		return LedgerResult{}, err
	}

	s.log.Info("Credits granted",
		zap.String("org_id", cmd.OrgID),
		zap.Int64("amount", cmd.Amount),
		zap.String("reason", cmd.Reason),
		zap.String("granted_by", cmd.Caller.OrgID),
		zap.Int64("new_balance", result.NewBalance),
	)

	return result, nil
}

func (s *ledgerService) Refund(ctx context.Context, cmd RefundCommand) (LedgerResult, error) {
	if err := s.authorize(cmd.Caller, cmd.OrgID, false); err != nil {
		return LedgerResult{}, err
	}

	original, err := s.transactionRepo.GetByID(cmd.OrgID, cmd.TransactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, err)
		}
		s.log.Error("error load transaction for refund", zap.Error(err))
		return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	if original.TxType != model.TxTypeDeduction {
		return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrNotRefundable)
	}

	// A deduction's delta is negative; the refund re-adds its magnitude. The
	// reference back to the original transaction id makes a second refund
	// collide on the log's uniqueness instead of double-crediting.
	reference := strconv.FormatInt(original.TransactionID, 10)
	result, err := s.applyDelta(ctx, cmd.OrgID, -original.Amount, model.TxTypeRefund, reference, false)
	if err != nil {
		return LedgerResult{}, err
	}

	s.log.Info("Deduction refunded",
		zap.String("org_id", cmd.OrgID),
		zap.Int64("original_transaction_id", original.TransactionID),
		zap.Int64("amount", -original.Amount),
		zap.Int64("new_balance", result.NewBalance),
	)

	return result, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, caller Caller, orgID string) (BalanceResult, error) {
	if err := s.authorize(caller, orgID, false); err != nil {
		return BalanceResult{}, err
	}

	start := time.Now()
	cb, err := s.balanceRepo.FindByOrgID(orgID)
	duration := time.Since(start)

	if err != nil {
		// No balance row yet means the organization never transacted and
		// reads as zero.
		if errors.Is(err, repository.ErrBalanceNotFound) {
			s.metrics.RecordBalanceRetrieval("success")
			return BalanceResult{OrgID: orgID, Balance: 0}, nil
		}

		s.log.Error("Failed to get organization balance",
			zap.String("org_id", orgID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		s.metrics.RecordBalanceRetrieval("error")
		s.metrics.RecordDBQuery("select", "credit_balances", "error", duration)
		return BalanceResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	s.metrics.RecordBalanceRetrieval("success")
	s.metrics.RecordDBQuery("select", "credit_balances", "success", duration)
	s.metrics.UpdateOrgBalance(orgID, cb.Balance)

	return BalanceResult{OrgID: cb.OrgID, Balance: cb.Balance, UpdatedAt: cb.UpdatedAt}, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, query HistoryQuery) (HistoryResult, error) {
	if err := s.authorize(query.Caller, query.OrgID, false); err != nil {
		return HistoryResult{}, err
	}

	limit := query.Limit
	if limit == 0 {
		limit = s.defaultHistoryLimit
	}

	txs, err := s.transactionRepo.ListByOrgID(query.OrgID, limit, query.Offset)
	if err != nil {
		s.log.Error("error list transactions", zap.String("org_id", query.OrgID), zap.Error(err))
		return HistoryResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	return HistoryResult{OrgID: query.OrgID, Transactions: txs}, nil
}

func (s *ledgerService) ResolvePackage(ctx context.Context, packageID string) (model.CreditPackage, error) {
	pkg, err := s.packageRepo.FindByID(packageID)
	if err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return model.CreditPackage{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrUnknownPackage)
		}
		s.log.Error("error resolve credit package", zap.String("package_id", packageID), zap.Error(err))
		return model.CreditPackage{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}
	return pkg, nil
}

// applyDelta runs the optimistic read-modify-write loop. Each attempt re-reads
// the balance, rejects negative results, and commits the new balance together
// with exactly one transaction row in a single database transaction. A
// conflicting writer rolls the unit back and the loop re-reads; duplicate
// references either replay the committed transaction (idempotent) or are
// rejected as invalid.
func (s *ledgerService) applyDelta(ctx context.Context, orgID string, delta int64, txType model.TxType,
	reference string, idempotent bool) (LedgerResult, error) {
	for attempt := 0; attempt < s.maxConflictRetries; attempt++ {
		prior, found, err := s.readBalance(orgID)
		if err != nil {
			return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
		}

		next := prior + delta
		if next < 0 {
			// A retried operation whose first attempt committed may meet the
			// very balance that commit drained; the committed row wins over
			// the precheck.
			existing, refErr := s.transactionRepo.GetByReference(orgID, txType, reference)
			if refErr == nil {
				if !idempotent {
					return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrAlreadyRefunded)
				}

				s.log.Info("Idempotent request, transaction already exists",
					zap.String("org_id", orgID),
					zap.String("tx_type", string(txType)),
					zap.String("reference", reference),
				)

				return LedgerResult{
					OrgID:           orgID,
					NewBalance:      prior,
					TransactionID:   existing.TransactionID,
					TransactionTime: existing.CreatedAt,
				}, nil
			}
			if !errors.Is(refErr, repository.ErrTransactionNotFound) {
				return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, refErr)
			}

			return LedgerResult{}, NewServiceError(constants.ErrCodeInsufficientBalance, ErrInsufficientBalance)
		}

		transaction := model.CreditTransaction{
			OrgID:        orgID,
			TxType:       txType,
			Amount:       delta,
			BalanceAfter: next,
			Reference:    reference,
			CreatedAt:    time.Now(),
		}

		err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
			if !found {
				cb := model.CreditBalance{OrgID: orgID, Balance: next, CreatedAt: time.Now(), UpdatedAt: time.Now()}
				if err := s.balanceRepo.Create(ctx, &cb); err != nil {
					return err
				}
			} else {
				if err := s.balanceRepo.UpdateBalance(ctx, orgID, prior, next); err != nil {
					return err
				}
			}

			return s.transactionRepo.Create(ctx, &transaction)
		})

		if err == nil {
			s.metrics.RecordTransactionCreated(string(txType))
			s.metrics.UpdateOrgBalance(orgID, next)
			return LedgerResult{
				OrgID:           orgID,
				NewBalance:      next,
				TransactionID:   transaction.TransactionID,
				TransactionTime: transaction.CreatedAt,
			}, nil
		}

		if errors.Is(err, repository.ErrBalanceConflict) || errors.Is(err, repository.ErrBalanceExists) {
			s.metrics.RecordConflictRetry()
			s.log.Debug("balance write conflict, retrying",
				zap.String("org_id", orgID),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if errors.Is(err, repository.ErrTransactionExisted) {
			if !idempotent {
				return LedgerResult{}, NewServiceError(constants.ErrCodeInvalidRequest, ErrAlreadyRefunded)
			}
			return s.replayExisting(orgID, txType, reference)
		}

		s.log.Error("error apply balance delta", zap.String("org_id", orgID), zap.Error(err))
		return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	s.log.Warn("balance conflict retries exhausted",
		zap.String("org_id", orgID),
		zap.Int("attempts", s.maxConflictRetries),
	)

	return LedgerResult{}, NewServiceError(constants.ErrCodeConcurrentConflict, ErrConflictExhausted)
}

func (s *ledgerService) readBalance(orgID string) (int64, bool, error) {
	cb, err := s.balanceRepo.FindByOrgID(orgID)
	if err == nil {
		return cb.Balance, true, nil
	}

	if errors.Is(err, repository.ErrBalanceNotFound) {
		return 0, false, nil
	}

	s.log.Error("error read balance", zap.String("org_id", orgID), zap.Error(err))
	return 0, false, err
}

// replayExisting resolves the deliberate idempotent-duplicate case: the
// reference already committed, so the original transaction is returned as
// success instead of an error.
func (s *ledgerService) replayExisting(orgID string, txType model.TxType, reference string) (LedgerResult, error) {
	existing, err := s.transactionRepo.GetByReference(orgID, txType, reference)
	if err != nil {
		s.log.Error("error get transaction by reference", zap.Error(err))
		return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	balance, _, err := s.readBalance(orgID)
	if err != nil {
		return LedgerResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	s.log.Info("Idempotent request, transaction already exists",
		zap.String("org_id", orgID),
		zap.String("tx_type", string(txType)),
		zap.String("reference", reference),
	)

	return LedgerResult{
		OrgID:           orgID,
		NewBalance:      balance,
		TransactionID:   existing.TransactionID,
		TransactionTime: existing.CreatedAt,
	}, nil
}

// recordFailure writes the audit row outside the (rolled back) unit of work
// so a failed deduction still leaves its trace.
func (s *ledgerService) recordFailure(ctx context.Context, orgID string, amount int64, reason model.FailureReason) {
	failure := model.CreditDeductionFailure{
		OrgID:           orgID,
		AttemptedAmount: amount,
		Reason:          reason,
		CreatedAt:       time.Now(),
	}

	if err := s.failureRepo.Create(ctx, &failure); err != nil {
		s.log.Error("error record deduction failure",
			zap.String("org_id", orgID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return
	}

	s.metrics.RecordDeductionFailure(string(reason))
}

// Authorize reports whether caller may act on orgID's ledger. Exposed for
// boundary checks that run before any ledger operation, like the purchase
// path that only publishes a charge request.
func (s *ledgerService) Authorize(caller Caller, orgID string) error {
	return s.authorize(caller, orgID, false)
}

func (s *ledgerService) authorize(caller Caller, orgID string, needAdmin bool) error {
	if caller.Role == RoleAdmin {
		return nil
	}

	if needAdmin || caller.OrgID != orgID {
		return NewServiceError(constants.ErrCodeForbidden, ErrForbidden)
	}

	return nil
}
