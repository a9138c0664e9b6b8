package consumers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/orbitsaas/credit-ledger/internal/config"
	"github.com/orbitsaas/credit-ledger/internal/constants"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"github.com/orbitsaas/credit-ledger/pkg/mq"
	"go.uber.org/zap"
)

const PaymentQueue = "credits.payment"

const PaymentStatusSucceeded = "succeeded"

// PaymentConfirmation is the processor's callback message for a charge
// request previously published on credits.charge.
type PaymentConfirmation struct {
	OrganizationID string `json:"organization_id"`
	PackageID      string `json:"package_id"`
	PaymentRef     string `json:"payment_ref"`
	Status         string `json:"status"`
}

type PaymentConsumer interface {
	Consume(ctx context.Context) error
}

type paymentConsumer struct {
	service  service.LedgerService
	consumer mq.Consumer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	prefetch int
}

func NewPaymentConsumer(cfg *config.Config, service service.LedgerService, consumer mq.Consumer,
	metrics *metrics.Metrics, logger *zap.Logger) PaymentConsumer {
	return &paymentConsumer{service: service, consumer: consumer, metrics: metrics, logger: logger,
		prefetch: cfg.RabbitMQ.Prefetch}
}

func (p *paymentConsumer) Consume(ctx context.Context) error {
	return p.consumer.Consume(ctx, p.prefetch, PaymentQueue, p.handleMessage)
}

func (p *paymentConsumer) handleMessage(ctx context.Context, body []byte) error {
	p.logger.Info("received payment confirmation", zap.ByteString("body", body))

	var confirmation PaymentConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		p.logger.Warn("invalid payment confirmation", zap.Error(err))
		p.metrics.RecordPaymentConsumed("invalid")
		return err
	}

	if confirmation.Status != PaymentStatusSucceeded {
		p.logger.Info("payment not succeeded, nothing to credit",
			zap.String("org_id", confirmation.OrganizationID),
			zap.String("payment_ref", confirmation.PaymentRef),
			zap.String("status", confirmation.Status),
		)
		p.metrics.RecordPaymentConsumed(confirmation.Status)
		return nil
	}

	cmd := service.PurchaseCommand{
		// the worker acts on behalf of the payment processor, so it
		// carries the admin role rather than an organization identity.
		Caller:     service.Caller{Role: service.RoleAdmin},
		OrgID:      confirmation.OrganizationID,
		PackageID:  confirmation.PackageID,
		PaymentRef: confirmation.PaymentRef,
	}

	_, err := p.service.Purchase(ctx, cmd)
	if err == nil {
		p.metrics.RecordPaymentConsumed("credited")
		return nil
	}

	var serviceErr service.Error
	if errors.As(err, &serviceErr) && serviceErr.Code == constants.ErrCodeOperationFailed {
		// storage unavailability is the only retryable failure; requeue.
		p.metrics.RecordPaymentConsumed("retry")
		return mq.Temporary(err)
	}

	p.logger.Error("payment confirmation rejected",
		zap.String("org_id", confirmation.OrganizationID),
		zap.String("payment_ref", confirmation.PaymentRef),
		zap.Error(err),
	)
	p.metrics.RecordPaymentConsumed("rejected")

	return err
}
