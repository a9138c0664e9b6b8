package publishers

import (
	"context"

	"github.com/orbitsaas/credit-ledger/pkg/mq"
	"go.uber.org/zap"
)

const ChargeQueue = "credits.charge"

// ChargeRequest is what the payment processor worker picks up. PaymentRef is
// generated per request and comes back on the confirmation, where it becomes
// the PURCHASE transaction's idempotency reference.
type ChargeRequest struct {
	OrganizationID string `json:"organization_id"`
	PackageID      string `json:"package_id"`
	AmountCents    int64  `json:"amount_cents"`
	PaymentRef     string `json:"payment_ref"`
}

type ChargePublisher interface {
	PublishCharge(ctx context.Context, charge ChargeRequest) error
}

type chargePublisher struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewChargePublisher(publisher mq.Publisher, logger *zap.Logger) ChargePublisher {
	return &chargePublisher{publisher: publisher, logger: logger}
}

func (p *chargePublisher) PublishCharge(ctx context.Context, charge ChargeRequest) error {
	if err := p.publisher.PublishJSON(ctx, "", ChargeQueue, charge); err != nil {
		p.logger.Error("Failed to publish charge request",
			zap.Error(err),
			zap.String("org_id", charge.OrganizationID),
			zap.String("payment_ref", charge.PaymentRef),
		)
		return err
	}

	p.logger.Info("Charge request published",
		zap.String("org_id", charge.OrganizationID),
		zap.String("package_id", charge.PackageID),
		zap.String("payment_ref", charge.PaymentRef),
	)

	return nil
}
