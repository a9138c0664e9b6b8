package consumers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/orbitsaas/credit-ledger/internal/config"
	"github.com/orbitsaas/credit-ledger/internal/constants"
	"github.com/orbitsaas/credit-ledger/internal/consumers"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/mocks"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"github.com/orbitsaas/credit-ledger/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testMetrics = metrics.NewMetrics()

// capturingConsumer records the subscription so tests can feed it messages
// without a broker.
type capturingConsumer struct {
	handler  mq.Handle
	prefetch int
	queue    string
}

func (c *capturingConsumer) Consume(ctx context.Context, prefetch int, queue string, handler mq.Handle) error {
	c.handler = handler
	c.prefetch = prefetch
	c.queue = queue
	return nil
}

func testConfig(prefetch int) *config.Config {
	return &config.Config{RabbitMQ: mq.Config{Prefetch: prefetch}}
}

func newConsumer(t *testing.T) (*mocks.LedgerService, mq.Handle) {
	t.Helper()

	ledger := &mocks.LedgerService{}
	capturing := &capturingConsumer{}

	consumer := consumers.NewPaymentConsumer(testConfig(1), ledger, capturing, testMetrics, zap.NewNop())
	assert.NoError(t, consumer.Consume(context.Background()))
	assert.NotNil(t, capturing.handler)

	return ledger, capturing.handler
}

func TestPaymentConsumer_Consume(t *testing.T) {
	t.Run("prefetch and queue come from configuration", func(t *testing.T) {
		capturing := &capturingConsumer{}

		consumer := consumers.NewPaymentConsumer(testConfig(5), &mocks.LedgerService{}, capturing,
			testMetrics, zap.NewNop())

		assert.NoError(t, consumer.Consume(context.Background()))
		assert.Equal(t, 5, capturing.prefetch)
		assert.Equal(t, consumers.PaymentQueue, capturing.queue)
	})
}

func TestPaymentConsumer_HandleMessage(t *testing.T) {
	body := []byte(`{"organization_id":"01J9ZX3M5K8Q2W4R6T8V0Y2C4E","package_id":"pkg_100","payment_ref":"pay_abc","status":"succeeded"}`)

	t.Run("succeeded confirmation credits the purchase", func(t *testing.T) {
		ledger, handle := newConsumer(t)

		ledger.On("Purchase", mock.Anything, mock.MatchedBy(func(cmd service.PurchaseCommand) bool {
			return cmd.OrgID == "01J9ZX3M5K8Q2W4R6T8V0Y2C4E" &&
				cmd.PackageID == "pkg_100" &&
				cmd.PaymentRef == "pay_abc" &&
				cmd.Caller.Role == service.RoleAdmin
		})).Return(service.LedgerResult{NewBalance: 100, TransactionID: 1}, nil).Once()

		err := handle(context.Background(), body)

		assert.NoError(t, err)
		ledger.AssertExpectations(t)
	})

	t.Run("non-succeeded confirmation is acked without crediting", func(t *testing.T) {
		ledger, handle := newConsumer(t)

		failed := []byte(`{"organization_id":"01J9ZX3M5K8Q2W4R6T8V0Y2C4E","package_id":"pkg_100","payment_ref":"pay_abc","status":"failed"}`)

		err := handle(context.Background(), failed)

		assert.NoError(t, err)
		ledger.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything)
	})

	t.Run("malformed confirmation is rejected", func(t *testing.T) {
		ledger, handle := newConsumer(t)

		err := handle(context.Background(), []byte(`{not json`))

		assert.Error(t, err)
		assert.False(t, mq.IsTemporary(err))
		ledger.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything)
	})

	t.Run("storage failure requeues the confirmation", func(t *testing.T) {
		ledger, handle := newConsumer(t)

		cause := errors.New("connection refused")
		ledger.On("Purchase", mock.Anything, mock.Anything).
			Return(service.LedgerResult{}, service.NewServiceError(constants.ErrCodeOperationFailed, cause)).Once()

		err := handle(context.Background(), body)

		assert.Error(t, err)
		assert.True(t, mq.IsTemporary(err))
	})

	t.Run("invalid confirmation is dropped without requeue", func(t *testing.T) {
		ledger, handle := newConsumer(t)

		ledger.On("Purchase", mock.Anything, mock.Anything).
			Return(service.LedgerResult{}, service.NewServiceError(constants.ErrCodeInvalidRequest, service.ErrUnknownPackage)).Once()

		err := handle(context.Background(), body)

		assert.Error(t, err)
		assert.False(t, mq.IsTemporary(err))
	})
}
