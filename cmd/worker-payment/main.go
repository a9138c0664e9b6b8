package main

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/config"
	"github.com/orbitsaas/credit-ledger/internal/consumers"
	"github.com/orbitsaas/credit-ledger/internal/database"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/repository"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"github.com/orbitsaas/credit-ledger/pkg/mq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			database.NewConnection,
			metrics.NewMetrics,
			NewMQConnection,
			NewMQConsumer,

			repository.NewTransactionManager,
			repository.NewCreditBalanceRepository,
			repository.NewCreditTransactionRepository,
			repository.NewDeductionFailureRepository,
			repository.NewCreditPackageRepository,
			NewLedgerService,

			consumers.NewPaymentConsumer,
		),
		fx.Invoke(runPaymentConsumer),
	).Run()
}

func runPaymentConsumer(cfg *config.Config, paymentConsumer consumers.PaymentConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{consumers.PaymentQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queue declared", zap.String("queue", consumers.PaymentQueue))

			go func() {
				if err := paymentConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("payment consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping payment consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewLedgerService(cfg *config.Config, txManager repository.TxManager,
	balanceRepo repository.CreditBalanceRepository, transactionRepo repository.CreditTransactionRepository,
	failureRepo repository.DeductionFailureRepository, packageRepo repository.CreditPackageRepository,
	logger *zap.Logger, m *metrics.Metrics) service.LedgerService {
	return service.NewLedgerService(txManager, balanceRepo, transactionRepo, failureRepo, packageRepo,
		logger, m, cfg.Ledger.MaxConflictRetries, cfg.Ledger.DefaultHistoryLimit)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}
