package main

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/orbitsaas/credit-ledger/internal/api"
	v1 "github.com/orbitsaas/credit-ledger/internal/api/v1"
	"github.com/orbitsaas/credit-ledger/internal/api/v1/middleware"
	apivalidator "github.com/orbitsaas/credit-ledger/internal/api/validator"
	"github.com/orbitsaas/credit-ledger/internal/config"
	"github.com/orbitsaas/credit-ledger/internal/database"
	apperrors "github.com/orbitsaas/credit-ledger/internal/errors"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/publishers"
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
			NewValidator,
			apivalidator.NewXValidator,

			NewMQConnection,
			NewMQPublisher,
			publishers.NewChargePublisher,

			repository.NewTransactionManager,
			repository.NewCreditBalanceRepository,
			repository.NewCreditTransactionRepository,
			repository.NewDeductionFailureRepository,
			repository.NewCreditPackageRepository,
			NewLedgerService,

			metrics.NewSystemCollector,
			metrics.NewDatabaseMetricsCollector,

			v1.NewHandler,
			NewFiberApp,
		),
		fx.Invoke(startServer, startCollectors),
	).Run()
}

func NewValidator() *validator.Validate {
	return validator.New()
}

func NewFiberApp(m *metrics.Metrics, logger *zap.Logger, dbCollector *metrics.DatabaseMetricsCollector) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler(),
	})

	app.Use(middleware.HealthCheckMiddleware("creditledger", dbCollector.HealthCheck))
	app.Use(middleware.HTTPMetricsMiddleware(m, logger))

	return app
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

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, rabbit *mq.RabbitMQ,
	logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.ChargeQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := app.ShutdownWithContext(ctx); err != nil {
				return err
			}
			return rabbit.Close()
		},
	})
}

func startCollectors(system *metrics.SystemCollector, dbCollector *metrics.DatabaseMetricsCollector, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			system.Start(15 * time.Second)
			dbCollector.Start(15 * time.Second)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			system.Stop()
			dbCollector.Stop()
			return nil
		},
	})
}
