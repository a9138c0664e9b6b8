package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	v1 "github.com/orbitsaas/credit-ledger/internal/api/v1"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefixV1 = "api/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler) {
	app.Get("/ping", handler.Pong)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post(prefixV1+"credits/balance", handler.GetBalance)
	app.Post(prefixV1+"credits/transactions", handler.GetTransactions)
	app.Post(prefixV1+"credits/purchase", handler.Purchase)
	app.Post(prefixV1+"credits/deduct", handler.Deduct)
	app.Post(prefixV1+"credits/grant", handler.Grant)
	app.Post(prefixV1+"credits/refund", handler.Refund)
}
