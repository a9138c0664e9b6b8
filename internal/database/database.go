package database

import (
	"context"

	"github.com/orbitsaas/credit-ledger/internal/config"
	"github.com/orbitsaas/credit-ledger/pkg/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewConnection(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return mysql.NewConnection(context.Background(), cfg.Database, logger)
}
