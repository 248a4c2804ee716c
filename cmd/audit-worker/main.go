package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/common/config"
	"github.com/lifelink-health/portal/pkg/common/database"
	"github.com/lifelink-health/portal/pkg/common/kafka"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
)

// The audit worker drains the portal's event topic into the durable audit
// trail the admin dashboard reads. Replays are safe: the store ignores
// events it has already recorded.
func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate audit tables")
	}

	consumer := kafka.NewConsumer(cfg.AuditTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down audit worker...")
		cancel()
	}()

	logger.Log.WithField("topic", cfg.AuditTopic).Info("audit worker consuming")
	err = consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
		return repo.Record(ctx, event)
	})
	if err != nil && err != context.Canceled {
		logger.Log.WithError(err).Error("audit worker stopped with error")
	}
	logger.Log.Info("audit worker stopped")
}
