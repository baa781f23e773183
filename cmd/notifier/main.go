package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	config "github.com/davicafu/knowledgenest/internal/config"
	"github.com/davicafu/knowledgenest/internal/infra/broker"
	"github.com/davicafu/knowledgenest/internal/notification"
	"github.com/davicafu/knowledgenest/internal/notification/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/knowledgenest/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()
	log := logger.Logger()
	defer log.Sync()

	// SIGINT/SIGTERM cancelan el contexto y el consumidor hace drain limpio.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	client := broker.NewClient(broker.Config{
		Host:        cfg.RabbitHost,
		Port:        cfg.RabbitPort,
		Username:    cfg.RabbitUser,
		Password:    cfg.RabbitPass,
		VHost:       cfg.RabbitVHost,
		Heartbeat:   cfg.Heartbeat,
		DialTimeout: cfg.DialTimeout,
		Retry: broker.Policy{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: cfg.InitialBackoff,
			MaxDelay:     cfg.MaxBackoff,
		},
	}, log)
	defer client.Close()

	// --------------- Audit log --------------
	var audit notification.AuditLog
	if cfg.UseClickHouse {
		repo, err := clickhouse.NewNotificationLogRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, audit log deshabilitado", zap.Error(err))
		} else {
			audit = repo
			log.Info("✅ ClickHouse conectado, audit log habilitado")
		}
	}

	service := notification.NewService(client, broker.ConsumerConfig{
		Exchange: cfg.ExchangeName,
		Queue:    cfg.QueueName,
		Patterns: cfg.RoutingKeys,
		Prefetch: cfg.PrefetchCount,
		Tag:      "knowledgenest-notifier",
	}, audit, log)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}

	log.Info("✅ Notifier detenido limpiamente")
}
