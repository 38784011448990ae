package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"propcare/internal/config"
	"propcare/internal/database"
	"propcare/internal/domain/cases"
	"propcare/internal/domain/notification"
	"propcare/internal/domain/quote"
	"propcare/internal/domain/timeline"
	"propcare/internal/logger"
)

func main() {
	cfgPath := flag.String("config", "", "optional configuration file")
	keep := flag.Duration("keep-read", 30*24*time.Hour, "how long read notifications are kept")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall job deadline")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.App.LogLevel, cfg.App.LogFormat, "propcare-quote-expiry")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.Database.URL, cfg.Database.MaxOpenConns, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	notifications := notification.NewRepository(db)
	quotes := quote.NewService(quote.Deps{
		Quotes:   quote.NewRepository(db),
		Cases:    cases.NewRepository(db),
		Events:   timeline.NewRepository(db),
		Tx:       database.NewTransactor(db),
		Notifier: notification.NewService(notifications),
		Log:      zl,
	})

	now := time.Now().UTC()
	expired, err := quotes.ExpireOverdue(ctx, now)
	if err != nil {
		// Individual failures do not stop the sweep; report and carry on.
		zl.Error("some quotes could not be expired", zap.Error(err))
	}

	pruned, err := notification.NewCleanupService(notifications, zl).PruneRead(ctx, now, *keep)
	if err != nil {
		zl.Fatal("notification cleanup failed", zap.Error(err))
	}

	zl.Info("quote expiry completed",
		zap.Int("quotes_expired", expired),
		zap.Int64("notifications_pruned", pruned),
	)
}
