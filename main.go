package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"sigillo/card"
	"sigillo/config"
	"sigillo/db"
	"sigillo/message"
	"sigillo/service"
	observability "sigillo/trace"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	configPath := os.Getenv("SIGILLO_CONFIG")
	if configPath == "" {
		configPath = "sigillo.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Could not load configuration")
	}

	tp := observability.ConfigureTraceProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	conn, err := db.NewDBConn(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Could not connect to Postgres")
	}
	defer conn.Close()
	conn.MigrateSchema()

	redisClient := message.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	// the bridge stays up without the vendor library; the card actor keeps
	// reporting the categorized load error to clients
	var cardAPI card.API
	cardLoadErr := card.ErrLibraryNotFound
	if cfg.Bridge.LibraryPath != "" {
		cardAPI, cardLoadErr = card.OpenLibsiae(cfg.Bridge.LibraryPath)
		if cardLoadErr != nil {
			logrus.WithError(cardLoadErr).Warn("Vendor card library unavailable")
		}
	}

	svc, err := service.New(cfg, redisClient, conn, cardAPI, cardLoadErr)
	if err != nil {
		logrus.WithError(err).Fatal("Could not build service")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"http_port":   cfg.HTTPPort,
		"bridge_port": cfg.Bridge.Port,
		"line_port":   cfg.Bridge.LinePort,
	}).Info("Service starting")

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("Service stopped")
	}
}
