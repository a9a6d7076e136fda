package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sigillo/bridge"
	"sigillo/card"
	"sigillo/config"
	"sigillo/db"
	sigilloHttp "sigillo/http"
	"sigillo/message"
	"sigillo/message/event"
	"sigillo/message/outbox"
	"sigillo/metrics"
	"sigillo/transmission"

	"github.com/ThreeDotsLabs/watermill"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	cfg config.Config

	watermillRouter *watermillMessage.Router
	echoRouter      *echo.Echo

	cardActor    *bridge.CardActor
	hub          *bridge.Hub
	statusPubSub *gochannel.GoChannel
	bridgeRouter *echo.Echo
	lineServer   *bridge.LineServer
}

func New(
	cfg config.Config,
	redisClient *redis.Client,
	conn db.DB,
	cardAPI card.API,
	cardLoadErr error,
) (Service, error) {
	watermillLogger := watermill.NewStdLogger(false, false)
	m := metrics.New()

	transmissionRepo := db.NewTransmissionRepository(&conn, watermillLogger)
	orchestrator := transmission.NewOrchestrator(transmissionRepo, m)

	redisPublisher := message.NewRedisPublisher(redisClient, watermillLogger)
	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	eventsHandler := event.NewHandler(m)

	pgSubscriber := outbox.SubscribeForPGMessages(conn.Conn, watermillLogger)
	watermillRouter := message.NewWatermillRouter(
		pgSubscriber,
		redisPublisher,
		eventProcessorConfig,
		eventsHandler,
		watermillLogger,
	)

	echoRouter := sigilloHttp.NewHttpRouter(
		orchestrator,
		transmissionRepo,
		cfg.Company,
	)

	statusPubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermillLogger)
	statusBus := event.NewBus(statusPubSub)
	cardActor := bridge.NewCardActor(cardAPI, cardLoadErr, cfg.Bridge.Slot, statusBus, m)
	cardActor.SetPollInterval(cfg.Bridge.PollInterval.Std())
	hub := bridge.NewHub(m)
	bridgeRouter := bridge.NewHTTPServer(cardActor, hub)

	lineServer, err := bridge.NewLineServer(cardActor, fmt.Sprintf("127.0.0.1:%d", cfg.Bridge.LinePort))
	if err != nil {
		return Service{}, err
	}

	return Service{
		cfg:             cfg,
		watermillRouter: watermillRouter,
		echoRouter:      echoRouter,
		cardActor:       cardActor,
		hub:             hub,
		statusPubSub:    statusPubSub,
		bridgeRouter:    bridgeRouter,
		lineServer:      lineServer,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	errgrp.Go(func() error {
		// the HTTP surface must not look healthy before the router is
		<-s.watermillRouter.Running()

		err := s.echoRouter.Start(fmt.Sprintf(":%d", s.cfg.HTTPPort))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errgrp.Go(func() error {
		return ignoreCanceled(s.cardActor.Run(ctx))
	})

	errgrp.Go(func() error {
		return s.hub.Run(ctx, s.statusPubSub)
	})

	errgrp.Go(func() error {
		err := s.bridgeRouter.Start(fmt.Sprintf("127.0.0.1:%d", s.cfg.Bridge.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errgrp.Go(func() error {
		return ignoreCanceled(s.lineServer.Run(ctx))
	})

	errgrp.Go(func() error {
		<-ctx.Done()
		_ = s.bridgeRouter.Shutdown(context.Background())
		return s.echoRouter.Shutdown(context.Background())
	})

	return errgrp.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
