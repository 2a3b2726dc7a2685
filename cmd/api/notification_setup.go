package main

import (
	"context"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/notification"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/broker"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// NotificationSystem holds all notification-related components
type NotificationSystem struct {
	Service       notification.Service
	Signals       notification.SignalRepository
	MessageBroker *broker.MessageBroker
	Logger        *logrus.Logger
	cancel        context.CancelFunc
}

// SetupNotificationSystem wires the notification pipeline: repository,
// per-user signal topics, the in-memory broker and the delivery worker
// that connects them.
func SetupNotificationSystem(
	db *connection.Database,
	bus *events.Bus,
	appLogger *logger.Logger,
	isDevelopment bool,
) (*NotificationSystem, error) {
	notifLogger := logrus.New()
	notifLogger.SetFormatter(&logrus.JSONFormatter{})
	if isDevelopment {
		notifLogger.SetLevel(logrus.DebugLevel)
	} else {
		notifLogger.SetLevel(logrus.InfoLevel)
	}

	repo := notification.NewRepository(db, notifLogger)
	signals := notification.NewSignalRepository(100)
	msgBroker := broker.NewMessageBroker(1000)

	service := notification.NewService(repo, signals, msgBroker, bus, notifLogger)

	// Dashboard events become persisted notifications through the bus.
	bus.AddForwarder(service.HandleEvent)

	workerCtx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := notification.StartDeliveryWorker(workerCtx, msgBroker, signals, notifLogger); err != nil && workerCtx.Err() == nil {
			appLogger.Error("Notification delivery worker stopped", zap.Error(err))
		}
	}()

	appLogger.Info("Notification system started successfully")

	return &NotificationSystem{
		Service:       service,
		Signals:       signals,
		MessageBroker: msgBroker,
		Logger:        notifLogger,
		cancel:        cancel,
	}, nil
}

// Shutdown stops the delivery worker and closes the broker.
func (ns *NotificationSystem) Shutdown() {
	if ns.cancel != nil {
		ns.cancel()
	}
	if ns.MessageBroker != nil {
		ns.MessageBroker.Close()
	}
	ns.Logger.Info("Notification system shut down")
}
