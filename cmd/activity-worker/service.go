package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/pkg/config"
	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/enums"
	"github.com/syncuphq/syncup-backend/pkg/logger"
	"github.com/syncuphq/syncup-backend/pkg/outbox"
	"github.com/syncuphq/syncup-backend/pkg/pubsub"
	"github.com/syncuphq/syncup-backend/pkg/redis"
)

type ServiceParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	PubSub   *pubsub.Client
	Consumer *activity.Consumer
}

// Service pulls published activity events off Pub/Sub and hands them to
// the activity consumer.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	pubsub   *pubsub.Client
	consumer *activity.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("activity consumer is required")
	}

	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		db:       params.DB,
		redis:    params.Redis,
		pubsub:   params.PubSub,
		consumer: params.Consumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	sub := s.pubsub.ActivitySubscription()
	if sub == nil {
		return errors.New("activity subscription not configured")
	}

	return sub.Receive(ctx, s.handleMessage)
}

func (s *Service) handleMessage(ctx context.Context, msg *gcppubsub.Message) {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		// malformed envelopes never become valid, drop them
		logCtx := s.logg.WithField(ctx, "message_id", msg.ID)
		s.logg.Error(logCtx, "failed to decode activity envelope", err)
		msg.Ack()
		return
	}

	if err := s.consumer.Process(ctx, eventType, envelope); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"message_id": msg.ID,
			"event_id":   envelope.EventID,
		})
		s.logg.Error(logCtx, "failed to process activity event", err)
		msg.Nack()
		return
	}

	msg.Ack()
}
