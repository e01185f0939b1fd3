package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gisgate/backend/internal/config"
	"github.com/gisgate/backend/internal/infrastructure/outbox"
	"github.com/gisgate/backend/internal/notify"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxProcessor delivers queued notifications and retries transient
// failures. Delivery outcome never reaches the operation that enqueued the
// notification.
type OutboxProcessor struct {
	store   *outbox.Store
	monitor ConnectionHealth
	sender  Sender
	mail    config.MailConfig
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewOutboxProcessor(
	store *outbox.Store,
	monitor ConnectionHealth,
	sender Sender,
	mail config.MailConfig,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	op := &OutboxProcessor{
		store:   store,
		monitor: monitor,
		sender:  sender,
		mail:    mail,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = op.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := op.Drain(ctx); err != nil {
			op.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return op
}

// Start launches the cron scheduler.
func (op *OutboxProcessor) Start() {
	if op == nil || op.cron == nil {
		return
	}
	op.cron.Start()
	op.logger.Info("outbox processor started")
}

// Stop gracefully stops the scheduler.
func (op *OutboxProcessor) Stop(ctx context.Context) {
	if op == nil || op.cron == nil {
		return
	}
	stopCtx := op.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	op.logger.Info("outbox processor stopped")
}

// Drain delivers pending notifications synchronously.
func (op *OutboxProcessor) Drain(ctx context.Context) error {
	if op == nil || op.store == nil {
		return nil
	}
	if op.monitor != nil && !op.monitor.IsOnline() {
		op.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := op.store.GetBatch(op.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := op.deliver(ctx, item); err != nil {
			op.logger.Error("failed to deliver notification",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Error(err))

			item.Retries++
			if item.Retries >= op.cfg.MaxRetries {
				op.logger.Warn("dropping notification (max retries reached)", zap.String("item_id", item.ID))
				_ = op.store.Remove(item)
				continue
			}

			if err := op.store.Remove(item); err != nil {
				op.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := op.store.Requeue(item); err != nil {
				op.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := op.store.Remove(item); err != nil {
			op.logger.Warn("failed to purge delivered notification", zap.Error(err))
		}
	}
	return nil
}

// Dispatch persists the item and returns. Delivery belongs exclusively to
// the drain loop so the enqueuing operation never waits on mail transport.
func (op *OutboxProcessor) Dispatch(ctx context.Context, item outbox.Item) error {
	if op == nil || op.store == nil {
		return fmt.Errorf("outbox processor not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return op.store.Enqueue(item)
}

// Size returns the number of queued notifications.
func (op *OutboxProcessor) Size() int {
	if op == nil || op.store == nil {
		return 0
	}
	size, err := op.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (op *OutboxProcessor) deliver(ctx context.Context, item outbox.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	from := ""
	if len(op.mail.FromAddresses) > 0 {
		from = op.mail.FromAddresses[0]
	}

	switch item.Kind {
	case outbox.KindAccepted:
		var p notify.AcceptedPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return err
		}
		subject, body := renderAccepted(p)
		return op.sender.Send(ctx, from, p.To, subject, body)

	case outbox.KindRejected:
		var p notify.RejectedPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return err
		}
		subject, body := renderRejected(p)
		return op.sender.Send(ctx, from, p.To, subject, body)

	case outbox.KindRegistered:
		var p notify.RegisteredPayload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return err
		}
		subject, body := renderRegistered(p)
		return op.sender.Send(ctx, from, p.To, subject, body)

	default:
		return fmt.Errorf("unknown notification kind %q", item.Kind)
	}
}
