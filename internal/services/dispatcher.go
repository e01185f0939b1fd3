package services

import (
	"context"
	"encoding/json"

	"github.com/gisgate/backend/internal/infrastructure/outbox"
	"github.com/gisgate/backend/internal/notify"
)

// NotifyDispatcher implements the notification boundary on top of the outbox.
// Handing off only persists the item; delivery happens on the drain loop, so
// the calling operation never blocks on mail transport.
type NotifyDispatcher struct {
	processor *OutboxProcessor
}

func NewNotifyDispatcher(processor *OutboxProcessor) *NotifyDispatcher {
	return &NotifyDispatcher{processor: processor}
}

func (d *NotifyDispatcher) UserAccepted(payload notify.AcceptedPayload) error {
	return d.enqueue(outbox.KindAccepted, payload.Application, payload)
}

func (d *NotifyDispatcher) UserRejected(payload notify.RejectedPayload) error {
	return d.enqueue(outbox.KindRejected, payload.Application, payload)
}

func (d *NotifyDispatcher) NewUserRegistered(payload notify.RegisteredPayload) error {
	return d.enqueue(outbox.KindRegistered, payload.Application, payload)
}

func (d *NotifyDispatcher) enqueue(kind, application string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	item := outbox.Item{
		Kind:        kind,
		Application: application,
		Payload:     data,
	}
	return d.processor.Dispatch(context.Background(), item)
}

var _ notify.Dispatcher = (*NotifyDispatcher)(nil)
