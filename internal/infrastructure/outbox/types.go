package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindAccepted   = "user_accepted"
	KindRejected   = "user_rejected"
	KindRegistered = "user_registered"
)

// Item is a pending notification awaiting delivery.
type Item struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Application string          `json:"application"`
	Payload     json.RawMessage `json:"payload"`
	Retries     int             `json:"retries"`
	Timestamp   time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
