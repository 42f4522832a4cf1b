package events

import (
	"context"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/services"
)

// envelope matches the event/payload shape other services on the bus consume.
type envelope struct {
	Event   string                `json:"event"`
	Payload services.Notification `json:"payload"`
}

// KafkaNotifier publishes search notifications keyed by search id.
type KafkaNotifier struct {
	publisher Publisher
	timeout   time.Duration
}

func NewKafkaNotifier(p Publisher) *KafkaNotifier {
	return &KafkaNotifier{publisher: p, timeout: 5 * time.Second}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n services.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	return k.publisher.Publish(ctx, n.SearchID, envelope{Event: n.Kind, Payload: n})
}

func (k *KafkaNotifier) Close() error {
	return k.publisher.Close()
}
