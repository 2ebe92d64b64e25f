// Package jobs wires asynchronous fan-out of order lifecycle events to
// Google Cloud Pub/Sub.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/marketbloc/vendor-api/internal/services"
)

// PubSubStatusPublisher publishes order status-change events to a Pub/Sub topic.
type PubSubStatusPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubStatusPublisher constructs a Pub/Sub backed status event publisher.
func NewPubSubStatusPublisher(topic *pubsub.Topic) (*PubSubStatusPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub status publisher: topic is required")
	}
	return &PubSubStatusPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishStatusChange enqueues a status-change event on the configured topic.
func (p *PubSubStatusPublisher) PublishStatusChange(ctx context.Context, event services.StatusChangeEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub status publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal status change event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "eventId", event.EventID)
	setAttr(attrs, "shopId", event.ShopID)
	setAttr(attrs, "status", string(event.Status))
	setAttr(attrs, "actor", event.Actor)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish status change event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
