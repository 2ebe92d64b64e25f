package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/marketbloc/vendor-api/internal/domain"
	"github.com/marketbloc/vendor-api/internal/services"
)

func TestPubSubStatusPublisherPublishesEvent(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "order-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubStatusPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubStatusPublisher: %v", err)
	}

	occurredAt := time.Date(2024, 4, 2, 11, 0, 0, 0, time.UTC)
	event := services.StatusChangeEvent{
		EventID:     "01HV0TESTEVENT",
		ShopID:      "shop-1",
		SubOrderIDs: []string{"so-1", "so-2"},
		Status:      domain.StatusShipped,
		Actor:       "uid-42",
		OccurredAt:  occurredAt,
	}

	if _, err := publisher.PublishStatusChange(ctx, event); err != nil {
		t.Fatalf("PublishStatusChange: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.StatusChangeEvent
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.EventID != event.EventID || payload.ShopID != event.ShopID {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if len(payload.SubOrderIDs) != 2 {
		t.Fatalf("expected 2 sub-order ids, got %v", payload.SubOrderIDs)
	}
	if attr := messages[0].Attributes["status"]; attr != "shipped" {
		t.Fatalf("expected status attribute shipped, got %q", attr)
	}
	if attr := messages[0].Attributes["eventId"]; attr != "01HV0TESTEVENT" {
		t.Fatalf("expected eventId attribute, got %q", attr)
	}
}
