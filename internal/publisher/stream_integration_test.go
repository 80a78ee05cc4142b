//go:build integration
// +build integration

package publisher_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/restocktime/WizJock-sub001/internal/publisher"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

func TestIntegration_PublishReportEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	event := models.ReportEvent{
		Type:     models.EventPublished,
		ReportID: "5b0f3f5e-8c53-4a43-9b3c-0d5d1f7c2a11",
		Sport:    models.SportNHL,
		At:       time.Now().UTC().Truncate(time.Second),
		By:       "editor@wizjock.com",
	}

	if err := publisher.NewStreamPublisher(client).PublishReportEvent(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := client.XRange(ctx, publisher.StreamKey(models.SportNHL), "-", "+").Result()
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	var got models.ReportEvent
	if err := json.Unmarshal([]byte(entries[0].Values["data"].(string)), &got); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if got.ReportID != event.ReportID || got.Type != models.EventPublished || !got.At.Equal(event.At) {
		t.Errorf("unexpected event: %+v", got)
	}
}

type chanSink chan models.ReportEvent

func (s chanSink) PublishReportEvent(ctx context.Context, event models.ReportEvent) error {
	s <- event
	return nil
}

func TestIntegration_StreamConsumerDeliversNewEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := make(chanSink, 4)
	consumer := publisher.NewStreamConsumer(client, sink, models.AllSports(), nil)
	go consumer.Run(ctx)

	// Let the first XREAD block before writing
	time.Sleep(100 * time.Millisecond)

	pub := publisher.NewStreamPublisher(client)
	for _, sport := range []models.Sport{models.SportNBA, models.SportUFC} {
		event := models.ReportEvent{Type: models.EventPublished, ReportID: "r-" + string(sport), Sport: sport, At: time.Now().UTC()}
		if err := pub.PublishReportEvent(ctx, event); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	seen := map[models.Sport]bool{}
	for len(seen) < 2 {
		select {
		case event := <-sink:
			seen[event.Sport] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", seen)
		}
	}
}
