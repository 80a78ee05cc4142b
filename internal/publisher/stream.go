package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// streamMaxLen caps each lifecycle stream (approximate trimming)
const streamMaxLen = 10000

// StreamKey returns the lifecycle stream for a sport
func StreamKey(sport models.Sport) string {
	return fmt.Sprintf("reports.lifecycle.%s", sport)
}

// StreamPublisher publishes report lifecycle events to Redis streams
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		client: client,
	}
}

// PublishReportEvent publishes a lifecycle event to the sport-specific stream
func (p *StreamPublisher) PublishReportEvent(ctx context.Context, event models.ReportEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling report event: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(event.Sport),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"report_id": event.ReportID,
			"type":      string(event.Type),
		},
	}).Err()
}
