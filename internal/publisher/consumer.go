package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second
)

// EventSink receives lifecycle events read from the streams
type EventSink interface {
	PublishReportEvent(ctx context.Context, event models.ReportEvent) error
}

// StreamConsumer tails the lifecycle streams of every sport. It reads
// without a consumer group so that each service instance sees every event.
type StreamConsumer struct {
	client *redis.Client
	sink   EventSink
	sports []models.Sport
	logger *zap.Logger
}

// NewStreamConsumer creates a consumer for the given sports' streams
func NewStreamConsumer(client *redis.Client, sink EventSink, sports []models.Sport, logger *zap.Logger) *StreamConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamConsumer{
		client: client,
		sink:   sink,
		sports: sports,
		logger: logger,
	}
}

// Run delivers new events to the sink until ctx is cancelled. Events
// written before Run started are not replayed.
func (c *StreamConsumer) Run(ctx context.Context) {
	// XREAD takes every stream key first, then one ID per stream
	args := make([]string, 0, 2*len(c.sports))
	for _, sport := range c.sports {
		args = append(args, StreamKey(sport))
	}
	// "$" would drop events written between two reads
	start := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-0"
	for range c.sports {
		args = append(args, start)
	}
	n := len(c.sports)

	c.logger.Info("lifecycle stream consumer started", zap.Strings("streams", args[:n]))

	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := c.client.XRead(ctx, &redis.XReadArgs{
			Streams: args,
			Count:   batchSize,
			Block:   blockDuration,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			c.logger.Warn("lifecycle stream read failed", zap.Error(err))
			sleepCtx(ctx, time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.deliver(ctx, stream.Stream, msg)
			}
			if len(stream.Messages) == 0 {
				continue
			}
			lastID := stream.Messages[len(stream.Messages)-1].ID
			for i := 0; i < n; i++ {
				if args[i] == stream.Stream {
					args[n+i] = lastID
				}
			}
		}
	}
}

func (c *StreamConsumer) deliver(ctx context.Context, stream string, msg redis.XMessage) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		c.logger.Warn("invalid lifecycle message", zap.String("stream", stream), zap.String("id", msg.ID))
		return
	}

	event, err := DecodeReportEvent(data)
	if err != nil {
		c.logger.Warn("failed to parse lifecycle event",
			zap.String("stream", stream),
			zap.String("id", msg.ID),
			zap.Error(err))
		return
	}

	if err := c.sink.PublishReportEvent(ctx, event); err != nil {
		c.logger.Warn("failed to deliver lifecycle event",
			zap.String("report_id", event.ReportID),
			zap.Error(err))
	}
}

// DecodeReportEvent parses the data field of a lifecycle stream entry
func DecodeReportEvent(data string) (models.ReportEvent, error) {
	var event models.ReportEvent
	err := json.Unmarshal([]byte(data), &event)
	return event, err
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
