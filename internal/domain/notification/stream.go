package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"propcare/internal/pkg/apperr"
)

// Message is the payload published to external sinks.
type Message struct {
	RecipientID string    `json:"recipientId"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sentAt"`
}

// StreamNotifier appends notifications to a Redis stream for downstream
// delivery workers.
type StreamNotifier struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

func NewStreamNotifier(client *redis.Client, stream string) *StreamNotifier {
	if stream == "" {
		stream = "propcare:notifications"
	}
	return &StreamNotifier{client: client, stream: stream, now: time.Now}
}

func (s *StreamNotifier) Notify(ctx context.Context, recipientID, message string) error {
	now := s.now()
	body, err := json.Marshal(Message{RecipientID: recipientID, Message: message, SentAt: now})
	if err != nil {
		return apperr.External("encode notification", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"recipient": recipientID,
			"data":      string(body),
			"timestamp": now.Unix(),
		},
	}).Err()
	return apperr.External("publish notification to stream", err)
}
