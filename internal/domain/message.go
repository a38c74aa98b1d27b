package domain

import (
	"context"
	"time"
)

// RawMessage is a generation request as read from the message broker, before
// decoding.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is a serialized generation result ready for publishing.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
