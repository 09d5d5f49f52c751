package database

import (
	"context"

	"github.com/aashari/go-content-dashboard/internal/logger"
)

// LogInserter stores client log documents
type LogInserter interface {
	Insert(ctx context.Context, log *ClientLog) error
}

// LogSink is a logger.Sink that persists every entry in the client-logs collection
type LogSink struct {
	store LogInserter
}

// NewLogSink returns a sink writing through store
func NewLogSink(store LogInserter) *LogSink {
	return &LogSink{store: store}
}

// Send stores one entry
func (s *LogSink) Send(ctx context.Context, entry logger.LogEntry) error {
	return s.store.Insert(ctx, &ClientLog{
		LogEntry:  entry,
		LevelName: entry.Level.String(),
	})
}

var _ logger.Sink = (*LogSink)(nil)
