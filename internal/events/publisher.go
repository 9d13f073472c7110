package events

import (
	"context"
	"log/slog"
)

type Event interface {
	Name() string
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher writes events to the structured log. There is no broker in
// this deployment; downstream consumers tail the log stream.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e Event) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event", "name", e.Name(), "payload", e)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
