package eventstream

import "context"

// Publisher publishes result events to an event stream backend.
type Publisher interface {
	PublishResult(ctx context.Context, event *ResultRecordedEvent) error
	Close() error
}
