package notify

import "context"

// Sink sends change events to a downstream destination (webhook, queue, topic).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt ChangeEvent) error
}
