package lifecycle

import "context"

// Event names carried over the realtime channel.
const (
	EventMatchFound       = "match-found"
	EventSessionActive    = "session-active"
	EventSessionCompleted = "session-completed"
	EventDepositStatus    = "deposit-status"
	EventMove             = "move"
	EventChat             = "chat"
	EventResign           = "resign"
)

// Handler receives a raw event payload.
type Handler func(payload []byte)

// Channel is the pub/sub collaborator keyed by session ID. Delivery is
// best-effort, at-most-once and unordered across event names; it only
// shaves latency. State transitions never depend on it; the record
// store stays the source of truth and is polled as the fallback.
type Channel interface {
	Join(ctx context.Context, sessionID uint) error
	Publish(ctx context.Context, sessionID uint, event string, payload interface{}) error

	// Subscribe registers handler for one event on one session and
	// returns a cancel function tied to the consumer's lifetime.
	Subscribe(ctx context.Context, sessionID uint, event string, handler Handler) (func(), error)
}
