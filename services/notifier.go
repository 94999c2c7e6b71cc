package services

// Notifier pushes event-scoped updates to live subscribers. The
// WebSocket hub satisfies it; tests use the nop implementation.
type Notifier interface {
	BroadcastEvent(eventID int, msgType string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) BroadcastEvent(int, string, interface{}) {}

// NopNotifier is a Notifier that drops every update.
func NopNotifier() Notifier { return nopNotifier{} }
