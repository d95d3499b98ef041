// progression/sync.go
package progression

// RemoteSync mirrors progression fields to the remote profile store.
// Pushes are fire-and-forget and eventually consistent: they may fail or
// arrive out of order, and the remote row is never authoritative during an
// active session. Implementations must not be relied on for correctness.
type RemoteSync interface {
	PushProfile(userID string, fields map[string]any) error
}

// NopSync discards every push. Used for demo mode and tests.
type NopSync struct{}

func (NopSync) PushProfile(string, map[string]any) error { return nil }
