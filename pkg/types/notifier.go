package types

// Notifier delivers a summary of a finished check run.
type Notifier interface {
	// Send delivers the report; failures are logged by the implementation.
	Send(report Report)
	// GetNames returns the names of the configured services.
	GetNames() []string
	// Close waits for queued notifications to be delivered.
	Close()
}
