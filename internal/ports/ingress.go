package ports

// Ingress is a long-running entry point that feeds emails to the classification service
type Ingress interface {
	// Start begins accepting traffic. It returns once the listener is running.
	Start() error

	// Stop drains in-flight work and releases the listener
	Stop() error
}
