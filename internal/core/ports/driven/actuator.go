package driven

import "github.com/pilah-labs/pilah/internal/core/domain"

// Actuator is the outbound channel to the sorting mechanism.
type Actuator interface {
	// Send writes exactly one output code.
	Send(code domain.OutputCode) error

	// Close releases the channel.
	Close() error
}
