// Package dryrun is an actuator that records codes instead of driving hardware.
package dryrun

import (
	"fmt"
	"io"
	"sync"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure Actuator implements the interface.
var _ driven.Actuator = (*Actuator)(nil)

// Actuator logs each code and, when given a writer, echoes it as a raw byte.
type Actuator struct {
	mu   sync.Mutex
	out  io.Writer
	sent []domain.OutputCode
}

// New creates a dry-run actuator. out may be nil.
func New(out io.Writer) *Actuator {
	return &Actuator{out: out}
}

// Send records the code.
func (a *Actuator) Send(code domain.OutputCode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sent = append(a.sent, code)
	logger.Debug("dry-run actuator <- %s", code)
	if a.out != nil {
		if _, err := a.out.Write([]byte{byte(code)}); err != nil {
			return fmt.Errorf("dry-run write: %w", err)
		}
	}
	return nil
}

// Sent returns a copy of every code sent so far.
func (a *Actuator) Sent() []domain.OutputCode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.OutputCode(nil), a.sent...)
}

// Close is a no-op.
func (a *Actuator) Close() error {
	return nil
}
