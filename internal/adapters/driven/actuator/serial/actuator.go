// Package serial drives the sorting mechanism over a serial line.
// Each frame produces exactly one ASCII byte: '0' to '3'.
package serial

import (
	"fmt"
	"io"
	"sync"

	tarm "github.com/tarm/serial"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure Actuator implements the interface.
var _ driven.Actuator = (*Actuator)(nil)

// DefaultBaud matches the microcontroller sketch.
const DefaultBaud = 9600

// Config holds configuration for the serial link.
type Config struct {
	Port string
	Baud int
}

// Actuator writes output codes to a port.
type Actuator struct {
	mu   sync.Mutex
	port io.WriteCloser
	name string
}

// Open opens the port. The link is held until Close.
func Open(cfg Config) (*Actuator, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: no serial port configured", domain.ErrActuatorUnavailable)
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	port, err := tarm.OpenPort(&tarm.Config{Name: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrActuatorUnavailable, cfg.Port, err)
	}
	logger.Info("Serial link open on %s at %d baud", cfg.Port, cfg.Baud)
	return New(port, cfg.Port), nil
}

// New wraps an already open port.
func New(port io.WriteCloser, name string) *Actuator {
	return &Actuator{port: port, name: name}
}

// Send writes the single code byte.
func (a *Actuator) Send(code domain.OutputCode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		return fmt.Errorf("%w: %s is closed", domain.ErrActuatorUnavailable, a.name)
	}
	n, err := a.port.Write([]byte{byte(code)})
	if err != nil {
		return fmt.Errorf("write %s: %w", a.name, err)
	}
	if n != 1 {
		return fmt.Errorf("write %s: %w", a.name, io.ErrShortWrite)
	}
	return nil
}

// Close releases the port. Further sends fail.
func (a *Actuator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		return nil
	}
	err := a.port.Close()
	a.port = nil
	return err
}
