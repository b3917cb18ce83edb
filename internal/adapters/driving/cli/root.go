// Package cli provides the cobra command tree for pilah.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

var (
	version   = "dev"
	configDir string
	verbose   bool
)

// Backend opens the services behind each command.
// Hardware and AI adapters are created on first use.
type Backend interface {
	SettingsService() driving.SettingsService
	Settings() (*domain.Settings, error)
	Seed(ctx context.Context) (driving.SeedService, error)
	Index(ctx context.Context) (driving.IndexService, error)
	Chat(ctx context.Context) (driving.ChatService, error)
	SeedDatabasePath(ctx context.Context) (string, error)
	Sorter(ctx context.Context, keys io.Reader, console io.Writer) (driving.SorterLoop, func() error, error)
	Close() error
}

// BackendFactory opens a Backend rooted at a config directory.
// An empty directory selects the default.
type BackendFactory func(configDir string) (Backend, error)

var (
	newBackend BackendFactory
	current    Backend
)

var rootCmd = &cobra.Command{
	Use:   "pilah",
	Short: "Waste detection and waste sorting chatbot",
	Long: `pilah sorts waste in two ways.

The detect command reads a camera stream, classifies waste with a YOLO model
and drives a sorting actuator over a serial line.

The chat, ask, serve and mcp commands answer questions about waste handling
from a small database of waste items.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.pilah)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline steps to stderr")
}

// SetBackendFactory installs the function used to open the backend.
func SetBackendFactory(f BackendFactory) {
	newBackend = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeBackend()

	return rootCmd.ExecuteContext(ctx)
}

// backend returns the open backend, opening it on first use.
func backend() (Backend, error) {
	if current != nil {
		return current, nil
	}
	if newBackend == nil {
		return nil, errors.New("backend not configured")
	}
	b, err := newBackend(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening pilah: %w", err)
	}
	current = b
	return current, nil
}

func closeBackend() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Warn("closing: %v", err)
	}
	current = nil
}
