package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/adapters/driven/display/keys"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/logger"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run the waste detector and drive the sorter",
	Long: `Reads frames from the camera stream, brightens them, runs the YOLO
detector and writes one code per frame to the sorting actuator:

  0  nothing detected
  1  organik
  2  anorganik
  3  B3

Press 'q' to stop. Configure the stream with camera.stream_url and the
serial line with serial.port; serial.backend log prints codes instead.`,
	RunE: runDetect,
}

var openTerminal = keys.OpenTerminal

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}

	term, err := openTerminal()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	console := cmd.OutOrStdout()
	if term != nil {
		defer term.Restore() //nolint:errcheck
		in = term.Reader()
		console = keys.CRLFWriter{W: console}

		logs := logger.Output()
		logger.SetOutput(keys.CRLFWriter{W: logs})
		defer logger.SetOutput(logs)
	}

	loop, cleanup, err := b.Sorter(cmd.Context(), in, console)
	if err != nil {
		if errors.Is(err, domain.ErrStreamUnavailable) {
			cmd.PrintErrf("Gagal membuka stream kamera: %v\n", err)
		}
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("closing detector pipeline: %v", err)
		}
	}()

	fmt.Fprintln(console, "Detecting waste, press 'q' to quit.")
	runErr := loop.Run(cmd.Context())

	stats := loop.Stats()
	fmt.Fprintf(console, "Frames: %d read, %d skipped, %d detector failures\n",
		stats.FramesRead, stats.FramesSkipped, stats.DetectorFails)
	for _, code := range []domain.OutputCode{domain.CodeNone, domain.CodeOrganic, domain.CodeNonOrganic, domain.CodeB3} {
		if n := stats.CodesSent[code]; n > 0 {
			fmt.Fprintf(console, "  Code %s: %d\n", code, n)
		}
	}

	if runErr != nil {
		return fmt.Errorf("detection stopped: %w", runErr)
	}
	return nil
}

