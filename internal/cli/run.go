package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smothiki/jupyterlauncher/internal/monitor"
	"github.com/smothiki/jupyterlauncher/internal/server"
)

func runLauncher(cmd *cobra.Command, args []string) error {
	execLog, err := monitor.NewExecutionLog(output)
	if err != nil {
		return fmt.Errorf("failed to create execution log: %w", err)
	}
	fmt.Printf("Logging to: %s\n\n", output)

	var srv *server.Server
	if !noStart {
		srv, err = server.Start(server.Config{NotebookDir: notebookDir, Port: port})
		if err != nil {
			return err
		}
		// Give the server time to come up before scanning for kernels.
		time.Sleep(cfg.StartupGrace())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtimeDir := cfg.Paths.RuntimeDir
	if runtimeDir == "" {
		runtimeDir = monitor.DefaultRuntimeDir()
	}

	daemon := monitor.StartDaemon(ctx, monitor.Config{
		RuntimeDir:        runtimeDir,
		DiscoveryInterval: cfg.DiscoveryInterval(),
		Watcher: monitor.WatcherConfig{
			ReceiveTimeout: cfg.ReceiveTimeout(),
			PassDelay:      cfg.PassDelay(),
			ErrorBackoff:   cfg.ErrorBackoff(),
		},
	}, execLog)

	fmt.Printf("Starting kernel monitor (checking for new kernels every %s)...\n", cfg.DiscoveryInterval())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	<-ctx.Done()
	stop()

	fmt.Println("\n\nShutting down...")

	if srv != nil {
		fmt.Println("Stopping Jupyter server...")
		if err := srv.Terminate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping Jupyter server: %v\n", err)
		}
	}

	if err := daemon.Stop(); err != nil {
		return fmt.Errorf("failed to finalize execution log: %w", err)
	}

	fmt.Printf("\nLog saved to: %s\n", output)
	return nil
}
