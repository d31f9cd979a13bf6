package server

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// Config describes how to launch the notebook server.
type Config struct {
	NotebookDir string
	Port        int
}

// Args returns the argv used to launch the notebook server.
func Args(cfg Config) []string {
	args := []string{"jupyter", "notebook"}
	if cfg.NotebookDir != "" {
		args = append(args, "--notebook-dir", cfg.NotebookDir)
	}
	args = append(args, "--port", strconv.Itoa(cfg.Port), "--no-browser")
	return args
}

// Server is a running Jupyter notebook server process managed by the
// launcher. The launcher only cares about its lifecycle, not its HTTP
// behavior.
type Server struct {
	cmd *exec.Cmd
}

// Start launches the notebook server and returns once the process is
// spawned. Server output is passed through to the launcher's stdio.
func Start(cfg Config) (*Server, error) {
	args := Args(cfg)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Printf("Starting Jupyter notebook server on port %d...\n", cfg.Port)
	fmt.Printf("Command: %s\n\n", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start jupyter notebook: %w", err)
	}
	return &Server{cmd: cmd}, nil
}

// Terminate asks the server to exit and waits for it. A server that already
// exited is not an error.
func (s *Server) Terminate() error {
	if s == nil || s.cmd.Process == nil {
		return nil
	}

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal jupyter notebook: %w", err)
	}

	if err := s.cmd.Wait(); err != nil {
		// Dying from our SIGTERM reports as an exit error; that is the
		// expected outcome here.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("failed to wait for jupyter notebook: %w", err)
		}
	}
	return nil
}
