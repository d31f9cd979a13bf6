package monitor

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Scanner discovers running kernels by the connection descriptors they write
// to the Jupyter runtime directory.
type Scanner struct {
	runtimeDir string
}

// NewScanner creates a scanner over the given runtime directory.
func NewScanner(runtimeDir string) *Scanner {
	return &Scanner{runtimeDir: runtimeDir}
}

// Poll returns the full set of kernels currently advertised in the runtime
// directory. A scan failure (missing or unreadable directory) is logged to
// the console and yields an empty set; the caller's polling cadence provides
// the retry.
func (s *Scanner) Poll() []KernelIdentity {
	entries, err := os.ReadDir(s.runtimeDir)
	if err != nil {
		log.Printf("Error finding kernels: %v", err)
		return nil
	}

	var kernels []KernelIdentity
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "kernel-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		kernels = append(kernels, KernelIdentity{
			ID:             strings.TrimSuffix(strings.TrimPrefix(name, "kernel-"), ".json"),
			ConnectionFile: filepath.Join(s.runtimeDir, name),
		})
	}

	return kernels
}

// DefaultRuntimeDir resolves the Jupyter runtime directory the way
// jupyter_core does: JUPYTER_RUNTIME_DIR, then XDG_RUNTIME_DIR/jupyter, then
// ~/.local/share/jupyter/runtime.
func DefaultRuntimeDir() string {
	if dir := os.Getenv("JUPYTER_RUNTIME_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "jupyter")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/tmp"
	}
	return filepath.Join(home, ".local", "share", "jupyter", "runtime")
}
