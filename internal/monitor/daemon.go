package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"github.com/smothiki/jupyterlauncher/internal/kernel"
)

// Config configures the monitoring supervisor.
type Config struct {
	// RuntimeDir is the directory scanned for kernel connection descriptors.
	RuntimeDir string
	// DiscoveryInterval is the pause between runtime directory scans.
	DiscoveryInterval time.Duration
	// Watcher tunes the per-kernel poll loops.
	Watcher WatcherConfig
	// Dial attaches to a discovered kernel. Defaults to kernel.Dial.
	Dial kernel.Dialer
	// Scanner overrides the runtime directory scanner.
	Scanner KernelScanner
}

// KernelScanner reports the kernels currently advertised by the runtime.
type KernelScanner interface {
	Poll() []KernelIdentity
}

// stopTimeout bounds how long Stop waits for watchers before detaching them.
const stopTimeout = 5 * time.Second

// Daemon supervises kernel discovery and the per-kernel watchers. It owns the
// shared session state and the shutdown sequence.
type Daemon struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     Config
	scanner KernelScanner
	state   *State
	execLog *ExecutionLog

	// attached is only touched from the discovery goroutine.
	attached map[string]struct{}

	wg   sync.WaitGroup
	done chan struct{}
}

// StartDaemon begins kernel discovery and monitoring in the background.
func StartDaemon(ctx context.Context, cfg Config, execLog *ExecutionLog) *Daemon {
	if cfg.DiscoveryInterval <= 0 {
		cfg.DiscoveryInterval = 2 * time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = kernel.Dial
	}
	scanner := cfg.Scanner
	if scanner == nil {
		scanner = NewScanner(cfg.RuntimeDir)
	}

	daemonCtx, cancel := context.WithCancel(ctx)
	d := &Daemon{
		ctx:      daemonCtx,
		cancel:   cancel,
		cfg:      cfg,
		scanner:  scanner,
		state:    NewState(),
		execLog:  execLog,
		attached: make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	go d.run()
	sddaemon.SdNotify(false, sddaemon.SdNotifyReady)

	return d
}

// run is the discovery loop: scan, attach new kernels, wait an interval.
func (d *Daemon) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.DiscoveryInterval)
	defer ticker.Stop()

	for {
		d.attachNew()
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// attachNew spawns a watcher for every kernel not already attached. An
// identity is attached at most once for the process lifetime, even when it is
// rediscovered on later polls.
func (d *Daemon) attachNew() {
	for _, identity := range d.scanner.Poll() {
		if _, ok := d.attached[identity.ID]; ok {
			continue
		}
		d.attached[identity.ID] = struct{}{}

		w := NewWatcher(identity, d.cfg.Dial, d.state, d.execLog, d.cfg.Watcher)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			w.Run(d.ctx)
		}()
	}
}

// Cells returns the running total of cells started across all kernels.
func (d *Daemon) Cells() int64 {
	return d.state.Cells()
}

// SessionID returns the identity of this monitoring session.
func (d *Daemon) SessionID() string {
	return d.state.SessionID
}

// Stop cancels discovery and every watcher, waits for them to observe the
// cancellation, then writes the log footer with the final cell total.
// Watchers that fail to stop in time are detached so shutdown never hangs.
func (d *Daemon) Stop() error {
	sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)
	d.cancel()

	finished := make(chan struct{})
	go func() {
		<-d.done
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(stopTimeout):
		fmt.Println("Timed out waiting for kernel monitors to stop")
	}

	return d.execLog.Close(d.state.Cells())
}
