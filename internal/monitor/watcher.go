package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smothiki/jupyterlauncher/internal/kernel"
)

// WatcherConfig tunes one per-kernel monitoring loop.
type WatcherConfig struct {
	// ReceiveTimeout bounds each channel receive.
	ReceiveTimeout time.Duration
	// PassDelay is the sleep after each full sweep over the channels.
	PassDelay time.Duration
	// ErrorBackoff is the wait after a message processing failure.
	ErrorBackoff time.Duration
}

func (c WatcherConfig) withDefaults() WatcherConfig {
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = 100 * time.Millisecond
	}
	if c.PassDelay <= 0 {
		c.PassDelay = 10 * time.Millisecond
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Second
	}
	return c
}

// Watcher monitors a single kernel: it polls the kernel's three channels,
// classifies what arrives, and appends the records to the execution log.
// Watchers run fully independently; one failing never affects the others.
type Watcher struct {
	identity KernelIdentity
	dial     kernel.Dialer
	state    *State
	execLog  *ExecutionLog
	cfg      WatcherConfig
}

// NewWatcher creates a watcher for one discovered kernel.
func NewWatcher(identity KernelIdentity, dial kernel.Dialer, state *State, execLog *ExecutionLog, cfg WatcherConfig) *Watcher {
	return &Watcher{
		identity: identity,
		dial:     dial,
		state:    state,
		execLog:  execLog,
		cfg:      cfg.withDefaults(),
	}
}

// Run blocks until ctx is canceled or the kernel cannot be attached. All
// effects are execution log appends and console prints.
func (w *Watcher) Run(ctx context.Context) {
	client, err := w.dial(ctx, w.identity.ConnectionFile)
	if err != nil {
		fmt.Printf("Failed to monitor kernel %s: %v\n", w.identity.ID, err)
		return
	}
	defer client.Close()

	fmt.Printf("Monitoring kernel: %s\n", w.identity.ID)

	channels := []struct {
		name Channel
		ch   kernel.MessageChannel
	}{
		{ChannelIOPub, client.IOPub()},
		{ChannelShell, client.Shell()},
		{ChannelStdin, client.Stdin()},
	}

	for ctx.Err() == nil {
		for _, c := range channels {
			if ctx.Err() != nil {
				return
			}
			if !c.ch.Ready() {
				continue
			}

			msg, err := c.ch.Receive(w.cfg.ReceiveTimeout)
			if err != nil {
				// A single bad message never tears the watcher down;
				// the backoff bounds the retry rate instead.
				fmt.Printf("Error monitoring kernel %s: %v\n", w.identity.ID, err)
				if !sleepCtx(ctx, w.cfg.ErrorBackoff) {
					return
				}
				continue
			}
			if msg == nil {
				continue
			}
			w.process(c.name, msg)
		}

		if !sleepCtx(ctx, w.cfg.PassDelay) {
			return
		}
	}
}

func (w *Watcher) process(channel Channel, msg *kernel.Message) {
	rec := Classify(w.state, w.identity.ID, channel, msg)
	if rec == nil {
		return
	}
	w.echo(rec)
	if err := w.execLog.Append(rec); err != nil {
		fmt.Printf("Error logging record for kernel %s: %v\n", w.identity.ID, err)
	}
}

// echo prints the console line for a record.
func (w *Watcher) echo(rec *Record) {
	switch rec.Type {
	case RecordInput:
		fmt.Printf("[Cell %d] Execution started\n", rec.CellNumber)
	case RecordStream:
		name := rec.StreamName
		if name == "" {
			name = "output"
		}
		fmt.Printf("[%s] %s\n", strings.ToUpper(name), strings.TrimSpace(rec.Content))
	case RecordOutput:
		if text, ok := rec.Data["text/plain"].(string); ok {
			fmt.Printf("[OUTPUT] %s\n", text)
		}
	case RecordError:
		fmt.Printf("[ERROR] %s: %s\n", rec.ErrorName, rec.ErrorValue)
	case RecordStdin:
		fmt.Printf("[STDIN] Input requested: %s\n", rec.Prompt)
	}
}

// sleepCtx waits for d, returning false if ctx is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
