package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smothiki/jupyterlauncher/internal/kernel"
)

type fakeChannel struct {
	mu   sync.Mutex
	msgs []*kernel.Message
	errs []error
}

func (c *fakeChannel) push(msgs ...*kernel.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
}

func (c *fakeChannel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs) > 0 || len(c.errs) > 0
}

func (c *fakeChannel) Receive(timeout time.Duration) (*kernel.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return nil, err
	}
	if len(c.msgs) == 0 {
		return nil, nil
	}
	msg := c.msgs[0]
	c.msgs = c.msgs[1:]
	return msg, nil
}

type fakeClient struct {
	iopub, shell, stdin *fakeChannel
	closed              atomic.Bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{iopub: &fakeChannel{}, shell: &fakeChannel{}, stdin: &fakeChannel{}}
}

func (c *fakeClient) IOPub() kernel.MessageChannel { return c.iopub }
func (c *fakeClient) Shell() kernel.MessageChannel { return c.shell }
func (c *fakeClient) Stdin() kernel.MessageChannel { return c.stdin }
func (c *fakeClient) Close() error {
	c.closed.Store(true)
	return nil
}

func dialerFor(client kernel.Client) kernel.Dialer {
	return func(ctx context.Context, connectionFile string) (kernel.Client, error) {
		return client, nil
	}
}

func fastConfig() WatcherConfig {
	return WatcherConfig{
		ReceiveTimeout: time.Millisecond,
		PassDelay:      time.Millisecond,
		ErrorBackoff:   time.Millisecond,
	}
}

func TestWatcherPreservesChannelOrder(t *testing.T) {
	execLog, path := newTestLog(t)
	client := newFakeClient()

	const count = 50
	for i := 0; i < count; i++ {
		client.iopub.push(msg("stream", map[string]interface{}{
			"name": "stdout",
			"text": fmt.Sprintf("line-%03d", i),
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(KernelIdentity{ID: "k1"}, dialerFor(client), NewState(), execLog, fastConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		records, err := ReadRecords(path)
		return err == nil && len(records) == count
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, count)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("line-%03d", i), rec.Content, "record %d out of order", i)
	}
	assert.True(t, client.closed.Load(), "client must be released on shutdown")
}

func TestWatcherAttachFailureIsIsolated(t *testing.T) {
	execLog, path := newTestLog(t)

	dial := func(ctx context.Context, connectionFile string) (kernel.Client, error) {
		return nil, errors.New("stale connection file")
	}
	w := NewWatcher(KernelIdentity{ID: "gone"}, dial, NewState(), execLog, fastConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not exit after attach failure")
	}

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	execLog, _ := newTestLog(t)
	client := newFakeClient()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(KernelIdentity{ID: "idle"}, dialerFor(client), NewState(), execLog, fastConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not observe cancellation")
	}
	assert.True(t, client.closed.Load())
}

func TestWatcherSurvivesBadMessages(t *testing.T) {
	execLog, path := newTestLog(t)
	client := newFakeClient()
	client.iopub.errs = append(client.iopub.errs, errors.New("garbled frame"))
	client.iopub.push(msg("execute_input", map[string]interface{}{
		"execution_count": float64(1),
		"code":            "print('ok')",
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWatcher(KernelIdentity{ID: "flaky"}, dialerFor(client), NewState(), execLog, fastConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	// The error must not tear down the loop; the next message still lands.
	require.Eventually(t, func() bool {
		records, err := ReadRecords(path)
		return err == nil && len(records) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
