package kernel

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
)

// wireDelimiter separates routing identities from the signed message frames
// in the Jupyter wire protocol.
var wireDelimiter = []byte("<IDS|MSG>")

// channelBuffer bounds how many undelivered messages a channel holds before
// new arrivals are dropped.
const channelBuffer = 64

// Dial connects to the kernel described by connectionFile and starts its
// three channels. The returned client keeps one reader goroutine per channel
// until Close is called or ctx is canceled.
func Dial(ctx context.Context, connectionFile string) (Client, error) {
	info, err := LoadConnectionFile(connectionFile)
	if err != nil {
		return nil, err
	}

	sockCtx, cancel := context.WithCancel(ctx)
	c := &zmqClient{info: info, cancel: cancel}

	iopub := zmq4.NewSub(sockCtx)
	if err := iopub.Dial(info.Addr(info.IOPubPort)); err != nil {
		iopub.Close()
		c.Close()
		return nil, fmt.Errorf("failed to connect iopub channel: %w", err)
	}
	if err := iopub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		iopub.Close()
		c.Close()
		return nil, fmt.Errorf("failed to subscribe iopub channel: %w", err)
	}

	shell := zmq4.NewDealer(sockCtx)
	if err := shell.Dial(info.Addr(info.ShellPort)); err != nil {
		iopub.Close()
		c.Close()
		return nil, fmt.Errorf("failed to connect shell channel: %w", err)
	}

	stdin := zmq4.NewDealer(sockCtx)
	if err := stdin.Dial(info.Addr(info.StdinPort)); err != nil {
		iopub.Close()
		shell.Close()
		c.Close()
		return nil, fmt.Errorf("failed to connect stdin channel: %w", err)
	}

	c.iopub = c.startChannel(sockCtx, iopub)
	c.shell = c.startChannel(sockCtx, shell)
	c.stdin = c.startChannel(sockCtx, stdin)

	return c, nil
}

type zmqClient struct {
	info   *ConnectionInfo
	cancel context.CancelFunc
	wg     sync.WaitGroup

	iopub *zmqChannel
	shell *zmqChannel
	stdin *zmqChannel

	closeOnce sync.Once
}

func (c *zmqClient) IOPub() MessageChannel { return c.iopub }
func (c *zmqClient) Shell() MessageChannel { return c.shell }
func (c *zmqClient) Stdin() MessageChannel { return c.stdin }

// Close stops the reader goroutines and closes the sockets.
func (c *zmqClient) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		for _, ch := range []*zmqChannel{c.iopub, c.shell, c.stdin} {
			if ch != nil {
				ch.sock.Close()
			}
		}
		c.wg.Wait()
	})
	return nil
}

// startChannel spawns a reader goroutine that parses wire messages from sock
// into a buffered channel.
func (c *zmqClient) startChannel(ctx context.Context, sock zmq4.Socket) *zmqChannel {
	ch := &zmqChannel{sock: sock, msgs: make(chan *Message, channelBuffer)}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			raw, err := sock.Recv()
			if err != nil {
				// Socket closed or context canceled.
				return
			}
			msg, err := parseWireMessage(raw.Frames, c.info)
			if err != nil {
				continue
			}
			select {
			case ch.msgs <- msg:
			case <-ctx.Done():
				return
			default:
				// Buffer full, drop the message.
			}
		}
	}()
	return ch
}

type zmqChannel struct {
	sock zmq4.Socket
	msgs chan *Message
}

func (ch *zmqChannel) Ready() bool {
	return len(ch.msgs) > 0
}

func (ch *zmqChannel) Receive(timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-ch.msgs:
		return msg, nil
	case <-timer.C:
		return nil, nil
	}
}

// parseWireMessage decodes one multipart wire message: routing identities, the
// <IDS|MSG> delimiter, an HMAC signature, then the header, parent header,
// metadata, and content JSON frames.
func parseWireMessage(frames [][]byte, info *ConnectionInfo) (*Message, error) {
	delim := -1
	for i, frame := range frames {
		if bytes.Equal(frame, wireDelimiter) {
			delim = i
			break
		}
	}
	if delim < 0 || len(frames) < delim+6 {
		return nil, fmt.Errorf("malformed wire message: %d frames", len(frames))
	}

	signature := frames[delim+1]
	signed := frames[delim+2 : delim+6]

	if info.Key != "" {
		if err := verifySignature(signature, signed, info); err != nil {
			return nil, err
		}
	}

	var msg Message
	if err := json.Unmarshal(signed[0], &msg.Header); err != nil {
		return nil, fmt.Errorf("failed to parse message header: %w", err)
	}
	if err := json.Unmarshal(signed[3], &msg.Content); err != nil {
		return nil, fmt.Errorf("failed to parse message content: %w", err)
	}

	return &msg, nil
}

// verifySignature checks the hex HMAC over the signed frames. Only
// hmac-sha256 is supported; it is the scheme every current kernel writes.
func verifySignature(signature []byte, signed [][]byte, info *ConnectionInfo) error {
	if info.SignatureScheme != "" && info.SignatureScheme != "hmac-sha256" {
		return fmt.Errorf("unsupported signature scheme %q", info.SignatureScheme)
	}

	mac := hmac.New(sha256.New, []byte(info.Key))
	for _, frame := range signed {
		mac.Write(frame)
	}
	expected := make([]byte, hex.EncodedLen(mac.Size()))
	hex.Encode(expected, mac.Sum(nil))

	if !hmac.Equal(signature, expected) {
		return fmt.Errorf("message signature mismatch")
	}
	return nil
}
