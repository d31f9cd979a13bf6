package kernel

import (
	"context"
	"time"
)

// MessageHeader identifies a message on the wire.
type MessageHeader struct {
	MsgID    string `json:"msg_id"`
	MsgType  string `json:"msg_type"`
	Session  string `json:"session"`
	Username string `json:"username"`
	Date     string `json:"date"`
	Version  string `json:"version"`
}

// Message is one kernel protocol message. The content mapping is
// kind-specific and read-only to callers.
type Message struct {
	Header  MessageHeader
	Content map[string]interface{}
}

// MessageChannel is one of the three logical message streams exposed by a
// kernel client.
type MessageChannel interface {
	// Ready reports whether a message can be received without blocking.
	Ready() bool

	// Receive returns the next message, or nil if none arrives within
	// timeout.
	Receive(timeout time.Duration) (*Message, error)
}

// Client provides access to a running kernel's channels.
type Client interface {
	IOPub() MessageChannel
	Shell() MessageChannel
	Stdin() MessageChannel

	// Close releases the channel resources. Safe to call multiple times.
	Close() error
}

// Dialer attaches to a running kernel described by a connection file.
type Dialer func(ctx context.Context, connectionFile string) (Client, error)
