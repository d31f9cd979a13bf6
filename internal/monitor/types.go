package monitor

import "time"

// RecordType classifies a logged execution event.
type RecordType string

const (
	RecordInput        RecordType = "input"
	RecordStream       RecordType = "stream"
	RecordOutput       RecordType = "output"
	RecordError        RecordType = "error"
	RecordDisplay      RecordType = "display"
	RecordExecuteReply RecordType = "execute_reply"
	RecordStdin        RecordType = "stdin"
)

// Channel names one of the three logical message streams of a kernel.
type Channel string

const (
	ChannelIOPub Channel = "iopub"
	ChannelShell Channel = "shell"
	ChannelStdin Channel = "stdin"
)

// Record is one normalized execution event, the unit of persistence in the
// execution log. Type-specific fields are omitted when empty; Password is a
// pointer so stdin records always carry it, even when false.
type Record struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	KernelID  string     `json:"kernel_id"`
	Type      RecordType `json:"type"`

	CellNumber     int64                  `json:"cell_number,omitempty"`
	ExecutionCount int                    `json:"execution_count,omitempty"`
	Code           string                 `json:"code,omitempty"`
	StreamName     string                 `json:"stream_name,omitempty"`
	Content        string                 `json:"content,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	ErrorName      string                 `json:"error_name,omitempty"`
	ErrorValue     string                 `json:"error_value,omitempty"`
	Traceback      []string               `json:"traceback,omitempty"`
	Status         string                 `json:"status,omitempty"`
	Prompt         string                 `json:"prompt,omitempty"`
	Password       *bool                  `json:"password,omitempty"`
}

// KernelIdentity names a discovered kernel and the connection descriptor it
// was discovered through. Identities are immutable for the process lifetime.
type KernelIdentity struct {
	ID             string
	ConnectionFile string
}
