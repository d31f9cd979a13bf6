package kernel

import (
	"encoding/json"
	"fmt"
	"os"
)

// ConnectionInfo is the parsed form of a kernel connection descriptor, the
// small JSON manifest a kernel writes to the runtime directory so clients can
// attach to its channels.
type ConnectionInfo struct {
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	IP              string `json:"ip"`
	Key             string `json:"key"`
	Transport       string `json:"transport"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name"`
}

// LoadConnectionFile reads and parses a kernel connection descriptor.
func LoadConnectionFile(path string) (*ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection file: %w", err)
	}

	var info ConnectionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse connection file %s: %w", path, err)
	}

	if info.Transport == "" {
		info.Transport = "tcp"
	}

	return &info, nil
}

// Addr returns the endpoint address for one of the descriptor's ports.
// IPC endpoints are named "<ip>-<port>" per the Jupyter convention.
func (ci *ConnectionInfo) Addr(port int) string {
	if ci.Transport == "ipc" {
		return fmt.Sprintf("ipc://%s-%d", ci.IP, port)
	}
	return fmt.Sprintf("%s://%s:%d", ci.Transport, ci.IP, port)
}
