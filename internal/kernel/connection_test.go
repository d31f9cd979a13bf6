package kernel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConnectionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel-abc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"shell_port": 53794,
		"iopub_port": 53795,
		"stdin_port": 53796,
		"control_port": 53797,
		"hb_port": 53798,
		"ip": "127.0.0.1",
		"key": "a0436f6c-1916-498b-8eb9-e81ab9368e84",
		"transport": "tcp",
		"signature_scheme": "hmac-sha256",
		"kernel_name": "python3"
	}`), 0o644))

	info, err := LoadConnectionFile(path)
	require.NoError(t, err)

	assert.Equal(t, 53794, info.ShellPort)
	assert.Equal(t, 53795, info.IOPubPort)
	assert.Equal(t, 53796, info.StdinPort)
	assert.Equal(t, "127.0.0.1", info.IP)
	assert.Equal(t, "hmac-sha256", info.SignatureScheme)
	assert.Equal(t, "python3", info.KernelName)
	assert.Equal(t, "tcp://127.0.0.1:53795", info.Addr(info.IOPubPort))
}

func TestLoadConnectionFileDefaultsTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel-min.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ip": "127.0.0.1", "shell_port": 1}`), 0o644))

	info, err := LoadConnectionFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp", info.Transport)
}

func TestAddrIPC(t *testing.T) {
	info := &ConnectionInfo{Transport: "ipc", IP: "/tmp/kernel-x", IOPubPort: 2}
	assert.Equal(t, "ipc:///tmp/kernel-x-2", info.Addr(info.IOPubPort))
}

func TestLoadConnectionFileErrors(t *testing.T) {
	_, err := LoadConnectionFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "kernel-bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = LoadConnectionFile(path)
	assert.Error(t, err)
}
