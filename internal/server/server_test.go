package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "notebook dir and port",
			cfg:  Config{NotebookDir: "/notebooks", Port: 8888},
			want: []string{"jupyter", "notebook", "--notebook-dir", "/notebooks", "--port", "8888", "--no-browser"},
		},
		{
			name: "no notebook dir",
			cfg:  Config{Port: 9999},
			want: []string{"jupyter", "notebook", "--port", "9999", "--no-browser"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Args(tt.cfg))
		})
	}
}

func TestTerminateNilServer(t *testing.T) {
	var s *Server
	assert.NoError(t, s.Terminate())
}
