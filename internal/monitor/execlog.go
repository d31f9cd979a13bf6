package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	headerRule = strings.Repeat("=", 80)
	recordRule = strings.Repeat("-", 80)
)

// ExecutionLog is the append-only execution log. Appends are serialized by a
// single-writer lock and flushed before returning, so records from concurrent
// watchers never interleave and survive a crash mid-process.
type ExecutionLog struct {
	path string

	mu   sync.Mutex
	file *os.File

	footerOnce sync.Once
}

// NewExecutionLog truncates or creates the log file and writes the header.
func NewExecutionLog(path string) (*ExecutionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open execution log: %w", err)
	}

	header := fmt.Sprintf("Jupyter Notebook Execution Log\nStarted at: %s\n%s\n\n",
		time.Now().Format(time.RFC3339Nano), headerRule)
	if _, err := file.WriteString(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write log header: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to flush log header: %w", err)
	}

	return &ExecutionLog{path: path, file: file}, nil
}

// Path returns the log file location.
func (l *ExecutionLog) Path() string {
	return l.path
}

// Append writes one record as an indented JSON block followed by the
// separator rule, and flushes it durably before returning.
func (l *ExecutionLog) Append(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	var block bytes.Buffer
	block.Write(data)
	block.WriteByte('\n')
	block.WriteString(recordRule)
	block.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(block.Bytes()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return l.file.Sync()
}

// Close appends the footer with the end timestamp and final cell total, then
// closes the file. The footer is written at most once; later calls are no-ops.
func (l *ExecutionLog) Close(totalCells int64) error {
	var err error
	l.footerOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		footer := fmt.Sprintf("\n%s\nStopped at: %s\nTotal cells executed: %d\n",
			headerRule, time.Now().Format(time.RFC3339Nano), totalCells)
		if _, werr := l.file.WriteString(footer); werr != nil {
			err = fmt.Errorf("failed to write log footer: %w", werr)
			l.file.Close()
			return
		}
		if serr := l.file.Sync(); serr != nil {
			err = fmt.Errorf("failed to flush log footer: %w", serr)
			l.file.Close()
			return
		}
		err = l.file.Close()
	})
	return err
}

// ReadRecords parses an execution log file back into its records. Blocks that
// do not parse as records (the header, the footer, torn writes) are skipped.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution log: %w", err)
	}

	var records []Record
	for _, block := range strings.Split(string(data), recordRule+"\n") {
		start := strings.Index(block, "{")
		if start < 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(strings.TrimSpace(block[start:])), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
