package monitor

import (
	"time"

	"github.com/google/uuid"

	"github.com/smothiki/jupyterlauncher/internal/kernel"
)

// Classify maps one raw channel message to a log record. Message kinds that
// are not logged return nil; unknown kinds on any channel are deliberately
// dropped so future protocol additions never break a watcher.
//
// Classifying an execute_input bumps the shared cell counter and stamps the
// resulting total on the record.
func Classify(state *State, kernelID string, channel Channel, msg *kernel.Message) *Record {
	switch channel {
	case ChannelIOPub:
		return classifyIOPub(state, kernelID, msg)
	case ChannelShell:
		return classifyShell(kernelID, msg)
	case ChannelStdin:
		return classifyStdin(kernelID, msg)
	}
	return nil
}

func classifyIOPub(state *State, kernelID string, msg *kernel.Message) *Record {
	content := msg.Content

	switch msg.Header.MsgType {
	case "execute_input":
		rec := newRecord(kernelID, RecordInput)
		rec.CellNumber = state.NextCell()
		rec.ExecutionCount = contentInt(content, "execution_count")
		rec.Code = contentString(content, "code")
		return rec

	case "stream":
		rec := newRecord(kernelID, RecordStream)
		rec.StreamName = contentString(content, "name")
		rec.Content = contentString(content, "text")
		return rec

	case "execute_result":
		rec := newRecord(kernelID, RecordOutput)
		rec.ExecutionCount = contentInt(content, "execution_count")
		rec.Data = contentData(content, "data")
		return rec

	case "error":
		rec := newRecord(kernelID, RecordError)
		rec.ErrorName = contentString(content, "ename")
		rec.ErrorValue = contentString(content, "evalue")
		rec.Traceback = contentStrings(content, "traceback")
		return rec

	case "display_data":
		rec := newRecord(kernelID, RecordDisplay)
		rec.Data = contentData(content, "data")
		return rec
	}

	return nil
}

func classifyShell(kernelID string, msg *kernel.Message) *Record {
	if msg.Header.MsgType != "execute_reply" {
		return nil
	}
	rec := newRecord(kernelID, RecordExecuteReply)
	rec.Status = contentString(msg.Content, "status")
	rec.ExecutionCount = contentInt(msg.Content, "execution_count")
	return rec
}

// classifyStdin records any stdin-channel message as an input request.
func classifyStdin(kernelID string, msg *kernel.Message) *Record {
	rec := newRecord(kernelID, RecordStdin)
	rec.Prompt = contentString(msg.Content, "prompt")
	password := contentBool(msg.Content, "password")
	rec.Password = &password
	return rec
}

// newRecord stamps the common fields; the timestamp is capture time, not the
// kernel's event time.
func newRecord(kernelID string, recordType RecordType) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		KernelID:  kernelID,
		Type:      recordType,
	}
}

func contentString(content map[string]interface{}, key string) string {
	s, _ := content[key].(string)
	return s
}

func contentBool(content map[string]interface{}, key string) bool {
	b, _ := content[key].(bool)
	return b
}

func contentInt(content map[string]interface{}, key string) int {
	switch v := content[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func contentData(content map[string]interface{}, key string) map[string]interface{} {
	m, _ := content[key].(map[string]interface{})
	return m
}

func contentStrings(content map[string]interface{}, key string) []string {
	raw, _ := content[key].([]interface{})
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
