package eventlog

import (
	"encoding/json"
	"time"

	"hubhook/internal/channel"

	"github.com/google/uuid"
)

// Record is a single webhook event accepted by the gateway
type Record struct {
	ID         string          `json:"id"`
	Source     channel.Channel `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
	Body       json.RawMessage `json:"body"`
}

// NewRecord builds a record for a payload received on source at receivedAt.
// body must already be valid JSON; it is copied.
func NewRecord(source channel.Channel, body []byte, receivedAt time.Time) Record {
	return Record{
		ID:         uuid.NewString(),
		Source:     source,
		ReceivedAt: receivedAt.UTC(),
		Body:       cloneBody(body),
	}
}

// clone returns a copy that shares no memory with r
func (r Record) clone() Record {
	r.Body = cloneBody(r.Body)
	return r
}

func cloneBody(body []byte) json.RawMessage {
	if body == nil {
		return nil
	}
	out := make(json.RawMessage, len(body))
	copy(out, body)
	return out
}

// newestFirst returns copies of records (stored oldest first) in reverse order
func newestFirst(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r.clone()
	}
	return out
}
