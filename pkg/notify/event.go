package notify

import (
	"time"

	"github.com/samvad-hq/recordkv/pkg/records"
)

// Mutation kinds carried by ChangeEvent.Op.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent is the payload published downstream after a successful mutation.
type ChangeEvent struct {
	Op         string         `json:"op"`
	Key        string         `json:"key"`
	Record     records.Record `json:"record,omitempty"`
	Endpoint   string         `json:"endpoint"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewChangeEvent constructs a ChangeEvent stamped with the current time.
func NewChangeEvent(op, endpoint, key string, rec records.Record) ChangeEvent {
	return ChangeEvent{
		Op:         op,
		Key:        key,
		Record:     rec,
		Endpoint:   endpoint,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ChangeEvent) attributes() map[string]string {
	return map[string]string{"op": e.Op, "key": e.Key}
}
