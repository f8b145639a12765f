package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/ledger"
)

// Routing keys on the ledger topic exchange
const (
	RoutingLedgerChanged = "ledger.changed"
	RoutingLedgerWipe    = "ledger.wipe"
)

// LedgerChangedMessage tells other processes that the shared store changed.
// Receivers reload their live views; the payload is informational.
type LedgerChangedMessage struct {
	ID        string            `json:"id"`
	Kind      ledger.ChangeKind `json:"kind"`
	EntityID  int64             `json:"entity_id,omitempty"`
	Origin    string            `json:"origin"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change notice stamped with a fresh id
func NewLedgerChangedMessage(kind ledger.ChangeKind, entityID int64, origin string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		EntityID:  entityID,
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// WipeRequestMessage asks the worker to delete every transaction and then
// every category.
type WipeRequestMessage struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewWipeRequestMessage creates a wipe request stamped with a fresh id
func NewWipeRequestMessage(reason string) *WipeRequestMessage {
	return &WipeRequestMessage{
		ID:        uuid.NewString(),
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *WipeRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// WipeRequestMessageFromJSON creates a message from JSON bytes
func WipeRequestMessageFromJSON(data []byte) (*WipeRequestMessage, error) {
	var msg WipeRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
