package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"moneytracker/internal/core"
)

// EventType names a ledger mutation.
type EventType string

const (
	EventTransactionAdded   EventType = "transaction.added"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventCategoryAdded      EventType = "category.added"
	EventCategoryDeleted    EventType = "category.deleted"
	EventCategoryRenamed    EventType = "category.renamed"
	EventLedgerCleared      EventType = "ledger.cleared"
)

// TransactionPayload is the wire form of a transaction.
type TransactionPayload struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// CategoryPayload is the wire form of a category.
type CategoryPayload struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// LedgerEvent describes one successful ledger mutation. Position is the
// 1-based position of the affected record.
type LedgerEvent struct {
	ID          string              `json:"id"`
	Type        EventType           `json:"type"`
	Timestamp   time.Time           `json:"timestamp"`
	Position    int                 `json:"position,omitempty"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	Category    *CategoryPayload    `json:"category,omitempty"`
	OldName     string              `json:"old_name,omitempty"`
	NewName     string              `json:"new_name,omitempty"`
}

// NewLedgerEvent creates an event with a fresh ID and the current time.
func NewLedgerEvent(t EventType) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// WithTransaction attaches a transaction and its 1-based position.
func (e *LedgerEvent) WithTransaction(position int, t core.Transaction) *LedgerEvent {
	e.Position = position
	e.Transaction = &TransactionPayload{
		Kind:        string(t.Kind),
		Amount:      t.Amount.String(),
		Date:        t.Date.String(),
		Category:    t.Category,
		Description: t.Description,
	}
	return e
}

// WithCategory attaches a category and its 1-based position.
func (e *LedgerEvent) WithCategory(position int, c core.Category) *LedgerEvent {
	e.Position = position
	e.Category = &CategoryPayload{Kind: string(c.Kind), Name: c.Name}
	return e
}

// WithRename records the names before and after an edit.
func (e *LedgerEvent) WithRename(oldName, newName string) *LedgerEvent {
	e.OldName = oldName
	e.NewName = newName
	return e
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
