package events

import (
	"time"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// Source is the EventBridge source for hierarchy events
const Source = "xams.banks"

// Event types
const (
	TypeBankCreated = "bank.created"
	TypeBankRenamed = "bank.renamed"
	TypeBankDeleted = "bank.deleted"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// BankChanged is raised after any structural change to a bank. RootID is the
// top-level bank whose tree changed, ParentPath locates the bank inside it.
type BankChanged struct {
	BaseEvent
	BankID     valueobjects.BankID   `json:"bank_id"`
	RootID     valueobjects.BankID   `json:"root_id"`
	ParentPath valueobjects.BankPath `json:"parent_path"`
	Name       string                `json:"name,omitempty"`
	Removed    int                   `json:"removed,omitempty"`
}

// NewBankCreated creates a bank.created event
func NewBankCreated(id, rootID valueobjects.BankID, parentPath valueobjects.BankPath, name string, at time.Time) BankChanged {
	return newBankChanged(TypeBankCreated, id, rootID, parentPath, at, func(e *BankChanged) { e.Name = name })
}

// NewBankRenamed creates a bank.renamed event
func NewBankRenamed(id, rootID valueobjects.BankID, parentPath valueobjects.BankPath, name string, at time.Time) BankChanged {
	return newBankChanged(TypeBankRenamed, id, rootID, parentPath, at, func(e *BankChanged) { e.Name = name })
}

// NewBankDeleted creates a bank.deleted event; removed counts the bank and its descendants.
func NewBankDeleted(id, rootID valueobjects.BankID, parentPath valueobjects.BankPath, removed int, at time.Time) BankChanged {
	return newBankChanged(TypeBankDeleted, id, rootID, parentPath, at, func(e *BankChanged) { e.Removed = removed })
}

func newBankChanged(eventType string, id, rootID valueobjects.BankID, parentPath valueobjects.BankPath, at time.Time, opt func(*BankChanged)) BankChanged {
	e := BankChanged{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   eventType,
			Timestamp:   at,
		},
		BankID:     id,
		RootID:     rootID,
		ParentPath: parentPath,
	}
	opt(&e)
	return e
}
