package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeActivated EventType = "activated"
	EventTypeCancelled EventType = "cancelled"
	EventTypeCollected EventType = "collected"
	EventTypeOverdue   EventType = "overdue"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeContract    EntityType = "contract"
	EntityTypeInstallment EntityType = "installment"
	EntityTypePlan        EntityType = "plan"
	EntityTypeCustomer    EntityType = "customer"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "contract.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "contract"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ContractCreated creates a contract.created event
func ContractCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeContract, payload)
}

// ContractActivated creates a contract.activated event
func ContractActivated(payload interface{}) Event {
	return NewEvent(EventTypeActivated, EntityTypeContract, payload)
}

// ContractUpdated creates a contract.updated event
func ContractUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeContract, payload)
}

// ContractCancelled creates a contract.cancelled event
func ContractCancelled(payload interface{}) Event {
	return NewEvent(EventTypeCancelled, EntityTypeContract, payload)
}

// InstallmentCollected creates an installment.collected event
func InstallmentCollected(payload interface{}) Event {
	return NewEvent(EventTypeCollected, EntityTypeInstallment, payload)
}

// InstallmentOverdue creates an installment.overdue event
func InstallmentOverdue(payload interface{}) Event {
	return NewEvent(EventTypeOverdue, EntityTypeInstallment, payload)
}

// PlanUpdated creates a plan.updated event
func PlanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePlan, payload)
}

// CustomerCreated creates a customer.created event
func CustomerCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCustomer, payload)
}
