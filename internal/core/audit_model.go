package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates audit events. One flat enum with a derivable kind
// replaces a subtype hierarchy; the listener switches exhaustively on Kind.
type EventType string

const (
	EventUserLogin  EventType = "USER_LOGIN"
	EventUserLogout EventType = "USER_LOGOUT"

	EventInventoryCreated EventType = "INVENTORY_CREATED"
	EventInventoryUpdated EventType = "INVENTORY_UPDATED"
	EventInventoryDeleted EventType = "INVENTORY_DELETED"

	EventLocationCreated EventType = "INVENTORY_LOCATION_CREATED"
	EventLocationUpdated EventType = "INVENTORY_LOCATION_UPDATED"
	EventLocationDeleted EventType = "INVENTORY_LOCATION_DELETED"

	EventInboundShipmentCreated EventType = "INBOUND_SHIPMENT_CREATED"
	EventInboundShipmentUpdated EventType = "INBOUND_SHIPMENT_UPDATED"
	EventInboundShipmentDeleted EventType = "INBOUND_SHIPMENT_DELETED"

	EventInventoryRefCreated EventType = "INVENTORY_REFERENCE_CREATED"
	EventInventoryRefUpdated EventType = "INVENTORY_REFERENCE_UPDATED"
	EventInventoryRefDeleted EventType = "INVENTORY_REFERENCE_DELETED"

	EventUserCreated EventType = "USER_CREATED"
	EventUserUpdated EventType = "USER_UPDATED"
	EventUserDeleted EventType = "USER_DELETED"
)

// EventKind is the audit-handling classification of an event type.
type EventKind int

const (
	KindAuth EventKind = iota
	KindCreate
	KindUpdate
	KindDelete
)

func (t EventType) Kind() EventKind {
	switch {
	case t == EventUserLogin || t == EventUserLogout:
		return KindAuth
	case strings.HasSuffix(string(t), "_CREATED"):
		return KindCreate
	case strings.HasSuffix(string(t), "_DELETED"):
		return KindDelete
	default:
		return KindUpdate
	}
}

// Event is the immutable payload published on the audit bus after a business
// transaction commits. Before/After are value snapshots captured while the
// producer still held its row locks; subscribers never touch shared state.
type Event struct {
	ID          uuid.UUID
	Type        EventType
	Actor       Actor
	EntityName  string
	EntityID    string
	Description string
	Before      map[string]any
	After       map[string]any
	OccurredAt  time.Time
}

// NewEvent stamps an event with an id and occurrence time.
func NewEvent(t EventType, actor Actor, entityName, entityID, description string, before, after map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		Actor:       actor,
		EntityName:  entityName,
		EntityID:    entityID,
		Description: description,
		Before:      before,
		After:       after,
		OccurredAt:  time.Now().UTC(),
	}
}

// AuditLogEntry is one immutable row of the audit trail. UserID is a weak
// reference: when the user row is removed it is nulled, never cascaded, and
// ActorName is denormalized so the trail outlives the user record.
type AuditLogEntry struct {
	ID           uuid.UUID
	UserID       *uuid.UUID
	ActorName    string
	EventType    EventType
	Description  string
	EntityName   string
	EntityID     string
	PreviousData map[string]any
	UpdatedData  map[string]any
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}
