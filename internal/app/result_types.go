package app

import (
	"time"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

// LocationResult is the caller-facing view of one bin.
type LocationResult struct {
	ID        string `json:"id"`
	BinNumber string `json:"binNumber"`
	Location  string `json:"location"`
	Quantity  string `json:"quantity"`
}

// InventoryResult is the caller-facing view of an inventory record with its
// bin locations. All quantities are decimal strings.
type InventoryResult struct {
	ID                string           `json:"id"`
	SKU               string           `json:"sku"`
	Quantity          string           `json:"quantity"`
	AllocatedQuantity string           `json:"allocatedQuantity"`
	InHandQuantity    string           `json:"inHandQuantity"`
	Description       string           `json:"description"`
	ColorName         string           `json:"colorName"`
	Locations         []LocationResult `json:"locations,omitempty"`
}

// ReceiveResult reports a single receipt.
type ReceiveResult struct {
	Inventory        InventoryResult `json:"inventory"`
	Location         LocationResult  `json:"location"`
	InventoryCreated bool            `json:"inventoryCreated"`
	LocationCreated  bool            `json:"locationCreated"`
}

// BulkGroupOutcome is the per-SKU outcome of a bulk receive.
type BulkGroupOutcome struct {
	SKU   string `json:"sku"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// BulkReceiveResult reports the outcome of every SKU group in an import.
type BulkReceiveResult struct {
	Groups []BulkGroupOutcome `json:"groups"`
	Failed int                `json:"failed"`
}

// AuditEntryResult is one row of the audit trail.
type AuditEntryResult struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId,omitempty"`
	ActorName    string         `json:"actorName"`
	EventType    string         `json:"eventType"`
	Description  string         `json:"description"`
	EntityName   string         `json:"entityName"`
	EntityID     string         `json:"entityId"`
	PreviousData map[string]any `json:"previousData,omitempty"`
	UpdatedData  map[string]any `json:"updatedData,omitempty"`
	IPAddress    string         `json:"ipAddress"`
	UserAgent    string         `json:"userAgent"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AuditListResult is one page of the audit trail.
type AuditListResult struct {
	Entries []AuditEntryResult `json:"entries"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

func inventoryResult(inv *core.Inventory, locs []core.InventoryLocation) InventoryResult {
	res := InventoryResult{
		ID:                inv.ID.String(),
		SKU:               inv.SKU,
		Quantity:          inv.Quantity.String(),
		AllocatedQuantity: inv.AllocatedQuantity.String(),
		InHandQuantity:    inv.InHandQuantity.String(),
		Description:       inv.Description,
		ColorName:         inv.ColorName,
	}
	for _, loc := range locs {
		res.Locations = append(res.Locations, locationResult(&loc))
	}
	return res
}

func locationResult(loc *core.InventoryLocation) LocationResult {
	return LocationResult{
		ID:        loc.ID.String(),
		BinNumber: loc.BinNumber,
		Location:  loc.Location,
		Quantity:  loc.Quantity.String(),
	}
}

func auditEntryResult(e core.AuditLogEntry) AuditEntryResult {
	res := AuditEntryResult{
		ID:           e.ID.String(),
		ActorName:    e.ActorName,
		EventType:    string(e.EventType),
		Description:  e.Description,
		EntityName:   e.EntityName,
		EntityID:     e.EntityID,
		PreviousData: e.PreviousData,
		UpdatedData:  e.UpdatedData,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.CreatedAt,
	}
	if e.UserID != nil {
		res.UserID = e.UserID.String()
	}
	return res
}
