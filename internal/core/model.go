package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for every failure path the allocation engine can surface.
// Adapters map these to stable machine codes; callers test with errors.Is.
var (
	// Validation errors — rejected before any row lock is taken where possible.
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidSKUFormat = errors.New("invalid sku format")
	ErrInvalidReversal  = errors.New("invalid reversal")

	// State errors — detected under lock, cause immediate rollback.
	ErrInsufficientQuantity     = errors.New("insufficient quantity")
	ErrInsufficientInHand       = errors.New("insufficient in-hand quantity")
	ErrQuantityExceedsAvailable = errors.New("quantity exceeds available")
	ErrQuantityExceedsAllocated = errors.New("quantity exceeds allocated")
	ErrInventoryNotFound        = errors.New("inventory not found")
	ErrLocationNotFound         = errors.New("inventory location not found")
	ErrLocationNotEmpty         = errors.New("inventory location not empty")
)

// Inventory is the per-SKU stock record. Quantity is the total across all bin
// locations and is always recomputed from the authoritative location sum
// before commit. AllocatedQuantity is stock reserved against confirmed orders;
// InHandQuantity is stock available to allocate. All three are non-negative
// integral decimals persisted as NUMERIC(30,0) — never floating point.
type Inventory struct {
	ID                uuid.UUID
	SKU               string
	Quantity          decimal.Decimal
	AllocatedQuantity decimal.Decimal
	InHandQuantity    decimal.Decimal

	// Dimensional attributes parsed from the SKU on auto-provisioning.
	Length      int
	Width       int
	Radius      int
	SkirtLength int
	Foam        string
	Taper       string
	ColorCode   string
	ColorName   string
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Snapshot returns a value copy of the record's business fields for audit
// diffing. Quantities are rendered as decimal strings so snapshots survive
// JSON round-trips without precision loss.
func (i *Inventory) Snapshot() map[string]any {
	return map[string]any{
		"sku":               i.SKU,
		"quantity":          i.Quantity.String(),
		"allocatedQuantity": i.AllocatedQuantity.String(),
		"inHandQuantity":    i.InHandQuantity.String(),
		"length":            i.Length,
		"width":             i.Width,
		"radius":            i.Radius,
		"skirtLength":       i.SkirtLength,
		"foam":              i.Foam,
		"taper":             i.Taper,
		"colorCode":         i.ColorCode,
		"colorName":         i.ColorName,
		"description":       i.Description,
	}
}

// InventoryLocation is one bin within a physical location holding stock for
// one inventory record. The (inventory_id, bin_number, location) triple is
// unique; repeated receipts into the same triple add to the existing quantity.
type InventoryLocation struct {
	ID          uuid.UUID
	InventoryID uuid.UUID
	BinNumber   string
	Location    string
	Quantity    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *InventoryLocation) Snapshot() map[string]any {
	return map[string]any{
		"inventoryId": l.InventoryID.String(),
		"binNumber":   l.BinNumber,
		"location":    l.Location,
		"quantity":    l.Quantity.String(),
	}
}

// Actor identifies who performed an operation. It is captured at the request
// boundary and passed by value into every allocation engine call; UserID is
// nil for system-initiated work.
type Actor struct {
	UserID    *uuid.UUID
	Name      string
	IPAddress string
	UserAgent string
}
