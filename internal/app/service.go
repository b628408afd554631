package app

import (
	"context"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

// ApplicationService is the single interface presentation adapters call. It
// decouples HTTP (and any future adapters) from the allocation engine: it
// validates and converts boundary types, invokes core operations with an
// explicit actor, and maps results back into transport-friendly shapes.
type ApplicationService interface {
	// Receive records a receipt of stock into a bin, auto-provisioning the
	// inventory record from the SKU when needed.
	Receive(ctx context.Context, actor core.Actor, req ReceiveRequest) (*ReceiveResult, error)

	// BulkReceive imports many receipt rows grouped by SKU.
	BulkReceive(ctx context.Context, actor core.Actor, req BulkReceiveRequest) (*BulkReceiveResult, error)

	// RemoveQuantity consumes previously-allocated stock out of a bin.
	RemoveQuantity(ctx context.Context, actor core.Actor, req RemoveQuantityRequest) (*InventoryResult, error)

	// ConfirmOrder reserves in-hand stock against an order.
	ConfirmOrder(ctx context.Context, actor core.Actor, req OrderRequest) (*InventoryResult, error)

	// ReverseOrder releases a confirmed allocation back to in-hand.
	ReverseOrder(ctx context.Context, actor core.Actor, req OrderRequest) (*InventoryResult, error)

	// ReplaceOrder atomically swaps one allocation for another.
	ReplaceOrder(ctx context.Context, actor core.Actor, req ReplaceOrderRequest) (*InventoryResult, error)

	// RemoveLocation deletes an emptied bin row.
	RemoveLocation(ctx context.Context, actor core.Actor, locationID string) error

	// ArchiveInventory soft-deletes an inventory record.
	ArchiveInventory(ctx context.Context, actor core.Actor, sku string) error

	// GetInventory returns an inventory record with its bin locations.
	GetInventory(ctx context.Context, sku string) (*InventoryResult, error)

	// ListAuditEntries returns a filtered page of the audit trail.
	ListAuditEntries(ctx context.Context, q AuditQuery) (*AuditListResult, error)

	// RecordLogin and RecordLogout publish auth markers onto the audit bus.
	RecordLogin(ctx context.Context, actor core.Actor)
	RecordLogout(ctx context.Context, actor core.Actor)
}
