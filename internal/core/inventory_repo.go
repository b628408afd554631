package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so repository
// helpers run inside a caller's transaction or standalone.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LockMode selects whether a read takes an exclusive row lock. Locked reads
// hold the lock for the duration of the enclosing transaction; they are the
// sole concurrency-control mechanism in the allocation engine.
type LockMode bool

const (
	NoLock        LockMode = false
	ExclusiveLock LockMode = true
)

func (m LockMode) clause() string {
	if m == ExclusiveLock {
		return " FOR UPDATE"
	}
	return ""
}

// InventoryRepository provides row-level access to inventory and
// inventory_locations. It is stateless apart from the SKU parser used on the
// auto-provisioning path.
type InventoryRepository struct {
	parser SKUParser
}

func NewInventoryRepository(parser SKUParser) *InventoryRepository {
	return &InventoryRepository{parser: parser}
}

const inventoryColumns = `id, sku, quantity, allocated_quantity, in_hand_quantity,
	length, width, radius, skirt_length, foam, taper, color_code, color_name, description,
	created_at, updated_at, deleted_at`

func scanInventory(row pgx.Row) (*Inventory, error) {
	var inv Inventory
	err := row.Scan(&inv.ID, &inv.SKU, &inv.Quantity, &inv.AllocatedQuantity, &inv.InHandQuantity,
		&inv.Length, &inv.Width, &inv.Radius, &inv.SkirtLength, &inv.Foam, &inv.Taper,
		&inv.ColorCode, &inv.ColorName, &inv.Description,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindBySKU returns the live (non-deleted) inventory row for a SKU, or nil
// when absent.
func (r *InventoryRepository) FindBySKU(ctx context.Context, q pgxQuerier, sku string, lock LockMode) (*Inventory, error) {
	inv, err := scanInventory(q.QueryRow(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE sku = $1 AND deleted_at IS NULL"+lock.clause(),
		sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory by sku %s: %w", sku, err)
	}
	return inv, nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, q pgxQuerier, id uuid.UUID, lock LockMode) (*Inventory, error) {
	inv, err := scanInventory(q.QueryRow(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE id = $1 AND deleted_at IS NULL"+lock.clause(),
		id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory %s: %w", id, err)
	}
	return inv, nil
}

// FindOrCreateBySKU returns the locked inventory row for a SKU, provisioning
// it from the parsed SKU attributes when it does not exist yet. A creation
// raced by a concurrent transaction is resolved by re-fetching the winner's
// row rather than surfacing a conflict.
func (r *InventoryRepository) FindOrCreateBySKU(ctx context.Context, q pgxQuerier, sku string) (*Inventory, bool, error) {
	inv, err := r.FindBySKU(ctx, q, sku, ExclusiveLock)
	if err != nil {
		return nil, false, err
	}
	if inv != nil {
		return inv, false, nil
	}

	attrs, err := r.parser.Parse(sku)
	if err != nil {
		return nil, false, err
	}

	inv, err = scanInventory(q.QueryRow(ctx, `
		INSERT INTO inventory
			(sku, quantity, allocated_quantity, in_hand_quantity,
			 length, width, radius, skirt_length, foam, taper, color_code, color_name, description)
		VALUES ($1, 0, 0, 0, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sku) WHERE deleted_at IS NULL DO NOTHING
		RETURNING `+inventoryColumns,
		sku, attrs.Length, attrs.Width, attrs.Radius, attrs.SkirtLength,
		attrs.Foam, attrs.Taper, attrs.ColorCode, attrs.ColorName, attrs.Description))
	if err == nil {
		return inv, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("create inventory for sku %s: %w", sku, err)
	}

	// Lost the insert race; the other transaction has committed, take its row.
	inv, err = r.FindBySKU(ctx, q, sku, ExclusiveLock)
	if err != nil {
		return nil, false, err
	}
	if inv == nil {
		return nil, false, fmt.Errorf("inventory for sku %s vanished after insert conflict", sku)
	}
	return inv, false, nil
}

// UpdateQuantities persists the three quantity fields of a locked row.
func (r *InventoryRepository) UpdateQuantities(ctx context.Context, q pgxQuerier, inv *Inventory) error {
	_, err := q.Exec(ctx, `
		UPDATE inventory
		SET quantity = $1, allocated_quantity = $2, in_hand_quantity = $3, updated_at = NOW()
		WHERE id = $4
	`, inv.Quantity, inv.AllocatedQuantity, inv.InHandQuantity, inv.ID)
	if err != nil {
		return fmt.Errorf("update inventory quantities for %s: %w", inv.SKU, err)
	}
	return nil
}

// SoftDelete marks an inventory row deleted. Rows are never hard-deleted;
// the SKU becomes free for re-provisioning while history stays queryable.
func (r *InventoryRepository) SoftDelete(ctx context.Context, q pgxQuerier, id uuid.UUID) error {
	tag, err := q.Exec(ctx, "UPDATE inventory SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("soft delete inventory %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %s", ErrInventoryNotFound, id)
	}
	return nil
}

const locationColumns = "id, inventory_id, bin_number, location, quantity, created_at, updated_at"

func scanLocation(row pgx.Row) (*InventoryLocation, error) {
	var loc InventoryLocation
	err := row.Scan(&loc.ID, &loc.InventoryID, &loc.BinNumber, &loc.Location, &loc.Quantity,
		&loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindLocation returns the location row for a (inventory, bin, location)
// triple, or nil when absent.
func (r *InventoryRepository) FindLocation(ctx context.Context, q pgxQuerier, inventoryID uuid.UUID, binNumber, location string, lock LockMode) (*InventoryLocation, error) {
	loc, err := scanLocation(q.QueryRow(ctx,
		"SELECT "+locationColumns+" FROM inventory_locations WHERE inventory_id = $1 AND bin_number = $2 AND location = $3"+lock.clause(),
		inventoryID, binNumber, location))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location %s/%s: %w", binNumber, location, err)
	}
	return loc, nil
}

func (r *InventoryRepository) FindLocationByID(ctx context.Context, q pgxQuerier, id uuid.UUID, lock LockMode) (*InventoryLocation, error) {
	loc, err := scanLocation(q.QueryRow(ctx,
		"SELECT "+locationColumns+" FROM inventory_locations WHERE id = $1"+lock.clause(), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location %s: %w", id, err)
	}
	return loc, nil
}

func (r *InventoryRepository) ListLocations(ctx context.Context, q pgxQuerier, inventoryID uuid.UUID) ([]InventoryLocation, error) {
	rows, err := q.Query(ctx,
		"SELECT "+locationColumns+" FROM inventory_locations WHERE inventory_id = $1 ORDER BY location, bin_number",
		inventoryID)
	if err != nil {
		return nil, fmt.Errorf("list locations for inventory %s: %w", inventoryID, err)
	}
	defer rows.Close()

	var locs []InventoryLocation
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locs = append(locs, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locs, nil
}

// InsertLocation creates a location row and fills in the generated fields.
func (r *InventoryRepository) InsertLocation(ctx context.Context, q pgxQuerier, loc *InventoryLocation) error {
	err := q.QueryRow(ctx, `
		INSERT INTO inventory_locations (inventory_id, bin_number, location, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, loc.InventoryID, loc.BinNumber, loc.Location, loc.Quantity).
		Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert location %s/%s: %w", loc.BinNumber, loc.Location, err)
	}
	return nil
}

func (r *InventoryRepository) UpdateLocationQuantity(ctx context.Context, q pgxQuerier, id uuid.UUID, quantity decimal.Decimal) error {
	_, err := q.Exec(ctx,
		"UPDATE inventory_locations SET quantity = $1, updated_at = NOW() WHERE id = $2",
		quantity, id)
	if err != nil {
		return fmt.Errorf("update location %s quantity: %w", id, err)
	}
	return nil
}

func (r *InventoryRepository) DeleteLocation(ctx context.Context, q pgxQuerier, id uuid.UUID) error {
	_, err := q.Exec(ctx, "DELETE FROM inventory_locations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete location %s: %w", id, err)
	}
	return nil
}

// SumLocationQuantities recomputes the aggregate quantity for an inventory
// from the authoritative sum of its locations. Never trusts a cached total.
func (r *InventoryRepository) SumLocationQuantities(ctx context.Context, q pgxQuerier, inventoryID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM inventory_locations WHERE inventory_id = $1",
		inventoryID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum location quantities for %s: %w", inventoryID, err)
	}
	return sum, nil
}
