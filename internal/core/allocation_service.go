package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReceiveInput is one receipt of stock into a bin.
type ReceiveInput struct {
	SKU       string
	BinNumber string
	Location  string
	Quantity  decimal.Decimal
}

// RemoveQuantityInput removes previously-allocated stock from a bin.
type RemoveQuantityInput struct {
	LocationID uuid.UUID
	Quantity   decimal.Decimal
}

// OrderAllocation names one side of a ReplaceOrder swap.
type OrderAllocation struct {
	SKU      string
	Quantity decimal.Decimal
}

// ReceiveResult reports what a receipt did.
type ReceiveResult struct {
	Inventory        *Inventory
	Location         *InventoryLocation
	InventoryCreated bool
	LocationCreated  bool
}

// ReplaceResult carries the post-swap state of both inventories. Old and New
// point at the same record when the swap stays on one SKU.
type ReplaceResult struct {
	Old *Inventory
	New *Inventory
}

// BulkGroupResult is the per-SKU outcome of a bulk receive.
type BulkGroupResult struct {
	SKU  string
	Rows int
	Err  error
}

// BulkReceiveResult reports per-group outcomes of a partial-success import.
type BulkReceiveResult struct {
	Groups []BulkGroupResult
	Failed int
}

// AllocationService is the transactional state machine over inventory and
// its bin locations. Every operation runs in exactly one database
// transaction: lock the inventory row (then the location row where
// applicable), validate against the locked values, mutate, recompute the
// aggregate quantity from the location sum, commit, and only then publish
// audit events. Two operations on the same SKU serialize on the row lock;
// different SKUs proceed in parallel.
type AllocationService interface {
	Receive(ctx context.Context, actor Actor, in ReceiveInput) (*ReceiveResult, error)
	RemoveQuantity(ctx context.Context, actor Actor, in RemoveQuantityInput) (*Inventory, error)
	ConfirmOrder(ctx context.Context, actor Actor, sku string, qty decimal.Decimal) (*Inventory, error)
	ReverseOrder(ctx context.Context, actor Actor, sku string, qty decimal.Decimal) (*Inventory, error)
	ReplaceOrder(ctx context.Context, actor Actor, oldOrder, newOrder OrderAllocation) (*ReplaceResult, error)
	BulkReceive(ctx context.Context, actor Actor, rows []ReceiveInput, allOrNothing bool) (*BulkReceiveResult, error)

	// RemoveLocation deletes a zeroed-out bin row. Deletion never happens
	// automatically when a quantity reaches zero.
	RemoveLocation(ctx context.Context, actor Actor, locationID uuid.UUID) error
	// ArchiveInventory soft-deletes an inventory record.
	ArchiveInventory(ctx context.Context, actor Actor, sku string) error
}

type allocationService struct {
	pool *pgxpool.Pool
	repo *InventoryRepository
	bus  *EventBus
}

// NewAllocationService wires the engine. bus may be nil, which disables
// audit publication (used by tests that only exercise ledger semantics).
func NewAllocationService(pool *pgxpool.Pool, repo *InventoryRepository, bus *EventBus) AllocationService {
	return &allocationService{pool: pool, repo: repo, bus: bus}
}

func (s *allocationService) publish(events []Event) {
	if s.bus == nil || len(events) == 0 {
		return
	}
	s.bus.Publish(events...)
}

// ── Receive ──────────────────────────────────────────────────────────────────

func (s *allocationService) Receive(ctx context.Context, actor Actor, in ReceiveInput) (*ReceiveResult, error) {
	if err := validateReceiveInput(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin receive: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, locs, events, err := s.receiveGroup(ctx, tx, actor, in.SKU, []ReceiveInput{in})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receive: %w", err)
	}
	s.publish(events)

	return &ReceiveResult{
		Inventory:        inv,
		Location:         locs[0].loc,
		InventoryCreated: locs[0].invCreated,
		LocationCreated:  locs[0].created,
	}, nil
}

func validateReceiveInput(in ReceiveInput) error {
	if err := ValidatePositiveQuantity(in.Quantity); err != nil {
		return err
	}
	if in.SKU == "" || in.BinNumber == "" || in.Location == "" {
		return fmt.Errorf("%w: sku, bin number and location are required", ErrInvalidSKUFormat)
	}
	return nil
}

type receivedLocation struct {
	loc        *InventoryLocation
	created    bool
	invCreated bool
}

// receiveGroup applies a batch of receipts for one SKU inside the caller's
// transaction. The inventory row is locked exactly once for the whole group;
// bins within the group are then locked and mutated one at a time, and the
// aggregate is recomputed once at the end. Returned events are ready to
// publish after the caller commits.
func (s *allocationService) receiveGroup(ctx context.Context, tx pgx.Tx, actor Actor, sku string, rows []ReceiveInput) (*Inventory, []receivedLocation, []Event, error) {
	inv, invCreated, err := s.repo.FindOrCreateBySKU(ctx, tx, sku)
	if err != nil {
		return nil, nil, nil, err
	}
	var invBefore map[string]any
	if !invCreated {
		invBefore = inv.Snapshot()
	}

	received := make([]receivedLocation, 0, len(rows))
	var events []Event
	total := decimal.Zero

	for _, row := range rows {
		loc, err := s.repo.FindLocation(ctx, tx, inv.ID, row.BinNumber, row.Location, ExclusiveLock)
		if err != nil {
			return nil, nil, nil, err
		}

		if loc == nil {
			loc = &InventoryLocation{
				InventoryID: inv.ID,
				BinNumber:   row.BinNumber,
				Location:    row.Location,
				Quantity:    row.Quantity,
			}
			if err := s.repo.InsertLocation(ctx, tx, loc); err != nil {
				return nil, nil, nil, err
			}
			received = append(received, receivedLocation{loc: loc, created: true, invCreated: invCreated})
			events = append(events, NewEvent(EventLocationCreated, actor, "inventory_location", loc.ID.String(),
				fmt.Sprintf("Received %s of %s into new bin %s at %s", row.Quantity, sku, row.BinNumber, row.Location),
				nil, loc.Snapshot()))
		} else {
			// Existing triple: add to the quantity, never overwrite.
			locBefore := loc.Snapshot()
			newQty, err := AddQuantities(loc.Quantity, row.Quantity)
			if err != nil {
				return nil, nil, nil, err
			}
			if err := s.repo.UpdateLocationQuantity(ctx, tx, loc.ID, newQty); err != nil {
				return nil, nil, nil, err
			}
			loc.Quantity = newQty
			received = append(received, receivedLocation{loc: loc, invCreated: invCreated})
			events = append(events, NewEvent(EventLocationUpdated, actor, "inventory_location", loc.ID.String(),
				fmt.Sprintf("Received %s of %s into bin %s at %s", row.Quantity, sku, row.BinNumber, row.Location),
				locBefore, loc.Snapshot()))
		}
		total = total.Add(row.Quantity)
	}

	sum, err := s.repo.SumLocationQuantities(ctx, tx, inv.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	inv.Quantity = sum
	if inv.InHandQuantity, err = AddQuantities(inv.InHandQuantity, total); err != nil {
		return nil, nil, nil, err
	}
	if err := s.repo.UpdateQuantities(ctx, tx, inv); err != nil {
		return nil, nil, nil, err
	}

	invEvent := NewEvent(EventInventoryUpdated, actor, "inventory", inv.ID.String(),
		fmt.Sprintf("Received %s of %s", total, sku), invBefore, inv.Snapshot())
	if invCreated {
		invEvent = NewEvent(EventInventoryCreated, actor, "inventory", inv.ID.String(),
			fmt.Sprintf("Inventory auto-provisioned for %s on first receipt of %s", sku, total),
			nil, inv.Snapshot())
	}
	events = append([]Event{invEvent}, events...)

	return inv, received, events, nil
}

// ── RemoveQuantity ───────────────────────────────────────────────────────────

// RemoveQuantity consumes previously-allocated stock out of a bin (order
// fulfillment). Removing unallocated stock is rejected; shrinkage write-offs
// are a separate, unmodeled concern.
func (s *allocationService) RemoveQuantity(ctx context.Context, actor Actor, in RemoveQuantityInput) (*Inventory, error) {
	if err := ValidatePositiveQuantity(in.Quantity); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin remove quantity: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve the parent without a lock first: the lock order is always
	// inventory before location.
	peek, err := s.repo.FindLocationByID(ctx, tx, in.LocationID, NoLock)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, fmt.Errorf("%w: id %s", ErrLocationNotFound, in.LocationID)
	}

	inv, err := s.repo.FindByID(ctx, tx, peek.InventoryID, ExclusiveLock)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: id %s", ErrInventoryNotFound, peek.InventoryID)
	}
	loc, err := s.repo.FindLocationByID(ctx, tx, in.LocationID, ExclusiveLock)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: id %s", ErrLocationNotFound, in.LocationID)
	}

	if CompareQuantities(in.Quantity, loc.Quantity) > 0 {
		return nil, fmt.Errorf("%w: bin %s holds %s, requested %s",
			ErrQuantityExceedsAvailable, loc.BinNumber, loc.Quantity, in.Quantity)
	}
	if CompareQuantities(in.Quantity, inv.AllocatedQuantity) > 0 {
		return nil, fmt.Errorf("%w: allocated %s, requested %s",
			ErrQuantityExceedsAllocated, inv.AllocatedQuantity, in.Quantity)
	}

	locBefore := loc.Snapshot()
	invBefore := inv.Snapshot()

	newLocQty, err := SubtractQuantities(loc.Quantity, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLocationQuantity(ctx, tx, loc.ID, newLocQty); err != nil {
		return nil, err
	}
	loc.Quantity = newLocQty

	if inv.AllocatedQuantity, err = SubtractQuantities(inv.AllocatedQuantity, in.Quantity); err != nil {
		return nil, err
	}
	if inv.Quantity, err = s.repo.SumLocationQuantities(ctx, tx, inv.ID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuantities(ctx, tx, inv); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit remove quantity: %w", err)
	}

	s.publish([]Event{
		NewEvent(EventLocationUpdated, actor, "inventory_location", loc.ID.String(),
			fmt.Sprintf("Removed %s of %s from bin %s at %s", in.Quantity, inv.SKU, loc.BinNumber, loc.Location),
			locBefore, loc.Snapshot()),
		NewEvent(EventInventoryUpdated, actor, "inventory", inv.ID.String(),
			fmt.Sprintf("Removed %s of %s against allocation", in.Quantity, inv.SKU),
			invBefore, inv.Snapshot()),
	})
	return inv, nil
}

// ── Order confirmation / reversal ────────────────────────────────────────────

func (s *allocationService) ConfirmOrder(ctx context.Context, actor Actor, sku string, qty decimal.Decimal) (*Inventory, error) {
	if err := ValidatePositiveQuantity(qty); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin confirm order: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := s.lockedInventory(ctx, tx, sku)
	if err != nil {
		return nil, err
	}
	before := inv.Snapshot()
	if err := applyConfirm(inv, qty); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuantities(ctx, tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit confirm order: %w", err)
	}

	s.publish([]Event{NewEvent(EventInventoryUpdated, actor, "inventory", inv.ID.String(),
		fmt.Sprintf("Order confirmed: allocated %s of %s", qty, sku), before, inv.Snapshot())})
	return inv, nil
}

func (s *allocationService) ReverseOrder(ctx context.Context, actor Actor, sku string, qty decimal.Decimal) (*Inventory, error) {
	if err := ValidatePositiveQuantity(qty); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reverse order: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := s.lockedInventory(ctx, tx, sku)
	if err != nil {
		return nil, err
	}
	before := inv.Snapshot()
	if err := applyReverse(inv, qty); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuantities(ctx, tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reverse order: %w", err)
	}

	s.publish([]Event{NewEvent(EventInventoryUpdated, actor, "inventory", inv.ID.String(),
		fmt.Sprintf("Order reversed: deallocated %s of %s", qty, sku), before, inv.Snapshot())})
	return inv, nil
}

// ReplaceOrder reverses the old allocation and confirms the new one in a
// single transaction. If the new allocation fails validation the whole
// transaction rolls back and the old allocation stays intact; no partial
// state is ever observable to other transactions.
func (s *allocationService) ReplaceOrder(ctx context.Context, actor Actor, oldOrder, newOrder OrderAllocation) (*ReplaceResult, error) {
	if err := ValidatePositiveQuantity(oldOrder.Quantity); err != nil {
		return nil, err
	}
	if err := ValidatePositiveQuantity(newOrder.Quantity); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin replace order: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldInv, newInv *Inventory
	if oldOrder.SKU == newOrder.SKU {
		if oldInv, err = s.lockedInventory(ctx, tx, oldOrder.SKU); err != nil {
			return nil, err
		}
		newInv = oldInv
	} else {
		// Lock both rows in lexical SKU order so concurrent replaces in
		// opposite directions cannot deadlock.
		first, second := oldOrder.SKU, newOrder.SKU
		if second < first {
			first, second = second, first
		}
		byValue := map[string]*Inventory{}
		for _, sku := range []string{first, second} {
			inv, err := s.lockedInventory(ctx, tx, sku)
			if err != nil {
				return nil, err
			}
			byValue[sku] = inv
		}
		oldInv, newInv = byValue[oldOrder.SKU], byValue[newOrder.SKU]
	}

	oldBefore := oldInv.Snapshot()
	var newBefore map[string]any
	if newInv != oldInv {
		newBefore = newInv.Snapshot()
	}

	if err := applyReverse(oldInv, oldOrder.Quantity); err != nil {
		return nil, err
	}
	if err := applyConfirm(newInv, newOrder.Quantity); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuantities(ctx, tx, oldInv); err != nil {
		return nil, err
	}
	if newInv != oldInv {
		if err := s.repo.UpdateQuantities(ctx, tx, newInv); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit replace order: %w", err)
	}

	events := []Event{NewEvent(EventInventoryUpdated, actor, "inventory", oldInv.ID.String(),
		fmt.Sprintf("Order replaced: %s x%s -> %s x%s", oldOrder.SKU, oldOrder.Quantity, newOrder.SKU, newOrder.Quantity),
		oldBefore, oldInv.Snapshot())}
	if newInv != oldInv {
		events = append(events, NewEvent(EventInventoryUpdated, actor, "inventory", newInv.ID.String(),
			fmt.Sprintf("Order replaced: %s x%s -> %s x%s", oldOrder.SKU, oldOrder.Quantity, newOrder.SKU, newOrder.Quantity),
			newBefore, newInv.Snapshot()))
	}
	s.publish(events)

	return &ReplaceResult{Old: oldInv, New: newInv}, nil
}

func (s *allocationService) lockedInventory(ctx context.Context, tx pgx.Tx, sku string) (*Inventory, error) {
	inv, err := s.repo.FindBySKU(ctx, tx, sku, ExclusiveLock)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: sku %s", ErrInventoryNotFound, sku)
	}
	return inv, nil
}

// applyConfirm moves qty from in-hand to allocated. The total quantity is
// untouched: confirmed stock has not left the building.
func applyConfirm(inv *Inventory, qty decimal.Decimal) error {
	if CompareQuantities(qty, inv.InHandQuantity) > 0 {
		return fmt.Errorf("%w: requested %s, in hand %s for %s",
			ErrInsufficientInHand, qty, inv.InHandQuantity, inv.SKU)
	}
	inv.InHandQuantity = inv.InHandQuantity.Sub(qty)
	inv.AllocatedQuantity = inv.AllocatedQuantity.Add(qty)
	return nil
}

// applyReverse moves qty from allocated back to in-hand.
func applyReverse(inv *Inventory, qty decimal.Decimal) error {
	if CompareQuantities(qty, inv.AllocatedQuantity) > 0 {
		return fmt.Errorf("%w: requested %s, allocated %s for %s",
			ErrInvalidReversal, qty, inv.AllocatedQuantity, inv.SKU)
	}
	inv.AllocatedQuantity = inv.AllocatedQuantity.Sub(qty)
	inv.InHandQuantity = inv.InHandQuantity.Add(qty)
	return nil
}

// ── BulkReceive ──────────────────────────────────────────────────────────────

// BulkReceive imports many receipt rows at once. Rows are grouped by SKU so
// each inventory row is locked once per group rather than once per row. In
// partial-success mode (the default) each group commits independently and a
// failing group is reported without aborting the others; allOrNothing runs
// every group in one transaction instead.
func (s *allocationService) BulkReceive(ctx context.Context, actor Actor, rows []ReceiveInput, allOrNothing bool) (*BulkReceiveResult, error) {
	if len(rows) == 0 {
		return &BulkReceiveResult{}, nil
	}

	var order []string
	groups := map[string][]ReceiveInput{}
	for _, row := range rows {
		if _, seen := groups[row.SKU]; !seen {
			order = append(order, row.SKU)
		}
		groups[row.SKU] = append(groups[row.SKU], row)
	}

	validateGroup := func(sku string) error {
		for _, row := range groups[sku] {
			if err := validateReceiveInput(row); err != nil {
				return err
			}
		}
		return nil
	}

	if allOrNothing {
		for _, sku := range order {
			if err := validateGroup(sku); err != nil {
				return nil, fmt.Errorf("sku %s: %w", sku, err)
			}
		}
		// Single transaction over many inventory rows: take the locks in
		// lexical SKU order, same as ReplaceOrder, so two concurrent imports
		// with overlapping SKUs cannot deadlock.
		sort.Strings(order)

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin bulk receive: %w", err)
		}
		defer tx.Rollback(ctx)

		res := &BulkReceiveResult{}
		var events []Event
		for _, sku := range order {
			inv, _, evs, err := s.receiveGroup(ctx, tx, actor, sku, groups[sku])
			if err != nil {
				return nil, fmt.Errorf("sku %s: %w", sku, err)
			}
			events = append(events, evs...)
			events = append(events, shipmentEvent(actor, inv, groups[sku]))
			res.Groups = append(res.Groups, BulkGroupResult{SKU: sku, Rows: len(groups[sku])})
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit bulk receive: %w", err)
		}
		s.publish(events)
		return res, nil
	}

	res := &BulkReceiveResult{}
	for _, sku := range order {
		outcome := BulkGroupResult{SKU: sku, Rows: len(groups[sku])}
		outcome.Err = s.receiveGroupCommitted(ctx, actor, sku, groups[sku], validateGroup)
		if outcome.Err != nil {
			res.Failed++
		}
		res.Groups = append(res.Groups, outcome)
	}
	return res, nil
}

// receiveGroupCommitted runs one SKU group in its own transaction.
func (s *allocationService) receiveGroupCommitted(ctx context.Context, actor Actor, sku string, rows []ReceiveInput, validate func(string) error) error {
	if err := validate(sku); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk group: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, _, events, err := s.receiveGroup(ctx, tx, actor, sku, rows)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk group: %w", err)
	}
	s.publish(append(events, shipmentEvent(actor, inv, rows)))
	return nil
}

func shipmentEvent(actor Actor, inv *Inventory, rows []ReceiveInput) Event {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Quantity)
	}
	return NewEvent(EventInboundShipmentCreated, actor, "inbound_shipment", inv.ID.String(),
		fmt.Sprintf("Inbound shipment: %s of %s across %d bins", total, inv.SKU, len(rows)),
		nil, map[string]any{"sku": inv.SKU, "rows": len(rows), "quantity": total.String()})
}

// ── Location removal / archival ──────────────────────────────────────────────

func (s *allocationService) RemoveLocation(ctx context.Context, actor Actor, locationID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove location: %w", err)
	}
	defer tx.Rollback(ctx)

	peek, err := s.repo.FindLocationByID(ctx, tx, locationID, NoLock)
	if err != nil {
		return err
	}
	if peek == nil {
		return fmt.Errorf("%w: id %s", ErrLocationNotFound, locationID)
	}

	inv, err := s.repo.FindByID(ctx, tx, peek.InventoryID, ExclusiveLock)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("%w: id %s", ErrInventoryNotFound, peek.InventoryID)
	}
	loc, err := s.repo.FindLocationByID(ctx, tx, locationID, ExclusiveLock)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: id %s", ErrLocationNotFound, locationID)
	}
	if !loc.Quantity.IsZero() {
		return fmt.Errorf("%w: bin %s still holds %s", ErrLocationNotEmpty, loc.BinNumber, loc.Quantity)
	}

	if err := s.repo.DeleteLocation(ctx, tx, loc.ID); err != nil {
		return err
	}
	if inv.Quantity, err = s.repo.SumLocationQuantities(ctx, tx, inv.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateQuantities(ctx, tx, inv); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove location: %w", err)
	}

	s.publish([]Event{NewEvent(EventLocationDeleted, actor, "inventory_location", loc.ID.String(),
		fmt.Sprintf("Removed empty bin %s at %s for %s", loc.BinNumber, loc.Location, inv.SKU),
		loc.Snapshot(), nil)})
	return nil
}

func (s *allocationService) ArchiveInventory(ctx context.Context, actor Actor, sku string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive inventory: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := s.lockedInventory(ctx, tx, sku)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, tx, inv.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive inventory: %w", err)
	}

	s.publish([]Event{NewEvent(EventInventoryDeleted, actor, "inventory", inv.ID.String(),
		fmt.Sprintf("Inventory archived for %s", sku), inv.Snapshot(), nil)})
	return nil
}
