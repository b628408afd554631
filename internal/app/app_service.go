package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

type appService struct {
	pool      *pgxpool.Pool
	repo      *core.InventoryRepository
	alloc     core.AllocationService
	auditRepo *core.AuditRepository
	bus       *core.EventBus
}

// NewAppService wires the application facade.
func NewAppService(pool *pgxpool.Pool, repo *core.InventoryRepository, alloc core.AllocationService,
	auditRepo *core.AuditRepository, bus *core.EventBus) ApplicationService {
	return &appService{pool: pool, repo: repo, alloc: alloc, auditRepo: auditRepo, bus: bus}
}

func (s *appService) Receive(ctx context.Context, actor core.Actor, req ReceiveRequest) (*ReceiveResult, error) {
	qty, err := core.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	out, err := s.alloc.Receive(ctx, actor, core.ReceiveInput{
		SKU:       req.SKU,
		BinNumber: req.BinNumber,
		Location:  req.Location,
		Quantity:  qty,
	})
	if err != nil {
		return nil, err
	}
	return &ReceiveResult{
		Inventory:        inventoryResult(out.Inventory, nil),
		Location:         locationResult(out.Location),
		InventoryCreated: out.InventoryCreated,
		LocationCreated:  out.LocationCreated,
	}, nil
}

func (s *appService) BulkReceive(ctx context.Context, actor core.Actor, req BulkReceiveRequest) (*BulkReceiveResult, error) {
	// In partial mode a bad quantity fails its whole SKU group here, with the
	// parse error preserved in that group's outcome; the group's remaining
	// rows never reach the engine.
	var order []string
	rowCount := map[string]int{}
	parseErrs := map[string]error{}
	rows := make([]core.ReceiveInput, 0, len(req.Rows))
	for i, r := range req.Rows {
		if _, seen := rowCount[r.SKU]; !seen {
			order = append(order, r.SKU)
		}
		rowCount[r.SKU]++

		qty, err := core.ParseQuantity(r.Quantity)
		if err != nil {
			if req.AllOrNothing {
				return nil, fmt.Errorf("row %d (%s): %w", i+1, r.SKU, err)
			}
			if parseErrs[r.SKU] == nil {
				parseErrs[r.SKU] = err
			}
			continue
		}
		rows = append(rows, core.ReceiveInput{SKU: r.SKU, BinNumber: r.BinNumber, Location: r.Location, Quantity: qty})
	}
	if len(parseErrs) > 0 {
		kept := rows[:0]
		for _, row := range rows {
			if parseErrs[row.SKU] == nil {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	out := &core.BulkReceiveResult{}
	if len(rows) > 0 {
		var err error
		if out, err = s.alloc.BulkReceive(ctx, actor, rows, req.AllOrNothing); err != nil {
			return nil, err
		}
	}

	byGroup := map[string]core.BulkGroupResult{}
	for _, g := range out.Groups {
		byGroup[g.SKU] = g
	}
	res := &BulkReceiveResult{Failed: out.Failed + len(parseErrs)}
	for _, sku := range order {
		og := BulkGroupOutcome{SKU: sku, Rows: rowCount[sku]}
		if err := parseErrs[sku]; err != nil {
			og.Error = err.Error()
		} else if g, ok := byGroup[sku]; ok && g.Err != nil {
			og.Error = g.Err.Error()
		}
		res.Groups = append(res.Groups, og)
	}
	return res, nil
}

func (s *appService) RemoveQuantity(ctx context.Context, actor core.Actor, req RemoveQuantityRequest) (*InventoryResult, error) {
	locID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad location id %q", core.ErrLocationNotFound, req.LocationID)
	}
	qty, err := core.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	inv, err := s.alloc.RemoveQuantity(ctx, actor, core.RemoveQuantityInput{LocationID: locID, Quantity: qty})
	if err != nil {
		return nil, err
	}
	res := inventoryResult(inv, nil)
	return &res, nil
}

func (s *appService) ConfirmOrder(ctx context.Context, actor core.Actor, req OrderRequest) (*InventoryResult, error) {
	qty, err := core.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	inv, err := s.alloc.ConfirmOrder(ctx, actor, req.SKU, qty)
	if err != nil {
		return nil, err
	}
	res := inventoryResult(inv, nil)
	return &res, nil
}

func (s *appService) ReverseOrder(ctx context.Context, actor core.Actor, req OrderRequest) (*InventoryResult, error) {
	qty, err := core.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	inv, err := s.alloc.ReverseOrder(ctx, actor, req.SKU, qty)
	if err != nil {
		return nil, err
	}
	res := inventoryResult(inv, nil)
	return &res, nil
}

func (s *appService) ReplaceOrder(ctx context.Context, actor core.Actor, req ReplaceOrderRequest) (*InventoryResult, error) {
	oldQty, err := core.ParseQuantity(req.Old.Quantity)
	if err != nil {
		return nil, err
	}
	newQty, err := core.ParseQuantity(req.New.Quantity)
	if err != nil {
		return nil, err
	}
	out, err := s.alloc.ReplaceOrder(ctx, actor,
		core.OrderAllocation{SKU: req.Old.SKU, Quantity: oldQty},
		core.OrderAllocation{SKU: req.New.SKU, Quantity: newQty})
	if err != nil {
		return nil, err
	}
	res := inventoryResult(out.New, nil)
	return &res, nil
}

func (s *appService) RemoveLocation(ctx context.Context, actor core.Actor, locationID string) error {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return fmt.Errorf("%w: bad location id %q", core.ErrLocationNotFound, locationID)
	}
	return s.alloc.RemoveLocation(ctx, actor, locID)
}

func (s *appService) ArchiveInventory(ctx context.Context, actor core.Actor, sku string) error {
	return s.alloc.ArchiveInventory(ctx, actor, sku)
}

func (s *appService) GetInventory(ctx context.Context, sku string) (*InventoryResult, error) {
	inv, err := s.repo.FindBySKU(ctx, s.pool, sku, core.NoLock)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: sku %s", core.ErrInventoryNotFound, sku)
	}
	locs, err := s.repo.ListLocations(ctx, s.pool, inv.ID)
	if err != nil {
		return nil, err
	}
	res := inventoryResult(inv, locs)
	return &res, nil
}

func (s *appService) ListAuditEntries(ctx context.Context, q AuditQuery) (*AuditListResult, error) {
	filter := core.AuditFilter{
		EventType:  core.EventType(q.EventType),
		EntityName: q.EntityName,
		EntityID:   q.EntityID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err != nil {
			return nil, fmt.Errorf("bad user id %q: %w", q.UserID, err)
		}
		filter.UserID = &id
	}
	var err error
	if filter.From, err = parseFilterTime(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseFilterTime(q.To); err != nil {
		return nil, err
	}

	entries, total, err := s.auditRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := &AuditListResult{Total: total, Limit: filter.Limit, Offset: filter.Offset}
	if res.Limit <= 0 {
		res.Limit = 50
	}
	for _, e := range entries {
		res.Entries = append(res.Entries, auditEntryResult(e))
	}
	return res, nil
}

func (s *appService) RecordLogin(ctx context.Context, actor core.Actor) {
	s.bus.Publish(core.NewEvent(core.EventUserLogin, actor, "user", actorEntityID(actor),
		fmt.Sprintf("%s logged in", actor.Name), nil, nil))
}

func (s *appService) RecordLogout(ctx context.Context, actor core.Actor) {
	s.bus.Publish(core.NewEvent(core.EventUserLogout, actor, "user", actorEntityID(actor),
		fmt.Sprintf("%s logged out", actor.Name), nil, nil))
}

func actorEntityID(actor core.Actor) string {
	if actor.UserID != nil {
		return actor.UserID.String()
	}
	return ""
}

func parseFilterTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time filter %q: %w", s, err)
	}
	return t, nil
}
