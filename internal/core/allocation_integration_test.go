package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

const (
	testSKU      = "08409608-15-42-GRY"
	otherTestSKU = "09610810-18-42-BLK"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE audit_log_entries, inventory_locations, inventory, users CASCADE`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

func newTestService(pool *pgxpool.Pool) (core.AllocationService, *core.InventoryRepository) {
	repo := core.NewInventoryRepository(core.NewSKUParser())
	return core.NewAllocationService(pool, repo, nil), repo
}

func qty(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := core.ParseQuantity(s)
	if err != nil {
		t.Fatalf("bad test quantity %q: %v", s, err)
	}
	return d
}

func requireQty(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	if got.String() != want {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}

func seedReceive(t *testing.T, svc core.AllocationService, sku, bin, loc, quantity string) *core.ReceiveResult {
	t.Helper()
	res, err := svc.Receive(context.Background(), testActor(), core.ReceiveInput{
		SKU: sku, BinNumber: bin, Location: loc, Quantity: qty(t, quantity),
	})
	if err != nil {
		t.Fatalf("seed receive %s x%s failed: %v", sku, quantity, err)
	}
	return res
}

func TestReceive_AccumulatesIntoExistingBin(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)

	first := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	if !first.InventoryCreated {
		t.Errorf("expected inventory to be auto-provisioned on first receipt")
	}
	if !first.LocationCreated {
		t.Errorf("expected first receipt to create the bin row")
	}

	second := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "50")
	if second.LocationCreated {
		t.Errorf("second receipt into the same bin must update, not create")
	}
	requireQty(t, "150", second.Location.Quantity, "bin quantity")
	requireQty(t, "150", second.Inventory.Quantity, "inventory quantity")
	requireQty(t, "150", second.Inventory.InHandQuantity, "in-hand quantity")
	requireQty(t, "0", second.Inventory.AllocatedQuantity, "allocated quantity")
}

func TestReceive_AutoProvisionParsesSKUAttributes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)

	res := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "10")
	inv := res.Inventory
	if inv.Length != 84 || inv.Width != 96 || inv.Radius != 8 || inv.SkirtLength != 15 {
		t.Errorf("dimensions = %dx%d r%d skirt %d, want 84x96 r8 skirt 15",
			inv.Length, inv.Width, inv.Radius, inv.SkirtLength)
	}
	if inv.Foam != "4" || inv.Taper != "2" {
		t.Errorf("foam/taper = %s/%s, want 4/2", inv.Foam, inv.Taper)
	}
	if inv.ColorCode != "GRY" || inv.ColorName != "Gray" {
		t.Errorf("color = %s/%s, want GRY/Gray", inv.ColorCode, inv.ColorName)
	}
	if inv.Description == "" {
		t.Errorf("expected a generated description")
	}
}

func TestReceive_RejectsMalformedSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)

	_, err := svc.Receive(context.Background(), testActor(), core.ReceiveInput{
		SKU: "not-a-sku", BinNumber: "A-01", Location: "AISLE-1", Quantity: qty(t, "10"),
	})
	if !errors.Is(err, core.ErrInvalidSKUFormat) {
		t.Fatalf("expected ErrInvalidSKUFormat, got %v", err)
	}
}

func TestConfirmOrder_MovesInHandToAllocated(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "150")

	inv, err := svc.ConfirmOrder(context.Background(), testActor(), testSKU, qty(t, "60"))
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	requireQty(t, "150", inv.Quantity, "quantity")
	requireQty(t, "90", inv.InHandQuantity, "in-hand")
	requireQty(t, "60", inv.AllocatedQuantity, "allocated")
}

func TestConfirmOrder_InsufficientInHandLeavesStateUnchanged(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "150")

	_, err := svc.ConfirmOrder(context.Background(), testActor(), testSKU, qty(t, "1000"))
	if !errors.Is(err, core.ErrInsufficientInHand) {
		t.Fatalf("expected ErrInsufficientInHand, got %v", err)
	}

	inv, err := repo.FindBySKU(context.Background(), pool, testSKU, core.NoLock)
	if err != nil || inv == nil {
		t.Fatalf("refetch failed: %v", err)
	}
	requireQty(t, "150", inv.InHandQuantity, "in-hand after failed confirm")
	requireQty(t, "0", inv.AllocatedQuantity, "allocated after failed confirm")
}

func TestRemoveQuantity_ConsumesAllocation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	res := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "150")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "60")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	inv, err := svc.RemoveQuantity(ctx, testActor(), core.RemoveQuantityInput{
		LocationID: res.Location.ID, Quantity: qty(t, "60"),
	})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	requireQty(t, "90", inv.Quantity, "quantity")
	requireQty(t, "90", inv.InHandQuantity, "in-hand")
	requireQty(t, "0", inv.AllocatedQuantity, "allocated")
}

func TestRemoveQuantity_RejectsUnallocatedStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	res := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "150")

	// Nothing confirmed yet: the bin is full but no allocation backs a removal.
	_, err := svc.RemoveQuantity(context.Background(), testActor(), core.RemoveQuantityInput{
		LocationID: res.Location.ID, Quantity: qty(t, "10"),
	})
	if !errors.Is(err, core.ErrQuantityExceedsAllocated) {
		t.Fatalf("expected ErrQuantityExceedsAllocated, got %v", err)
	}
}

func TestRemoveQuantity_RejectsMoreThanBinHolds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	first := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "20")
	seedReceive(t, svc, testSKU, "B-02", "AISLE-2", "100")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "50")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Allocation covers 50 but the targeted bin only holds 20.
	_, err := svc.RemoveQuantity(ctx, testActor(), core.RemoveQuantityInput{
		LocationID: first.Location.ID, Quantity: qty(t, "50"),
	})
	if !errors.Is(err, core.ErrQuantityExceedsAvailable) {
		t.Fatalf("expected ErrQuantityExceedsAvailable, got %v", err)
	}
}

func TestReverseOrder_RestoresInHand(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "40")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	inv, err := svc.ReverseOrder(ctx, testActor(), testSKU, qty(t, "40"))
	if err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	requireQty(t, "100", inv.InHandQuantity, "in-hand")
	requireQty(t, "0", inv.AllocatedQuantity, "allocated")

	_, err = svc.ReverseOrder(ctx, testActor(), testSKU, qty(t, "1"))
	if !errors.Is(err, core.ErrInvalidReversal) {
		t.Fatalf("expected ErrInvalidReversal on over-reversal, got %v", err)
	}
}

func TestReplaceOrder_SameSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "30")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	res, err := svc.ReplaceOrder(ctx, testActor(),
		core.OrderAllocation{SKU: testSKU, Quantity: qty(t, "30")},
		core.OrderAllocation{SKU: testSKU, Quantity: qty(t, "45")})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	requireQty(t, "45", res.New.AllocatedQuantity, "allocated after replace")
	requireQty(t, "55", res.New.InHandQuantity, "in-hand after replace")
}

func TestReplaceOrder_AcrossSKUs(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	seedReceive(t, svc, otherTestSKU, "B-01", "AISLE-2", "80")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "25")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	res, err := svc.ReplaceOrder(ctx, testActor(),
		core.OrderAllocation{SKU: testSKU, Quantity: qty(t, "25")},
		core.OrderAllocation{SKU: otherTestSKU, Quantity: qty(t, "25")})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	requireQty(t, "0", res.Old.AllocatedQuantity, "old allocated")
	requireQty(t, "100", res.Old.InHandQuantity, "old in-hand")
	requireQty(t, "25", res.New.AllocatedQuantity, "new allocated")
	requireQty(t, "55", res.New.InHandQuantity, "new in-hand")
}

func TestReplaceOrder_RollsBackWhenNewAllocationFails(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	seedReceive(t, svc, otherTestSKU, "B-01", "AISLE-2", "10")
	ctx := context.Background()

	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "25")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// The new side cannot cover 500 so the whole swap must roll back.
	_, err := svc.ReplaceOrder(ctx, testActor(),
		core.OrderAllocation{SKU: testSKU, Quantity: qty(t, "25")},
		core.OrderAllocation{SKU: otherTestSKU, Quantity: qty(t, "500")})
	if !errors.Is(err, core.ErrInsufficientInHand) {
		t.Fatalf("expected ErrInsufficientInHand, got %v", err)
	}

	oldInv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock)
	if err != nil || oldInv == nil {
		t.Fatalf("refetch failed: %v", err)
	}
	requireQty(t, "25", oldInv.AllocatedQuantity, "old allocation must survive failed replace")
}

func TestConfirmOrder_ConcurrentConfirmsNeverOversell(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "100")
	ctx := context.Background()

	// 20 workers each try to confirm 10 against 100 in hand. Exactly 10 can
	// succeed; the rest must fail on the locked, re-read balance.
	const workers = 20
	ten := qty(t, "10")
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ConfirmOrder(ctx, testActor(), testSKU, ten)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, failed := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, core.ErrInsufficientInHand):
			failed++
		default:
			t.Fatalf("unexpected error from concurrent confirm: %v", err)
		}
	}
	if succeeded != 10 || failed != 10 {
		t.Fatalf("succeeded=%d failed=%d, want 10/10", succeeded, failed)
	}

	inv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock)
	if err != nil || inv == nil {
		t.Fatalf("refetch failed: %v", err)
	}
	requireQty(t, "0", inv.InHandQuantity, "in-hand after saturation")
	requireQty(t, "100", inv.AllocatedQuantity, "allocated after saturation")
	requireQty(t, "100", inv.Quantity, "quantity after saturation")
}

func TestBulkReceive_AllOrNothingRollsBackOnBadRow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	ctx := context.Background()

	rows := []core.ReceiveInput{
		{SKU: testSKU, BinNumber: "A-01", Location: "AISLE-1", Quantity: qty(t, "50")},
		{SKU: "garbage", BinNumber: "B-01", Location: "AISLE-2", Quantity: qty(t, "50")},
	}
	_, err := svc.BulkReceive(ctx, testActor(), rows, true)
	if !errors.Is(err, core.ErrInvalidSKUFormat) {
		t.Fatalf("expected ErrInvalidSKUFormat, got %v", err)
	}

	inv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock)
	if err != nil {
		t.Fatalf("refetch failed: %v", err)
	}
	if inv != nil {
		t.Fatalf("all-or-nothing import must not leave partial rows, found %s", inv.SKU)
	}
}

func TestBulkReceive_AllOrNothingLocksGroupsInLexicalOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, _ := newTestService(pool)
	ctx := context.Background()

	// Input order is deliberately reversed; the single-transaction path must
	// process groups in lexical SKU order so concurrent imports agree on a
	// lock order.
	rows := []core.ReceiveInput{
		{SKU: otherTestSKU, BinNumber: "B-01", Location: "AISLE-2", Quantity: qty(t, "10")},
		{SKU: testSKU, BinNumber: "A-01", Location: "AISLE-1", Quantity: qty(t, "20")},
	}
	res, err := svc.BulkReceive(ctx, testActor(), rows, true)
	if err != nil {
		t.Fatalf("bulk receive failed: %v", err)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(res.Groups))
	}
	if res.Groups[0].SKU > res.Groups[1].SKU {
		t.Fatalf("groups processed out of lexical order: %s before %s",
			res.Groups[0].SKU, res.Groups[1].SKU)
	}
}

func TestBulkReceive_PartialModeReportsFailedGroups(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	ctx := context.Background()

	rows := []core.ReceiveInput{
		{SKU: testSKU, BinNumber: "A-01", Location: "AISLE-1", Quantity: qty(t, "50")},
		{SKU: testSKU, BinNumber: "A-02", Location: "AISLE-1", Quantity: qty(t, "25")},
		{SKU: "garbage", BinNumber: "B-01", Location: "AISLE-2", Quantity: qty(t, "50")},
	}
	res, err := svc.BulkReceive(ctx, testActor(), rows, false)
	if err != nil {
		t.Fatalf("partial bulk receive failed outright: %v", err)
	}
	if res.Failed != 1 || len(res.Groups) != 2 {
		t.Fatalf("failed=%d groups=%d, want 1 failed of 2 groups", res.Failed, len(res.Groups))
	}
	for _, g := range res.Groups {
		if g.SKU == "garbage" && g.Err == nil {
			t.Errorf("bad group should carry its error")
		}
		if g.SKU == testSKU && g.Err != nil {
			t.Errorf("good group failed: %v", g.Err)
		}
	}

	inv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock)
	if err != nil || inv == nil {
		t.Fatalf("good group should have committed: %v", err)
	}
	requireQty(t, "75", inv.Quantity, "quantity from committed group")
}

func TestRemoveLocation_OnlyWhenEmpty(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	res := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "30")
	ctx := context.Background()

	err := svc.RemoveLocation(ctx, testActor(), res.Location.ID)
	if !errors.Is(err, core.ErrLocationNotEmpty) {
		t.Fatalf("expected ErrLocationNotEmpty, got %v", err)
	}

	// Drain the bin through the normal path, then removal is allowed.
	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "30")); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.RemoveQuantity(ctx, testActor(), core.RemoveQuantityInput{
		LocationID: res.Location.ID, Quantity: qty(t, "30"),
	}); err != nil {
		t.Fatalf("remove quantity failed: %v", err)
	}
	if err := svc.RemoveLocation(ctx, testActor(), res.Location.ID); err != nil {
		t.Fatalf("remove location failed: %v", err)
	}

	loc, err := repo.FindLocationByID(ctx, pool, res.Location.ID, core.NoLock)
	if err != nil {
		t.Fatalf("refetch failed: %v", err)
	}
	if loc != nil {
		t.Fatalf("location row should be gone")
	}
}

func TestArchiveInventory_AllowsReprovisioning(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	first := seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "10")
	ctx := context.Background()

	if err := svc.ArchiveInventory(ctx, testActor(), testSKU); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if inv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock); err != nil || inv != nil {
		t.Fatalf("archived inventory should be invisible, got %v / %v", inv, err)
	}
	if _, err := svc.ConfirmOrder(ctx, testActor(), testSKU, qty(t, "1")); !errors.Is(err, core.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound against archived sku, got %v", err)
	}

	// A fresh receipt provisions a brand new live record for the same SKU.
	again := seedReceive(t, svc, testSKU, "A-02", "AISLE-1", "5")
	if !again.InventoryCreated {
		t.Errorf("expected a new inventory record after archival")
	}
	if again.Inventory.ID == first.Inventory.ID {
		t.Errorf("re-provisioned record should not reuse the archived row")
	}
	requireQty(t, "5", again.Inventory.Quantity, "fresh quantity")
}

func TestInvariant_QuantityEqualsLocationSum(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc, repo := newTestService(pool)
	seedReceive(t, svc, testSKU, "A-01", "AISLE-1", "40")
	seedReceive(t, svc, testSKU, "B-02", "AISLE-2", "60")
	ctx := context.Background()

	inv, err := repo.FindBySKU(ctx, pool, testSKU, core.NoLock)
	if err != nil || inv == nil {
		t.Fatalf("refetch failed: %v", err)
	}
	sum, err := repo.SumLocationQuantities(ctx, pool, inv.ID)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if inv.Quantity.Cmp(sum) != 0 {
		t.Fatalf("quantity %s != location sum %s", inv.Quantity, sum)
	}
	if inv.InHandQuantity.Add(inv.AllocatedQuantity).Cmp(inv.Quantity) != 0 {
		t.Fatalf("in-hand %s + allocated %s != quantity %s",
			inv.InHandQuantity, inv.AllocatedQuantity, inv.Quantity)
	}
}
