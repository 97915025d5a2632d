package workflow

import (
	"testing"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

func TestAdjustStock_EquipmentRoundTrip(t *testing.T) {
	ctx, fixtures := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 3)

	items := []models.InvoiceItem{{
		ItemType:    models.LineItemTypeEquipmentSale,
		Quantity:    decimal.NewFromInt(3),
		EquipmentId: equipment.ID,
		WarehouseId: fixtures.warehouse.ID,
	}}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("apply: %v", err)
	}

	after := reloadEquipment(t, ctx, equipment.ID)
	if !after.Quantity.IsZero() {
		t.Fatalf("expected quantity 0 after selling all units, got %s", after.Quantity)
	}
	if after.Status != models.EquipmentStatusSold {
		t.Fatalf("expected status Sold, got %s", after.Status)
	}

	if err := AdjustStock(db, logger, businessId, items, AdjustReverse); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	restored := reloadEquipment(t, ctx, equipment.ID)
	if !restored.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected quantity restored to 3, got %s", restored.Quantity)
	}
	if restored.Status != models.EquipmentStatusInWarehouse {
		t.Fatalf("expected status In Warehouse (line carries a warehouse), got %s", restored.Status)
	}
}

func TestAdjustStock_ReverseWithoutWarehouseGoesAvailable(t *testing.T) {
	ctx, _ := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	equipment := createTestEquipment(t, ctx, 0, 1)

	items := []models.InvoiceItem{{
		ItemType:    models.LineItemTypeEquipmentSale,
		Quantity:    decimal.NewFromInt(1),
		EquipmentId: equipment.ID,
	}}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := AdjustStock(db, logger, businessId, items, AdjustReverse); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	restored := reloadEquipment(t, ctx, equipment.ID)
	if restored.Status != models.EquipmentStatusAvailable {
		t.Fatalf("expected status Available, got %s", restored.Status)
	}
}

// Double application deducts twice. Exactly-once is the caller's job via the
// document lock and status guards, not the adjuster's.
func TestAdjustStock_DoubleApplyIsNotIdempotent(t *testing.T) {
	ctx, fixtures := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 10)

	items := []models.InvoiceItem{{
		ItemType:    models.LineItemTypeEquipmentSale,
		Quantity:    decimal.NewFromInt(3),
		EquipmentId: equipment.ID,
	}}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	after := reloadEquipment(t, ctx, equipment.ID)
	if !after.Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected 10 - 3 - 3 = 4, got %s", after.Quantity)
	}
}

func TestAdjustStock_QuantityFloorsAtZero(t *testing.T) {
	ctx, _ := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	equipment := createTestEquipment(t, ctx, 0, 2)

	items := []models.InvoiceItem{{
		ItemType:    models.LineItemTypeEquipmentSale,
		Quantity:    decimal.NewFromInt(5),
		EquipmentId: equipment.ID,
	}}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("apply: %v", err)
	}

	after := reloadEquipment(t, ctx, equipment.ID)
	if !after.Quantity.IsZero() {
		t.Fatalf("expected quantity clamped to 0, got %s", after.Quantity)
	}
	if after.Status != models.EquipmentStatusSold {
		t.Fatalf("expected status Sold, got %s", after.Status)
	}
}

func TestAdjustStock_LandTonnage(t *testing.T) {
	ctx, _ := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	land := createTestLand(t, ctx, 100)
	// simulate earlier sales
	err := config.GetDB().Model(land).Update("scrap_tonnage_sold", decimal.NewFromInt(20)).Error
	if err != nil {
		t.Fatalf("seed tonnage: %v", err)
	}

	items := []models.InvoiceItem{{
		ItemType:     models.LineItemTypeScrapSale,
		Quantity:     decimal.NewFromInt(30),
		LandId:       land.ID,
		MaterialType: "steel",
	}}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("apply: %v", err)
	}

	after := reloadLand(t, ctx, land.ID)
	if !after.RemainingTonnage.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected remaining 70, got %s", after.RemainingTonnage)
	}
	if !after.ScrapTonnageSold.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected sold 50, got %s", after.ScrapTonnageSold)
	}

	if err := AdjustStock(db, logger, businessId, items, AdjustReverse); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	restored := reloadLand(t, ctx, land.ID)
	if !restored.RemainingTonnage.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected remaining back to 100, got %s", restored.RemainingTonnage)
	}
	if !restored.ScrapTonnageSold.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected sold back to 20, got %s", restored.ScrapTonnageSold)
	}
}

func TestAdjustStock_SkipsUnresolvedAndNonStockLines(t *testing.T) {
	ctx, _ := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	items := []models.InvoiceItem{
		{ItemType: models.LineItemTypeEquipmentSale, Quantity: decimal.NewFromInt(1), EquipmentId: 99999},
		{ItemType: models.LineItemTypeVesselRental, Quantity: decimal.NewFromInt(1)},
		{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1)},
	}

	db := config.GetDB()
	logger := config.GetLogger()
	if err := AdjustStock(db, logger, businessId, items, AdjustApply); err != nil {
		t.Fatalf("expected unresolved and non-stock lines to be skipped, got %v", err)
	}
}
