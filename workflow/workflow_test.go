package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

var testDBOnce sync.Once

type testFixtures struct {
	company     *models.Company
	warehouse   *models.Warehouse
	bankAccount *models.BankAccount
}

// setupTest gives each test its own tenant on the shared in-memory store,
// with the reference data every document needs.
func setupTest(t *testing.T) (context.Context, *testFixtures) {
	t.Helper()
	testDBOnce.Do(func() {
		if err := config.ConnectTestDatabase(); err != nil {
			panic(err)
		}
		models.MigrateTable()
	})

	business, err := models.CreateBusiness(context.Background(), &models.NewBusiness{Name: "test-" + t.Name()})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	ctx := utils.SetBusinessIdInContext(context.Background(), business.ID.String())

	fixtures := &testFixtures{}
	if fixtures.company, err = models.CreateCompany(ctx, &models.NewCompany{Name: "Eastern Salvage Co"}); err != nil {
		t.Fatalf("create company: %v", err)
	}
	if fixtures.warehouse, err = models.CreateWarehouse(ctx, &models.NewWarehouse{Name: "Yard A"}); err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if fixtures.bankAccount, err = models.CreateBankAccount(ctx, &models.NewBankAccount{Name: "Operations"}); err != nil {
		t.Fatalf("create bank account: %v", err)
	}
	return ctx, fixtures
}

func createTestEquipment(t *testing.T, ctx context.Context, warehouseId int, qty int64) *models.Equipment {
	t.Helper()
	equipment, err := models.CreateEquipment(ctx, &models.NewEquipment{
		Name:        "Diesel generator",
		WarehouseId: warehouseId,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return equipment
}

func createTestLand(t *testing.T, ctx context.Context, remaining int64) *models.Land {
	t.Helper()
	land, err := models.CreateLand(ctx, &models.NewLand{
		Name:             "Beachfront plot 7",
		RemainingTonnage: decimal.NewFromInt(remaining),
	})
	if err != nil {
		t.Fatalf("create land: %v", err)
	}
	return land
}

func createTestInvoice(t *testing.T, ctx context.Context, input *models.NewInvoice) *models.Invoice {
	t.Helper()
	invoice, err := models.CreateInvoice(ctx, input)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return invoice
}

func reloadEquipment(t *testing.T, ctx context.Context, id int) *models.Equipment {
	t.Helper()
	equipment, err := models.GetEquipment(ctx, id)
	if err != nil {
		t.Fatalf("reload equipment: %v", err)
	}
	return equipment
}

func reloadLand(t *testing.T, ctx context.Context, id int) *models.Land {
	t.Helper()
	land, err := models.GetLand(ctx, id)
	if err != nil {
		t.Fatalf("reload land: %v", err)
	}
	return land
}

func markPaidInput(bankAccountId int) *MarkPaidInput {
	return &MarkPaidInput{
		PaymentDate:   time.Now(),
		PaymentMethod: models.PaymentMethodBankTransfer,
		BankAccountId: bankAccountId,
	}
}
