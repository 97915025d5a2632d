package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bitbucket.org/harborworks/salvage_backend/models"
	"github.com/shopspring/decimal"
)

func createTestQuotation(t *testing.T, ctx context.Context, companyId int, items []*models.NewLineItem) *models.Quotation {
	t.Helper()
	quotation, err := models.CreateQuotation(ctx, &models.NewQuotation{
		CompanyId:      companyId,
		QuotationDate:  time.Now(),
		PaymentTerms:   models.PaymentTermsNet30,
		DepositPercent: decimal.NewFromInt(10),
		TaxEnabled:     true,
		TaxRate:        decimal.NewFromInt(5),
		Items:          items,
	})
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	return quotation
}

func TestConvertQuotation_OnlyFromApproved(t *testing.T) {
	ctx, fixtures := setupTest(t)
	quotation := createTestQuotation(t, ctx, fixtures.company.ID, []*models.NewLineItem{
		{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	})

	if _, err := ConvertQuotationToInvoice(ctx, quotation.ID); err == nil {
		t.Fatal("expected conversion of Draft quotation to fail")
	}

	if _, err := SendQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := ApproveQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	invoice, err := ConvertQuotationToInvoice(ctx, quotation.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		t.Fatalf("expected converted invoice in Draft, got %s", invoice.Status)
	}

	// conversion happened exactly once; a second attempt sees Converted
	if _, err := ConvertQuotationToInvoice(ctx, quotation.ID); err == nil {
		t.Fatal("expected second conversion to fail")
	}
}

func TestConvertQuotation_CopiesDocument(t *testing.T) {
	ctx, fixtures := setupTest(t)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 5)
	quotation := createTestQuotation(t, ctx, fixtures.company.ID, []*models.NewLineItem{
		{ItemType: models.LineItemTypeEquipmentSale, Description: "Generator", Quantity: decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(500), EquipmentId: equipment.ID, WarehouseId: fixtures.warehouse.ID},
		{ItemType: models.LineItemTypeService, Description: "Delivery", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	})

	if _, err := ApproveQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	invoice, err := ConvertQuotationToInvoice(ctx, quotation.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	wantNumber := fmt.Sprintf("INV-%d-001", time.Now().Year())
	if invoice.Number != wantNumber {
		t.Fatalf("expected %s, got %s", wantNumber, invoice.Number)
	}
	if !invoice.Total.Equal(quotation.Total) {
		t.Fatalf("total must carry over: %s vs %s", invoice.Total, quotation.Total)
	}
	if !invoice.DepositPercent.Equal(quotation.DepositPercent) {
		t.Fatalf("deposit percent must carry over: %s vs %s", invoice.DepositPercent, quotation.DepositPercent)
	}
	if invoice.PaymentTerms != models.PaymentTermsNet30 {
		t.Fatalf("payment terms must carry over, got %s", invoice.PaymentTerms)
	}
	if len(invoice.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(invoice.Items))
	}
	if invoice.Items[0].EquipmentId != equipment.ID {
		t.Fatalf("equipment reference must carry over")
	}
	if invoice.DueDate == nil {
		t.Fatal("expected due date derived from payment terms")
	}

	// stock untouched by conversion
	after := reloadEquipment(t, ctx, equipment.ID)
	if !after.Quantity.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("conversion must not move stock, got quantity %s", after.Quantity)
	}

	reloaded, err := models.GetQuotation(ctx, quotation.ID)
	if err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if reloaded.Status != models.QuotationStatusConverted {
		t.Fatalf("expected quotation Converted, got %s", reloaded.Status)
	}
	if reloaded.ConvertedToInvoiceId != invoice.ID {
		t.Fatalf("expected link to invoice %d, got %d", invoice.ID, reloaded.ConvertedToInvoiceId)
	}
}

func TestQuotationStatusGuards(t *testing.T) {
	ctx, fixtures := setupTest(t)
	quotation := createTestQuotation(t, ctx, fixtures.company.ID, []*models.NewLineItem{
		{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	})

	// Expire only from Sent
	if _, err := ExpireQuotation(ctx, quotation.ID); err == nil {
		t.Fatal("expected expire of Draft quotation to fail")
	}
	if _, err := SendQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	// Send only from Draft
	if _, err := SendQuotation(ctx, quotation.ID); err == nil {
		t.Fatal("expected second send to fail")
	}
	if _, err := RejectQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := ApproveQuotation(ctx, quotation.ID); err == nil {
		t.Fatal("expected approve of Rejected quotation to fail")
	}
}

func TestDeleteQuotation_RemovesItems(t *testing.T) {
	ctx, fixtures := setupTest(t)
	quotation := createTestQuotation(t, ctx, fixtures.company.ID, []*models.NewLineItem{
		{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	})

	if err := DeleteQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := models.GetQuotation(ctx, quotation.ID); err == nil {
		t.Fatal("expected quotation gone")
	}
}
