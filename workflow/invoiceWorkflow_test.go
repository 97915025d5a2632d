package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

func newEquipmentSaleInvoice(companyId int, equipment *models.Equipment, warehouseId int, qty int64, depositPercent int64) *models.NewInvoice {
	return &models.NewInvoice{
		InvoiceType:    models.InvoiceTypeIncome,
		CompanyId:      companyId,
		InvoiceDate:    time.Now(),
		DepositPercent: decimal.NewFromInt(depositPercent),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeEquipmentSale, Description: "Generator", Quantity: decimal.NewFromInt(qty),
				UnitPrice: decimal.NewFromInt(500), EquipmentId: equipment.ID, WarehouseId: warehouseId},
		},
	}
}

func TestMarkInvoicePaid_GuardsStatusAndType(t *testing.T) {
	ctx, fixtures := setupTest(t)

	expense := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType: models.InvoiceTypeExpense,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeOther, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
	})
	if _, err := MarkInvoicePaid(ctx, expense.ID, markPaidInput(fixtures.bankAccount.ID)); err == nil {
		t.Fatal("expected mark paid of expense invoice to fail")
	}

	income := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType: models.InvoiceTypeIncome,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
	})
	if _, err := MarkInvoicePaid(ctx, income.ID, &MarkPaidInput{PaymentDate: time.Now(), PaymentMethod: models.PaymentMethodCash}); err == nil {
		t.Fatal("expected mark paid without bank account to fail")
	}
	if _, err := MarkInvoicePaid(ctx, income.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	// already Paid
	if _, err := MarkInvoicePaid(ctx, income.ID, markPaidInput(fixtures.bankAccount.ID)); err == nil {
		t.Fatal("expected second mark paid to fail")
	}
}

// Paid sale then refund: stock deducted and restored, income rows removed,
// one compensating expense row written.
func TestPaidSaleRefund_RestoresLedgers(t *testing.T) {
	ctx, fixtures := setupTest(t)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 3)
	invoice := createTestInvoice(t, ctx, newEquipmentSaleInvoice(fixtures.company.ID, equipment, fixtures.warehouse.ID, 3, 0))

	paid, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID))
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != models.InvoiceStatusPaid {
		t.Fatalf("expected Paid, got %s", paid.Status)
	}

	sold := reloadEquipment(t, ctx, equipment.ID)
	if !sold.Quantity.IsZero() || sold.Status != models.EquipmentStatusSold {
		t.Fatalf("expected 0/Sold after payment, got %s/%s", sold.Quantity, sold.Status)
	}
	income, err := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("income rows: %v", err)
	}
	if len(income) != 1 {
		t.Fatalf("expected 1 income row, got %d", len(income))
	}
	if !income[0].Amount.Equal(invoice.Total) {
		t.Fatalf("expected income row for total %s, got %s", invoice.Total, income[0].Amount)
	}

	refunded, err := RefundPaidSale(ctx, invoice.ID, &RefundInput{
		RefundDate:    time.Now(),
		RefundMethod:  models.PaymentMethodBankTransfer,
		BankAccountId: fixtures.bankAccount.ID,
		Confirm:       true,
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != models.InvoiceStatusCancelledRefunded {
		t.Fatalf("expected Cancelled Refunded, got %s", refunded.Status)
	}

	restored := reloadEquipment(t, ctx, equipment.ID)
	if !restored.Quantity.Equal(decimal.NewFromInt(3)) || restored.Status != models.EquipmentStatusInWarehouse {
		t.Fatalf("expected 3/In Warehouse after refund, got %s/%s", restored.Quantity, restored.Status)
	}
	income, _ = models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if len(income) != 0 {
		t.Fatalf("expected income rows removed, got %d", len(income))
	}
	expenses, err := models.GetExpensesByReference(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("expense rows: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense row, got %d", len(expenses))
	}
	if !expenses[0].Amount.Equal(invoice.Total) {
		t.Fatalf("expected expense for full total %s, got %s", invoice.Total, expenses[0].Amount)
	}
}

func TestRefundPaidSale_RequiresConfirmation(t *testing.T) {
	ctx, fixtures := setupTest(t)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 1)
	invoice := createTestInvoice(t, ctx, newEquipmentSaleInvoice(fixtures.company.ID, equipment, fixtures.warehouse.ID, 1, 0))
	if _, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	_, err := RefundPaidSale(ctx, invoice.ID, &RefundInput{
		RefundDate:    time.Now(),
		RefundMethod:  models.PaymentMethodCash,
		BankAccountId: fixtures.bankAccount.ID,
	})
	if err == nil {
		t.Fatal("expected refund without confirmation to fail")
	}
}

// Deposit taken, then the customer walks away and the business keeps the
// money: a second income row appears, dated today but carrying the original
// deposit's payment method and bank account.
func TestDeposit_KeepAsIncome(t *testing.T) {
	ctx, fixtures := setupTest(t)

	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType:    models.InvoiceTypeIncome,
		CompanyId:      fixtures.company.ID,
		InvoiceDate:    time.Now(),
		DepositPercent: decimal.NewFromInt(10),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeVesselRental, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10000)},
		},
	})

	depositDate := time.Now().AddDate(0, 0, -30)
	deposited, err := RecordDeposit(ctx, invoice.ID, &RecordDepositInput{
		DepositDate:   depositDate,
		DepositMethod: models.PaymentMethodCheque,
		BankAccountId: fixtures.bankAccount.ID,
	})
	if err != nil {
		t.Fatalf("record deposit: %v", err)
	}
	if deposited.Status != models.InvoiceStatusDepositPaid {
		t.Fatalf("expected Deposit Paid, got %s", deposited.Status)
	}
	if !deposited.DepositAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected deposit 1000 (10%% of 10000), got %s", deposited.DepositAmount)
	}

	kept, err := KeepDepositAsIncome(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("keep deposit: %v", err)
	}
	if kept.Status != models.InvoiceStatusCancelledDepositKept {
		t.Fatalf("expected Cancelled Deposit Kept, got %s", kept.Status)
	}
	if !kept.DepositKeptAsIncome {
		t.Fatal("expected kept flag set")
	}

	income, err := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("income rows: %v", err)
	}
	if len(income) != 2 {
		t.Fatalf("expected deposit row plus kept row, got %d", len(income))
	}
	// rows come back ordered by record date; the kept row is dated today
	keptRow := income[1]
	if !keptRow.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected kept row amount 1000, got %s", keptRow.Amount)
	}
	if keptRow.PaymentMethod != models.PaymentMethodCheque {
		t.Fatalf("kept row must carry the original deposit method, got %s", keptRow.PaymentMethod)
	}
	if keptRow.BankAccountId != fixtures.bankAccount.ID {
		t.Fatalf("kept row must carry the original bank account, got %d", keptRow.BankAccountId)
	}
	if keptRow.RecordDate.Format("2006-01-02") != time.Now().Format("2006-01-02") {
		t.Fatalf("kept row must be dated today, got %s", keptRow.RecordDate)
	}
}

func TestDeposit_RefundWritesExpense(t *testing.T) {
	ctx, fixtures := setupTest(t)

	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType:    models.InvoiceTypeIncome,
		CompanyId:      fixtures.company.ID,
		InvoiceDate:    time.Now(),
		DepositPercent: decimal.NewFromInt(25),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(800)},
		},
	})

	if _, err := RecordDeposit(ctx, invoice.ID, &RecordDepositInput{
		DepositDate:   time.Now(),
		DepositMethod: models.PaymentMethodCash,
		BankAccountId: fixtures.bankAccount.ID,
	}); err != nil {
		t.Fatalf("record deposit: %v", err)
	}

	refunded, err := RefundDeposit(ctx, invoice.ID, &RefundInput{
		RefundDate:    time.Now(),
		RefundMethod:  models.PaymentMethodCash,
		BankAccountId: fixtures.bankAccount.ID,
		Notes:         "customer cancelled",
	})
	if err != nil {
		t.Fatalf("refund deposit: %v", err)
	}
	if refunded.Status != models.InvoiceStatusCancelledRefunded {
		t.Fatalf("expected Cancelled Refunded, got %s", refunded.Status)
	}

	expenses, err := models.GetExpensesByReference(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("expense rows: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense row, got %d", len(expenses))
	}
	if !expenses[0].Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected refund expense 200 (25%% of 800), got %s", expenses[0].Amount)
	}
}

func TestRecordDeposit_RequiresDepositPercent(t *testing.T) {
	ctx, fixtures := setupTest(t)

	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType: models.InvoiceTypeIncome,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(800)},
		},
	})

	if _, err := RecordDeposit(ctx, invoice.ID, &RecordDepositInput{
		DepositDate:   time.Now(),
		DepositMethod: models.PaymentMethodCash,
		BankAccountId: fixtures.bankAccount.ID,
	}); err == nil {
		t.Fatal("expected deposit on invoice without deposit percent to fail")
	}
}

// Deleting a paid invoice compensates everything it touched and returns the
// source quotation to Approved so the document can be re-issued.
func TestDeleteInvoice_CompensatesAndResetsQuotation(t *testing.T) {
	ctx, fixtures := setupTest(t)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 3)

	quotation := createTestQuotation(t, ctx, fixtures.company.ID, []*models.NewLineItem{
		{ItemType: models.LineItemTypeEquipmentSale, Quantity: decimal.NewFromInt(3),
			UnitPrice: decimal.NewFromInt(500), EquipmentId: equipment.ID, WarehouseId: fixtures.warehouse.ID},
	})
	if _, err := ApproveQuotation(ctx, quotation.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	invoice, err := ConvertQuotationToInvoice(ctx, quotation.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if err := DeleteInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}

	restored := reloadEquipment(t, ctx, equipment.ID)
	if !restored.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected stock restored to 3, got %s", restored.Quantity)
	}
	income, _ := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	expenses, _ := models.GetExpensesByReference(ctx, invoice.ID)
	if len(income) != 0 || len(expenses) != 0 {
		t.Fatalf("expected zero journal rows after delete, got %d income %d expense", len(income), len(expenses))
	}

	reloaded, err := models.GetQuotation(ctx, quotation.ID)
	if err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if reloaded.Status != models.QuotationStatusApproved {
		t.Fatalf("expected quotation back to Approved, got %s", reloaded.Status)
	}
	if reloaded.ConvertedToInvoiceId != 0 {
		t.Fatalf("expected conversion link cleared, got %d", reloaded.ConvertedToInvoiceId)
	}
	if _, err := models.GetInvoice(ctx, invoice.ID); err == nil {
		t.Fatal("expected invoice gone")
	}
}

func TestLegacyJournalSchema_OmitsPaymentColumns(t *testing.T) {
	ctx, fixtures := setupTest(t)
	t.Setenv("JOURNAL_EXTENDED_SCHEMA", "false")

	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType: models.InvoiceTypeIncome,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(300)},
		},
	})
	if _, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	income, err := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("income rows: %v", err)
	}
	if len(income) != 1 {
		t.Fatalf("expected 1 income row, got %d", len(income))
	}
	if income[0].PaymentMethod != "" || income[0].BankAccountId != 0 {
		t.Fatalf("legacy schema must not record payment columns, got %s/%d",
			income[0].PaymentMethod, income[0].BankAccountId)
	}
	if !income[0].Amount.Equal(invoice.Total) {
		t.Fatalf("amount and reference must still be recorded, got %s", income[0].Amount)
	}
}

func TestInvoiceStatusTransitions_SendAndOverdue(t *testing.T) {
	ctx, fixtures := setupTest(t)
	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType: models.InvoiceTypeIncome,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
	})

	if _, err := MarkInvoiceOverdue(ctx, invoice.ID); err == nil {
		t.Fatal("expected overdue from Draft to fail")
	}
	if _, err := SendInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	overdue, err := MarkInvoiceOverdue(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	// Overdue invoices can still be paid
	if _, err := MarkInvoicePaid(ctx, overdue.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid from overdue: %v", err)
	}
}

func contextWithoutBusiness() context.Context {
	return context.Background()
}

func TestWorkflow_RequiresBusinessScope(t *testing.T) {
	setupTest(t)
	if _, err := SendQuotation(contextWithoutBusiness(), 1); err == nil {
		t.Fatal("expected transition without business scope to fail")
	}
	if err := DeleteInvoice(contextWithoutBusiness(), 1); err == nil {
		t.Fatal("expected delete without business scope to fail")
	}
}

// A sale must never be blocked by an income ledger failure: when the journal
// post breaks, the status write and the stock deduction still commit and the
// caller gets back the Paid invoice with a partial TransitionError to surface
// as a warning.
func TestMarkInvoicePaid_CommitsPartiallyWhenIncomePostFails(t *testing.T) {
	ctx, fixtures := setupTest(t)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 2)
	invoice := createTestInvoice(t, ctx, newEquipmentSaleInvoice(fixtures.company.ID, equipment, fixtures.warehouse.ID, 2, 0))

	db := config.GetDB()
	if err := db.Migrator().DropTable(&models.IncomeRecord{}); err != nil {
		t.Fatalf("drop income table: %v", err)
	}
	t.Cleanup(func() {
		if err := db.AutoMigrate(&models.IncomeRecord{}); err != nil {
			t.Fatalf("restore income table: %v", err)
		}
	})

	paid, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID))
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if !transitionErr.Partial() {
		t.Fatalf("expected a partial commit, got %+v", transitionErr)
	}
	if transitionErr.FailedStep != "PostIncome" {
		t.Fatalf("expected PostIncome as the failed step, got %s", transitionErr.FailedStep)
	}
	if paid == nil || paid.Status != models.InvoiceStatusPaid {
		t.Fatal("expected the Paid invoice returned alongside the error")
	}

	reloaded, err := models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if reloaded.Status != models.InvoiceStatusPaid {
		t.Fatalf("status must commit despite the journal failure, got %s", reloaded.Status)
	}
	after := reloadEquipment(t, ctx, equipment.ID)
	if !after.Quantity.IsZero() || after.Status != models.EquipmentStatusSold {
		t.Fatalf("stock must still apply despite the journal failure, got %s/%s", after.Quantity, after.Status)
	}
}

// A paid invoice can carry expense rows against its reference too; deleting
// it must clear both ledgers, not just the income side.
func TestDeleteInvoice_PaidClearsBothLedgers(t *testing.T) {
	ctx, fixtures := setupTest(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	equipment := createTestEquipment(t, ctx, fixtures.warehouse.ID, 1)
	invoice := createTestInvoice(t, ctx, newEquipmentSaleInvoice(fixtures.company.ID, equipment, fixtures.warehouse.ID, 1, 0))
	if _, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	err := PostExpense(config.GetDB(), config.GetLogger(), businessId, JournalEntry{
		Date:        time.Now(),
		Description: "Partial refund",
		Amount:      decimal.NewFromInt(100),
		ReferenceId: invoice.ID,
	})
	if err != nil {
		t.Fatalf("seed expense row: %v", err)
	}

	if err := DeleteInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	income, _ := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	expenses, _ := models.GetExpensesByReference(ctx, invoice.ID)
	if len(income) != 0 || len(expenses) != 0 {
		t.Fatalf("expected both ledgers cleared, got %d income %d expense", len(income), len(expenses))
	}
}

func TestUpdateInvoice_RejectedAfterPaid(t *testing.T) {
	ctx, fixtures := setupTest(t)
	input := &models.NewInvoice{
		InvoiceType: models.InvoiceTypeIncome,
		CompanyId:   fixtures.company.ID,
		InvoiceDate: time.Now(),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(400)},
		},
	}
	invoice := createTestInvoice(t, ctx, input)
	if _, err := MarkInvoicePaid(ctx, invoice.ID, markPaidInput(fixtures.bankAccount.ID)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if _, err := models.UpdateInvoice(ctx, invoice.ID, input); err == nil {
		t.Fatal("expected edit of Paid invoice to fail")
	}
}

// A document accumulates several journal rows over its life (deposit row,
// kept-deposit row); removal must delete every one of them.
func TestDeleteInvoice_RemovesAllJournalRowsForReference(t *testing.T) {
	ctx, fixtures := setupTest(t)

	invoice := createTestInvoice(t, ctx, &models.NewInvoice{
		InvoiceType:    models.InvoiceTypeIncome,
		CompanyId:      fixtures.company.ID,
		InvoiceDate:    time.Now(),
		DepositPercent: decimal.NewFromInt(10),
		Items: []*models.NewLineItem{
			{ItemType: models.LineItemTypeService, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5000)},
		},
	})
	if _, err := RecordDeposit(ctx, invoice.ID, &RecordDepositInput{
		DepositDate:   time.Now().AddDate(0, 0, -7),
		DepositMethod: models.PaymentMethodCash,
		BankAccountId: fixtures.bankAccount.ID,
	}); err != nil {
		t.Fatalf("record deposit: %v", err)
	}
	if _, err := KeepDepositAsIncome(ctx, invoice.ID); err != nil {
		t.Fatalf("keep deposit: %v", err)
	}

	income, _ := models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if len(income) != 2 {
		t.Fatalf("fixture should have 2 income rows, got %d", len(income))
	}

	if err := DeleteInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	income, _ = models.GetIncomeRecordsByReference(ctx, invoice.ID)
	if len(income) != 0 {
		t.Fatalf("expected every income row removed, got %d", len(income))
	}
}
