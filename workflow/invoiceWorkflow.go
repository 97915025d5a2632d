package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MarkPaidInput struct {
	PaymentDate   time.Time            `json:"payment_date" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	BankAccountId int                  `json:"bank_account_id" binding:"required"`
}

type RecordDepositInput struct {
	DepositDate   time.Time            `json:"deposit_date" binding:"required"`
	DepositMethod models.PaymentMethod `json:"deposit_method" binding:"required"`
	BankAccountId int                  `json:"bank_account_id" binding:"required"`
}

type RefundInput struct {
	RefundDate    time.Time            `json:"refund_date" binding:"required"`
	RefundMethod  models.PaymentMethod `json:"refund_method" binding:"required"`
	BankAccountId int                  `json:"bank_account_id" binding:"required"`
	Notes         string               `json:"notes"`
	Confirm       bool                 `json:"confirm"`
}

func fetchInvoiceForTransition(ctx context.Context, businessId string, id int) (*models.Invoice, error) {
	return utils.FetchModel[models.Invoice](ctx, businessId, id, "Items", "Company")
}

func setInvoiceStatus(ctx context.Context, id int, from []models.InvoiceStatus, to models.InvoiceStatus) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := utils.FetchModel[models.Invoice](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, s := range from {
		if invoice.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("invoice cannot move from %s to %s", invoice.Status, to)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(invoice).Update("status", to).Error
	if err != nil {
		return nil, err
	}
	invoice.Status = to
	return invoice, nil
}

func SendInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	return setInvoiceStatus(ctx, id,
		[]models.InvoiceStatus{models.InvoiceStatusDraft}, models.InvoiceStatusSent)
}

func MarkInvoiceOverdue(ctx context.Context, id int) (*models.Invoice, error) {
	return setInvoiceStatus(ctx, id,
		[]models.InvoiceStatus{models.InvoiceStatusSent}, models.InvoiceStatusOverdue)
}

// MarkInvoicePaid completes a sale: status and payment fields, an income
// journal row for the grand total, and the stock deduction for every line
// item, in that order inside one transaction.
//
// The journal post runs under a savepoint. If it fails, the savepoint is
// rolled back and the remaining steps still run and commit; a sale must never
// be blocked because the income ledger write broke. The caller gets a
// *TransitionError with Partial() true and is expected to surface a warning.
func MarkInvoicePaid(ctx context.Context, id int, input *MarkPaidInput) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}
	if input.BankAccountId <= 0 {
		return nil, errors.New("bank account is required")
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.InvoiceType != models.InvoiceTypeIncome {
		return nil, errors.New("only income invoices can be marked paid")
	}
	if !invoice.Status.Payable() {
		return nil, fmt.Errorf("invoice cannot be marked paid from %s", invoice.Status)
	}
	if err := utils.ValidateResourceId[models.BankAccount](ctx, businessId, input.BankAccountId); err != nil {
		return nil, errors.New("bankAccountId does not exist")
	}

	logger := config.GetLogger()
	var journalErr error
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(invoice).Updates(map[string]interface{}{
			"status":          models.InvoiceStatusPaid,
			"paid_date":       input.PaymentDate,
			"payment_method":  input.PaymentMethod,
			"bank_account_id": input.BankAccountId,
		}).Error
		if err != nil {
			return &TransitionError{Op: "MarkInvoicePaid", FailedStep: "UpdateStatus", Err: err}
		}

		tx.SavePoint("journal")
		journalErr = PostIncome(tx, logger, businessId, JournalEntry{
			Date:          input.PaymentDate,
			Description:   fmt.Sprintf("Payment for Invoice %s - %s", invoice.Number, invoice.Company.Name),
			Amount:        invoice.Total,
			PaymentMethod: input.PaymentMethod,
			BankAccountId: input.BankAccountId,
			ReferenceId:   invoice.ID,
		})
		if journalErr != nil {
			tx.RollbackTo("journal")
		}

		if err := AdjustStock(tx, logger, businessId, invoice.Items, AdjustApply); err != nil {
			return &TransitionError{Op: "MarkInvoicePaid", FailedStep: "AdjustStock",
				CompletedSteps: []string{"UpdateStatus"}, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidDate = &input.PaymentDate
	invoice.PaymentMethod = input.PaymentMethod
	invoice.BankAccountId = input.BankAccountId

	if journalErr != nil {
		return invoice, &TransitionError{Op: "MarkInvoicePaid", FailedStep: "PostIncome",
			CompletedSteps: []string{"UpdateStatus", "AdjustStock"}, Committed: true, Err: journalErr}
	}
	return invoice, nil
}

// RecordDeposit takes the agreed deposit percentage of the total as an
// up-front payment. Stock is untouched; the goods only move when the sale
// completes.
func RecordDeposit(ctx context.Context, id int, input *RecordDepositInput) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.InvoiceType != models.InvoiceTypeIncome {
		return nil, errors.New("only income invoices can take a deposit")
	}
	if !invoice.Status.Payable() {
		return nil, fmt.Errorf("deposit cannot be recorded from %s", invoice.Status)
	}
	if !invoice.DepositPercent.IsPositive() {
		return nil, errors.New("invoice has no deposit percentage")
	}
	if err := utils.ValidateResourceId[models.BankAccount](ctx, businessId, input.BankAccountId); err != nil {
		return nil, errors.New("bankAccountId does not exist")
	}

	depositAmount := utils.RoundMoney(invoice.Total.Mul(invoice.DepositPercent.Div(decimal.NewFromInt(100))))

	logger := config.GetLogger()
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(invoice).Updates(map[string]interface{}{
			"status":                  models.InvoiceStatusDepositPaid,
			"deposit_paid":            true,
			"deposit_amount":          depositAmount,
			"deposit_date":            input.DepositDate,
			"deposit_method":          input.DepositMethod,
			"deposit_bank_account_id": input.BankAccountId,
		}).Error
		if err != nil {
			return &TransitionError{Op: "RecordDeposit", FailedStep: "UpdateStatus", Err: err}
		}
		err = PostIncome(tx, logger, businessId, JournalEntry{
			Date:          input.DepositDate,
			Description:   fmt.Sprintf("Deposit for Invoice %s - %s", invoice.Number, invoice.Company.Name),
			Amount:        depositAmount,
			PaymentMethod: input.DepositMethod,
			BankAccountId: input.BankAccountId,
			ReferenceId:   invoice.ID,
		})
		if err != nil {
			return &TransitionError{Op: "RecordDeposit", FailedStep: "PostIncome",
				CompletedSteps: []string{"UpdateStatus"}, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatusDepositPaid
	invoice.DepositPaid = true
	invoice.DepositAmount = depositAmount
	invoice.DepositDate = &input.DepositDate
	invoice.DepositMethod = input.DepositMethod
	invoice.DepositBankAccountId = input.BankAccountId
	return invoice, nil
}

// RefundDeposit cancels a deposit-paid sale and returns the money. The
// original deposit income row stays on the books; the refund is recorded as
// an offsetting expense.
func RefundDeposit(ctx context.Context, id int, input *RefundInput) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDepositPaid {
		return nil, fmt.Errorf("deposit cannot be refunded from %s", invoice.Status)
	}

	logger := config.GetLogger()
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(invoice).Updates(map[string]interface{}{
			"status":                 models.InvoiceStatusCancelledRefunded,
			"refund_date":            input.RefundDate,
			"refund_method":          input.RefundMethod,
			"refund_bank_account_id": input.BankAccountId,
			"refund_notes":           input.Notes,
		}).Error
		if err != nil {
			return &TransitionError{Op: "RefundDeposit", FailedStep: "UpdateStatus", Err: err}
		}
		err = PostExpense(tx, logger, businessId, JournalEntry{
			Date:          input.RefundDate,
			Description:   fmt.Sprintf("Deposit refund for Invoice %s - %s", invoice.Number, invoice.Company.Name),
			Amount:        invoice.DepositAmount,
			PaymentMethod: input.RefundMethod,
			BankAccountId: input.BankAccountId,
			ReferenceId:   invoice.ID,
		})
		if err != nil {
			return &TransitionError{Op: "RefundDeposit", FailedStep: "PostExpense",
				CompletedSteps: []string{"UpdateStatus"}, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatusCancelledRefunded
	invoice.RefundDate = &input.RefundDate
	invoice.RefundMethod = input.RefundMethod
	invoice.RefundBankAccountId = input.BankAccountId
	invoice.RefundNotes = input.Notes
	return invoice, nil
}

// KeepDepositAsIncome cancels a deposit-paid sale and keeps the deposit. A
// second income row is written, dated today but carrying the ORIGINAL
// deposit's payment method and bank account; the money physically arrived
// through those when the deposit was taken.
func KeepDepositAsIncome(ctx context.Context, id int) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDepositPaid {
		return nil, fmt.Errorf("deposit cannot be kept from %s", invoice.Status)
	}

	logger := config.GetLogger()
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(invoice).Updates(map[string]interface{}{
			"status":                 models.InvoiceStatusCancelledDepositKept,
			"deposit_kept_as_income": true,
		}).Error
		if err != nil {
			return &TransitionError{Op: "KeepDepositAsIncome", FailedStep: "UpdateStatus", Err: err}
		}
		err = PostIncome(tx, logger, businessId, JournalEntry{
			Date:          time.Now(),
			Description:   fmt.Sprintf("Deposit kept for cancelled Invoice %s - %s", invoice.Number, invoice.Company.Name),
			Amount:        invoice.DepositAmount,
			PaymentMethod: invoice.DepositMethod,
			BankAccountId: invoice.DepositBankAccountId,
			ReferenceId:   invoice.ID,
		})
		if err != nil {
			return &TransitionError{Op: "KeepDepositAsIncome", FailedStep: "PostIncome",
				CompletedSteps: []string{"UpdateStatus"}, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatusCancelledDepositKept
	invoice.DepositKeptAsIncome = true
	return invoice, nil
}

// RefundPaidSale unwinds a completed sale: every income row for the invoice
// is deleted, one expense row for the full total is written, and stock is
// restored. Destructive enough that the caller must set Confirm explicitly.
func RefundPaidSale(ctx context.Context, id int, input *RefundInput) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "edit"); err != nil {
		return nil, err
	}
	if !input.Confirm {
		return nil, errors.New("refund of a paid sale requires confirmation")
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusPaid {
		return nil, fmt.Errorf("only Paid invoices can be refunded, got %s", invoice.Status)
	}

	logger := config.GetLogger()
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := RemoveIncomeByReference(tx, logger, businessId, invoice.ID); err != nil {
			return &TransitionError{Op: "RefundPaidSale", FailedStep: "RemoveIncome", Err: err}
		}
		err := PostExpense(tx, logger, businessId, JournalEntry{
			Date:          input.RefundDate,
			Description:   fmt.Sprintf("Refund for Invoice %s - %s", invoice.Number, invoice.Company.Name),
			Amount:        invoice.Total,
			PaymentMethod: input.RefundMethod,
			BankAccountId: input.BankAccountId,
			ReferenceId:   invoice.ID,
		})
		if err != nil {
			return &TransitionError{Op: "RefundPaidSale", FailedStep: "PostExpense",
				CompletedSteps: []string{"RemoveIncome"}, Err: err}
		}
		if err := AdjustStock(tx, logger, businessId, invoice.Items, AdjustReverse); err != nil {
			return &TransitionError{Op: "RefundPaidSale", FailedStep: "AdjustStock",
				CompletedSteps: []string{"RemoveIncome", "PostExpense"}, Err: err}
		}
		err = tx.Model(invoice).Updates(map[string]interface{}{
			"status":                 models.InvoiceStatusCancelledRefunded,
			"refund_date":            input.RefundDate,
			"refund_method":          input.RefundMethod,
			"refund_bank_account_id": input.BankAccountId,
			"refund_notes":           input.Notes,
		}).Error
		if err != nil {
			return &TransitionError{Op: "RefundPaidSale", FailedStep: "UpdateStatus",
				CompletedSteps: []string{"RemoveIncome", "PostExpense", "AdjustStock"}, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatusCancelledRefunded
	invoice.RefundDate = &input.RefundDate
	invoice.RefundMethod = input.RefundMethod
	invoice.RefundBankAccountId = input.BankAccountId
	invoice.RefundNotes = input.Notes
	return invoice, nil
}

// DeleteInvoice removes the invoice after compensating every side effect it
// ever produced: a paid sale gives its stock back and loses its income rows,
// a deposit-only sale loses its income rows, expense rows always go, and a
// source quotation is returned to Approved so it can be converted again.
//
// Exposure policy: handlers only offer delete on Draft unless
// STRICT_DELETE_DRAFT_ONLY=false. The workflow itself compensates whatever
// state it finds.
func DeleteInvoice(ctx context.Context, id int) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Invoices", "delete"); err != nil {
		return err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindInvoice), id)
	if err != nil {
		return err
	}
	defer release()

	invoice, err := fetchInvoiceForTransition(ctx, businessId, id)
	if err != nil {
		return err
	}

	logger := config.GetLogger()
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.Status == models.InvoiceStatusPaid {
			if err := RemoveJournalByReference(tx, logger, businessId, invoice.ID); err != nil {
				return &TransitionError{Op: "DeleteInvoice", FailedStep: "RemoveJournal", Err: err}
			}
			if err := AdjustStock(tx, logger, businessId, invoice.Items, AdjustReverse); err != nil {
				return &TransitionError{Op: "DeleteInvoice", FailedStep: "AdjustStock",
					CompletedSteps: []string{"RemoveJournal"}, Err: err}
			}
		} else {
			if invoice.DepositPaid {
				if err := RemoveIncomeByReference(tx, logger, businessId, invoice.ID); err != nil {
					return &TransitionError{Op: "DeleteInvoice", FailedStep: "RemoveIncome", Err: err}
				}
			}
			err := tx.Where("business_id = ? AND reference_id = ?", businessId, invoice.ID).
				Delete(&models.Expense{}).Error
			if err != nil {
				return &TransitionError{Op: "DeleteInvoice", FailedStep: "RemoveExpenses", Err: err}
			}
		}

		err = tx.Model(&models.Quotation{}).
			Where("business_id = ? AND converted_to_invoice_id = ?", businessId, invoice.ID).
			Updates(map[string]interface{}{
				"status":                  models.QuotationStatusApproved,
				"converted_to_invoice_id": 0,
			}).Error
		if err != nil {
			return &TransitionError{Op: "DeleteInvoice", FailedStep: "ResetQuotation", Err: err}
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return &TransitionError{Op: "DeleteInvoice", FailedStep: "DeleteItems", Err: err}
		}
		if err := tx.Delete(invoice).Error; err != nil {
			return &TransitionError{Op: "DeleteInvoice", FailedStep: "DeleteInvoice", Err: err}
		}
		return nil
	})
}
