package workflow

import (
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// JournalEntry is the input to the journal writer: one income or expense row
// loosely linked to the originating document through ReferenceId.
type JournalEntry struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	PaymentMethod models.PaymentMethod
	BankAccountId int
	ReferenceId   int
}

// PostIncome writes one row to the income ledger. On the legacy journal
// schema (JOURNAL_EXTENDED_SCHEMA=false) the payment method and bank account
// columns do not exist, so the insert omits them.
func PostIncome(tx *gorm.DB, logger *logrus.Logger, businessId string, entry JournalEntry) error {
	record := models.IncomeRecord{
		BusinessId:  businessId,
		RecordDate:  entry.Date,
		Description: entry.Description,
		Amount:      entry.Amount,
		ReferenceId: entry.ReferenceId,
	}
	dbCtx := tx.Model(&models.IncomeRecord{})
	if config.JournalExtendedSchema() {
		record.PaymentMethod = entry.PaymentMethod
		record.BankAccountId = entry.BankAccountId
	} else {
		dbCtx = dbCtx.Omit("payment_method", "bank_account_id")
	}
	err := dbCtx.Create(&record).Error
	if err != nil {
		config.LogError(logger, "journalWriter.go", "PostIncome", "CreateIncomeRecord", record, err)
	}
	return err
}

// PostExpense writes one row to the expense ledger (refunds).
func PostExpense(tx *gorm.DB, logger *logrus.Logger, businessId string, entry JournalEntry) error {
	record := models.Expense{
		BusinessId:  businessId,
		ExpenseDate: entry.Date,
		Description: entry.Description,
		Amount:      entry.Amount,
		ReferenceId: entry.ReferenceId,
	}
	dbCtx := tx.Model(&models.Expense{})
	if config.JournalExtendedSchema() {
		record.PaymentMethod = entry.PaymentMethod
		record.BankAccountId = entry.BankAccountId
	} else {
		dbCtx = dbCtx.Omit("payment_method", "bank_account_id")
	}
	err := dbCtx.Create(&record).Error
	if err != nil {
		config.LogError(logger, "journalWriter.go", "PostExpense", "CreateExpense", record, err)
	}
	return err
}

// RemoveJournalByReference deletes every income and expense row linked to the
// document. reference_id is not unique (a document can have a deposit row and
// a payment row, or a kept-deposit row) so this is always a multi-row delete.
func RemoveJournalByReference(tx *gorm.DB, logger *logrus.Logger, businessId string, referenceId int) error {
	err := tx.Where("business_id = ? AND reference_id = ?", businessId, referenceId).
		Delete(&models.IncomeRecord{}).Error
	if err != nil {
		config.LogError(logger, "journalWriter.go", "RemoveJournalByReference", "DeleteIncomeRecords", referenceId, err)
		return err
	}
	err = tx.Where("business_id = ? AND reference_id = ?", businessId, referenceId).
		Delete(&models.Expense{}).Error
	if err != nil {
		config.LogError(logger, "journalWriter.go", "RemoveJournalByReference", "DeleteExpenses", referenceId, err)
	}
	return err
}

// RemoveIncomeByReference deletes only the income side, used when cancelling
// a deposit-paid invoice whose refund must stay on the books as an expense.
func RemoveIncomeByReference(tx *gorm.DB, logger *logrus.Logger, businessId string, referenceId int) error {
	err := tx.Where("business_id = ? AND reference_id = ?", businessId, referenceId).
		Delete(&models.IncomeRecord{}).Error
	if err != nil {
		config.LogError(logger, "journalWriter.go", "RemoveIncomeByReference", "DeleteIncomeRecords", referenceId, err)
	}
	return err
}
