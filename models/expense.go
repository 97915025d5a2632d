package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

// Expense is one row of the expense journal (refunds, deposit refunds).
// Same loose reference_id linkage as IncomeRecord.
type Expense struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id" binding:"required"`
	ExpenseDate   time.Time       `gorm:"not null" json:"expense_date" binding:"required"`
	Description   string          `gorm:"size:500" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:50" json:"payment_method"`
	BankAccountId int             `gorm:"default:null" json:"bank_account_id"`
	ReferenceId   int             `gorm:"index" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetExpensesByReference(ctx context.Context, referenceId int) ([]*Expense, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Expense
	err := db.WithContext(ctx).
		Where("business_id = ? AND reference_id = ?", businessId, referenceId).
		Order("expense_date").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
