package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

// IncomeRecord is one row of the income journal. ReferenceId points back to
// the originating document id and is deliberately NOT unique: a document can
// accumulate several journal rows (payment, deposit, kept deposit) and
// reversal must always delete every matching row.
//
// PaymentMethod and BankAccountId belong to the extended schema; deployments
// without the journal migration leave them empty (config.JournalExtendedSchema).
type IncomeRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id" binding:"required"`
	RecordDate    time.Time       `gorm:"not null" json:"record_date" binding:"required"`
	Description   string          `gorm:"size:500" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:50" json:"payment_method"`
	BankAccountId int             `gorm:"default:null" json:"bank_account_id"`
	ReferenceId   int             `gorm:"index" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetIncomeRecordsByReference(ctx context.Context, referenceId int) ([]*IncomeRecord, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*IncomeRecord
	err := db.WithContext(ctx).
		Where("business_id = ? AND reference_id = ?", businessId, referenceId).
		Order("record_date").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
