package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

// BankAccount is the payment target recorded by Mark Paid, deposits and refunds.
type BankAccount struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name          string    `gorm:"size:255;not null" json:"name" binding:"required"`
	BankName      string    `gorm:"size:255" json:"bank_name"`
	AccountNumber string    `gorm:"size:100" json:"account_number"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBankAccount struct {
	Name          string `json:"name" binding:"required"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

func CreateBankAccount(ctx context.Context, input *NewBankAccount) (*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[BankAccount](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	account := BankAccount{
		BusinessId:    businessId,
		Name:          input.Name,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func GetBankAccounts(ctx context.Context) ([]*BankAccount, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[BankAccount](ctx, businessId)
}
