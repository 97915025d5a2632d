package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

// Company is a client or counterparty of the salvage business.
// Reference data: consumed by document headers, never mutated by transitions.
type Company struct {
	ID          int       `gorm:"primary_key" json:"id"`
	BusinessId  string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name        string    `gorm:"size:255;not null" json:"name" binding:"required"`
	ContactName string    `gorm:"size:255" json:"contact_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:50" json:"phone"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[Company](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	company := Company{
		BusinessId:  businessId,
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func GetCompanies(ctx context.Context) ([]*Company, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Company](ctx, businessId)
}
