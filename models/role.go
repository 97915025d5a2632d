package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

type Role struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Module is a permissioned area of the application (Quotations, Invoices, ...).
type Module struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRole struct {
	Name string `json:"name" binding:"required"`
}

type NewModule struct {
	Name string `json:"name" binding:"required"`
}

func CreateRole(ctx context.Context, input *NewRole) (*Role, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateUnique[Role](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	role := Role{BusinessId: businessId, Name: input.Name}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func CreateModule(ctx context.Context, input *NewModule) (*Module, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateUnique[Module](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	module := Module{BusinessId: businessId, Name: input.Name}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}
