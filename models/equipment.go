package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

// Equipment is salvaged machinery recovered from a land site and held in a
// warehouse until sold. Quantity and Status are mutated only by the stock
// adjuster in lockstep with equipment-sale line items.
type Equipment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id" binding:"required"`
	LandId      int             `gorm:"index;default:null" json:"land_id"`
	WarehouseId int             `gorm:"index;default:null" json:"warehouse_id"`
	Name        string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Status      EquipmentStatus `gorm:"size:50;not null;default:'Available'" json:"status"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEquipment struct {
	LandId      int             `json:"land_id"`
	WarehouseId int             `json:"warehouse_id"`
	Name        string          `json:"name" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      EquipmentStatus `json:"status"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func CreateEquipment(ctx context.Context, input *NewEquipment) (*Equipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if input.LandId > 0 {
		if err := utils.ValidateResourceId[Land](ctx, businessId, input.LandId); err != nil {
			return nil, errors.New("land not found")
		}
	}
	if input.WarehouseId > 0 {
		if err := utils.ValidateResourceId[Warehouse](ctx, businessId, input.WarehouseId); err != nil {
			return nil, errors.New("warehouse not found")
		}
	}

	status := input.Status
	if status == "" {
		status = EquipmentStatusAvailable
		if input.WarehouseId > 0 {
			status = EquipmentStatusInWarehouse
		}
	}

	equipment := Equipment{
		BusinessId:  businessId,
		LandId:      input.LandId,
		WarehouseId: input.WarehouseId,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Status:      status,
		UnitPrice:   input.UnitPrice,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&equipment).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

func GetEquipment(ctx context.Context, id int) (*Equipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Equipment](ctx, businessId, id)
}

func GetEquipmentAll(ctx context.Context) ([]*Equipment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Equipment](ctx, businessId)
}
