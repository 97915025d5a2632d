package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
)

// Land is a purchased salvage site. RemainingTonnage and ScrapTonnageSold are
// mutated only by the stock adjuster in lockstep with scrap-sale line items.
type Land struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name             string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Location         string          `gorm:"size:255" json:"location"`
	PurchaseDate     *time.Time      `json:"purchase_date"`
	RemainingTonnage decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remaining_tonnage"`
	ScrapTonnageSold decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"scrap_tonnage_sold"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLand struct {
	Name             string          `json:"name" binding:"required"`
	Location         string          `json:"location"`
	PurchaseDate     *time.Time      `json:"purchase_date"`
	RemainingTonnage decimal.Decimal `json:"remaining_tonnage"`
}

func CreateLand(ctx context.Context, input *NewLand) (*Land, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	land := Land{
		BusinessId:       businessId,
		Name:             input.Name,
		Location:         input.Location,
		PurchaseDate:     input.PurchaseDate,
		RemainingTonnage: input.RemainingTonnage,
		ScrapTonnageSold: decimal.Zero,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&land).Error; err != nil {
		return nil, err
	}
	return &land, nil
}

func GetLand(ctx context.Context, id int) (*Land, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Land](ctx, businessId, id)
}

func GetLands(ctx context.Context) ([]*Land, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Land](ctx, businessId)
}
