package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

type Vessel struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Name       string    `gorm:"size:255;not null" json:"name" binding:"required"`
	VesselType string    `gorm:"size:100" json:"vessel_type"`
	Registry   string    `gorm:"size:100" json:"registry"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVessel struct {
	Name       string `json:"name" binding:"required"`
	VesselType string `json:"vessel_type"`
	Registry   string `json:"registry"`
}

func CreateVessel(ctx context.Context, input *NewVessel) (*Vessel, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	vessel := Vessel{
		BusinessId: businessId,
		Name:       input.Name,
		VesselType: input.VesselType,
		Registry:   input.Registry,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vessel).Error; err != nil {
		return nil, err
	}
	return &vessel, nil
}

func GetVessels(ctx context.Context) ([]*Vessel, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Vessel](ctx, businessId)
}
