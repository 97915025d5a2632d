package workflow

import (
	"errors"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdjustDirection string

const (
	AdjustApply   AdjustDirection = "apply"
	AdjustReverse AdjustDirection = "reverse"
)

// AdjustStock walks the invoice line items and mutates the equipment and land
// ledgers. Apply and reverse are mirror images, NOT idempotent: running apply
// twice deducts twice. Callers must guarantee exactly-once via the document
// lock and status guards.
//
// Line items whose equipment/land reference no longer resolves are skipped
// without error; stock for deleted references cannot be adjusted anyway.
// Rental/service/other lines carry no stock and are ignored.
func AdjustStock(tx *gorm.DB, logger *logrus.Logger, businessId string, items []models.InvoiceItem, direction AdjustDirection) error {
	if direction != AdjustApply && direction != AdjustReverse {
		return errors.New("invalid adjust direction")
	}

	for _, item := range items {
		switch item.ItemType {
		case models.LineItemTypeEquipmentSale:
			if item.EquipmentId <= 0 {
				continue
			}
			if err := adjustEquipment(tx, logger, businessId, item, direction); err != nil {
				return err
			}
		case models.LineItemTypeScrapSale:
			if item.LandId <= 0 {
				continue
			}
			if err := adjustLand(tx, logger, businessId, item, direction); err != nil {
				return err
			}
		}
	}
	return nil
}

func adjustEquipment(tx *gorm.DB, logger *logrus.Logger, businessId string, item models.InvoiceItem, direction AdjustDirection) error {
	var equipment models.Equipment
	err := tx.Where("business_id = ?", businessId).First(&equipment, item.EquipmentId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		config.LogError(logger, "ledgerAdjuster.go", "adjustEquipment", "FetchEquipment", item.EquipmentId, err)
		return err
	}

	if direction == AdjustApply {
		equipment.Quantity = equipment.Quantity.Sub(item.Quantity)
		if equipment.Quantity.IsNegative() {
			equipment.Quantity = decimal.Zero
		}
		if equipment.Quantity.LessThanOrEqual(decimal.Zero) {
			equipment.Status = models.EquipmentStatusSold
		}
	} else {
		equipment.Quantity = equipment.Quantity.Add(item.Quantity)
		if item.WarehouseId > 0 {
			equipment.Status = models.EquipmentStatusInWarehouse
		} else {
			equipment.Status = models.EquipmentStatusAvailable
		}
	}

	err = tx.Select("quantity", "status").Save(&equipment).Error
	if err != nil {
		config.LogError(logger, "ledgerAdjuster.go", "adjustEquipment", "SaveEquipment", equipment, err)
	}
	return err
}

func adjustLand(tx *gorm.DB, logger *logrus.Logger, businessId string, item models.InvoiceItem, direction AdjustDirection) error {
	var land models.Land
	err := tx.Where("business_id = ?", businessId).First(&land, item.LandId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		config.LogError(logger, "ledgerAdjuster.go", "adjustLand", "FetchLand", item.LandId, err)
		return err
	}

	if direction == AdjustApply {
		land.RemainingTonnage = land.RemainingTonnage.Sub(item.Quantity)
		if land.RemainingTonnage.IsNegative() {
			land.RemainingTonnage = decimal.Zero
		}
		land.ScrapTonnageSold = land.ScrapTonnageSold.Add(item.Quantity)
	} else {
		land.RemainingTonnage = land.RemainingTonnage.Add(item.Quantity)
		land.ScrapTonnageSold = land.ScrapTonnageSold.Sub(item.Quantity)
		if land.ScrapTonnageSold.IsNegative() {
			land.ScrapTonnageSold = decimal.Zero
		}
	}

	err = tx.Select("remaining_tonnage", "scrap_tonnage_sold").Save(&land).Error
	if err != nil {
		config.LogError(logger, "ledgerAdjuster.go", "adjustLand", "SaveLand", land, err)
	}
	return err
}
