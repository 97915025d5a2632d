package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Quotation struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	BusinessId           string          `gorm:"uniqueIndex:uix_quotation_number;not null" json:"business_id" binding:"required"`
	Number               string          `gorm:"uniqueIndex:uix_quotation_number;size:50;not null" json:"number"`
	CompanyId            int             `gorm:"not null" json:"company_id" binding:"required"`
	QuotationDate        time.Time       `gorm:"not null" json:"quotation_date" binding:"required"`
	ExpiryDate           *time.Time      `gorm:"default:null" json:"expiry_date"`
	Status               QuotationStatus `gorm:"size:50;default:'Draft'" json:"status"`
	PaymentTerms         PaymentTerms    `gorm:"size:50;default:'DueOnReceipt'" json:"payment_terms"`
	CustomDays           int             `gorm:"default:0" json:"custom_days"`
	DepositPercent       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deposit_percent"`
	TaxEnabled           bool            `gorm:"default:false" json:"tax_enabled"`
	TaxRate              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	SubTotal             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	Total                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Notes                string          `gorm:"size:1000" json:"notes"`
	ConvertedToInvoiceId int             `gorm:"default:null" json:"converted_to_invoice_id"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Company              Company         `json:"company"`
	Items                []QuoteItem     `json:"items"`
}

type QuoteItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	QuotationId  int             `gorm:"index;not null" json:"quotation_id"`
	ItemType     LineItemType    `gorm:"size:50;not null" json:"item_type"`
	Description  string          `gorm:"size:500" json:"description"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit         string          `gorm:"size:50" json:"unit"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	WarehouseId  int             `gorm:"default:null" json:"warehouse_id"`
	EquipmentId  int             `gorm:"default:null" json:"equipment_id"`
	LandId       int             `gorm:"default:null" json:"land_id"`
	MaterialType string          `gorm:"size:100" json:"material_type"`
	VesselId     int             `gorm:"default:null" json:"vessel_id"`
}

// NewLineItem is the line input shared by quotation and invoice forms.
// Reference ids are optional; which ones make sense depends on ItemType
// (equipment_id for equipment sales, land_id + material_type for scrap,
// vessel_id for rentals) but none are enforced as mandatory.
type NewLineItem struct {
	ItemType     LineItemType    `json:"item_type" binding:"required"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	WarehouseId  int             `json:"warehouse_id"`
	EquipmentId  int             `json:"equipment_id"`
	LandId       int             `json:"land_id"`
	MaterialType string          `json:"material_type"`
	VesselId     int             `json:"vessel_id"`
}

type NewQuotation struct {
	CompanyId      int             `json:"company_id" binding:"required"`
	QuotationDate  time.Time       `json:"quotation_date" binding:"required"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
	PaymentTerms   PaymentTerms    `json:"payment_terms"`
	CustomDays     int             `json:"custom_days"`
	DepositPercent decimal.Decimal `json:"deposit_percent"`
	TaxEnabled     bool            `json:"tax_enabled"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Notes          string          `json:"notes"`
	Items          []*NewLineItem  `json:"items" binding:"required"`
}

// line total is qty x price, unrounded; rounding happens once, on the tax
// amount, so the grand total carries the full precision of the lines.
func computeTotals(items []*NewLineItem, taxEnabled bool, taxRate decimal.Decimal) (subTotal, taxAmount, total decimal.Decimal) {
	for _, item := range items {
		subTotal = subTotal.Add(item.Quantity.Mul(item.UnitPrice))
	}
	if taxEnabled {
		taxAmount = utils.RoundMoney(subTotal.Mul(taxRate.Div(decimal.NewFromInt(100))))
	}
	total = subTotal.Add(taxAmount)
	return subTotal, taxAmount, total
}

func validateLineItems(ctx context.Context, businessId string, items []*NewLineItem) error {
	if len(items) == 0 {
		return errors.New("at least one line item is required")
	}
	for _, item := range items {
		if err := ValidLineItemType(item.ItemType); err != nil {
			return err
		}
		if item.EquipmentId > 0 {
			if err := utils.ValidateResourceId[Equipment](ctx, businessId, item.EquipmentId); err != nil {
				return errors.New("equipmentId does not exist")
			}
		}
		if item.LandId > 0 {
			if err := utils.ValidateResourceId[Land](ctx, businessId, item.LandId); err != nil {
				return errors.New("landId does not exist")
			}
		}
		if item.WarehouseId > 0 {
			if err := utils.ValidateResourceId[Warehouse](ctx, businessId, item.WarehouseId); err != nil {
				return errors.New("warehouseId does not exist")
			}
		}
		if item.VesselId > 0 {
			if err := utils.ValidateResourceId[Vessel](ctx, businessId, item.VesselId); err != nil {
				return errors.New("vesselId does not exist")
			}
		}
	}
	return nil
}

func buildQuoteItems(items []*NewLineItem) []QuoteItem {
	results := make([]QuoteItem, 0, len(items))
	for _, item := range items {
		results = append(results, QuoteItem{
			ItemType:     item.ItemType,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.Quantity.Mul(item.UnitPrice),
			WarehouseId:  item.WarehouseId,
			EquipmentId:  item.EquipmentId,
			LandId:       item.LandId,
			MaterialType: item.MaterialType,
			VesselId:     item.VesselId,
		})
	}
	return results
}

func CreateQuotation(ctx context.Context, input *NewQuotation) (*Quotation, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Company](ctx, businessId, input.CompanyId); err != nil {
		return nil, errors.New("companyId does not exist")
	}
	if err := validateLineItems(ctx, businessId, input.Items); err != nil {
		return nil, err
	}

	subTotal, taxAmount, total := computeTotals(input.Items, input.TaxEnabled, input.TaxRate)

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = PaymentTermsDueOnReceipt
	}

	quotation := Quotation{
		BusinessId:     businessId,
		CompanyId:      input.CompanyId,
		QuotationDate:  input.QuotationDate,
		ExpiryDate:     input.ExpiryDate,
		Status:         QuotationStatusDraft,
		PaymentTerms:   paymentTerms,
		CustomDays:     input.CustomDays,
		DepositPercent: input.DepositPercent,
		TaxEnabled:     input.TaxEnabled,
		TaxRate:        input.TaxRate,
		SubTotal:       subTotal,
		TaxAmount:      taxAmount,
		Total:          total,
		Notes:          input.Notes,
		Items:          buildQuoteItems(input.Items),
	}

	db := config.GetDB()
	err := RetryOnDuplicateNumber(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := NextDocumentNumber(tx, ctx, businessId, DocumentKindQuotation, input.QuotationDate.Year())
			if err != nil {
				return err
			}
			quotation.Number = number
			return tx.Create(&quotation).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// UpdateQuotation replaces the whole line item set; partial item edits are not
// supported. Only Draft and Sent documents are editable. The document number
// never changes on edit, even across a year boundary.
func UpdateQuotation(ctx context.Context, id int, input *NewQuotation) (*Quotation, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	release, err := utils.LockDocument(ctx, businessId, string(DocumentKindQuotation), id)
	if err != nil {
		return nil, err
	}
	defer release()

	quotation, err := utils.FetchModel[Quotation](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateResourceId[Company](ctx, businessId, input.CompanyId); err != nil {
		return nil, errors.New("companyId does not exist")
	}
	if err := validateLineItems(ctx, businessId, input.Items); err != nil {
		return nil, err
	}

	subTotal, taxAmount, total := computeTotals(input.Items, input.TaxEnabled, input.TaxRate)

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = PaymentTermsDueOnReceipt
	}

	quotation.CompanyId = input.CompanyId
	quotation.QuotationDate = input.QuotationDate
	quotation.ExpiryDate = input.ExpiryDate
	quotation.PaymentTerms = paymentTerms
	quotation.CustomDays = input.CustomDays
	quotation.DepositPercent = input.DepositPercent
	quotation.TaxEnabled = input.TaxEnabled
	quotation.TaxRate = input.TaxRate
	quotation.SubTotal = subTotal
	quotation.TaxAmount = taxAmount
	quotation.Total = total
	quotation.Notes = input.Notes

	items := buildQuoteItems(input.Items)
	for i := range items {
		items[i].QuotationId = quotation.ID
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-check the status on a fresh read; a transition may have landed
		// between the fetch above and this transaction
		var current Quotation
		if err := tx.Where("business_id = ?", businessId).First(&current, quotation.ID).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if !current.Status.Editable() {
			return errors.New("quotation can no longer be edited")
		}
		if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&QuoteItem{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Omit("Items").Save(quotation).Error
	})
	if err != nil {
		return nil, err
	}
	quotation.Items = items
	return quotation, nil
}

func GetQuotation(ctx context.Context, id int) (*Quotation, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Quotation](ctx, businessId, id, "Items", "Company")
}

func GetQuotations(ctx context.Context) ([]*Quotation, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Quotation](ctx, businessId, "Items")
}
