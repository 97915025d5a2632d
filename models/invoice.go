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

// Invoice covers both directions of money flow: InvoiceType Income for sales
// to customers, Expense for purchases. The deposit columns form a sub-record
// that exists only while status is Deposit Paid or one of the cancelled
// terminal states that inherit from it.
type Invoice struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	BusinessId           string          `gorm:"uniqueIndex:uix_invoice_number;not null" json:"business_id" binding:"required"`
	Number               string          `gorm:"uniqueIndex:uix_invoice_number;size:50;not null" json:"number"`
	InvoiceType          InvoiceType     `gorm:"size:50;default:'Income'" json:"invoice_type"`
	CompanyId            int             `gorm:"not null" json:"company_id" binding:"required"`
	InvoiceDate          time.Time       `gorm:"not null" json:"invoice_date" binding:"required"`
	DueDate              *time.Time      `gorm:"default:null" json:"due_date"`
	PaymentTerms         PaymentTerms    `gorm:"size:50;default:'DueOnReceipt'" json:"payment_terms"`
	CustomDays           int             `gorm:"default:0" json:"custom_days"`
	Status               InvoiceStatus   `gorm:"size:50;default:'Draft'" json:"status"`
	TaxEnabled           bool            `gorm:"default:false" json:"tax_enabled"`
	TaxRate              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	SubTotal             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	Total                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Notes                string          `gorm:"size:1000" json:"notes"`
	QuotationId          int             `gorm:"default:null" json:"quotation_id"`
	PaidDate             *time.Time      `gorm:"default:null" json:"paid_date"`
	PaymentMethod        PaymentMethod   `gorm:"size:50" json:"payment_method"`
	BankAccountId        int             `gorm:"default:null" json:"bank_account_id"`
	DepositPercent       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deposit_percent"`
	DepositPaid          bool            `gorm:"default:false" json:"deposit_paid"`
	DepositAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deposit_amount"`
	DepositDate          *time.Time      `gorm:"default:null" json:"deposit_date"`
	DepositMethod        PaymentMethod   `gorm:"size:50" json:"deposit_method"`
	DepositBankAccountId int             `gorm:"default:null" json:"deposit_bank_account_id"`
	DepositKeptAsIncome  bool            `gorm:"default:false" json:"deposit_kept_as_income"`
	RefundDate           *time.Time      `gorm:"default:null" json:"refund_date"`
	RefundMethod         PaymentMethod   `gorm:"size:50" json:"refund_method"`
	RefundBankAccountId  int             `gorm:"default:null" json:"refund_bank_account_id"`
	RefundNotes          string          `gorm:"size:500" json:"refund_notes"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Company              Company         `json:"company"`
	Items                []InvoiceItem   `json:"items"`
}

type InvoiceItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	InvoiceId    int             `gorm:"index;not null" json:"invoice_id"`
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

type NewInvoice struct {
	InvoiceType    InvoiceType     `json:"invoice_type" binding:"required"`
	CompanyId      int             `json:"company_id" binding:"required"`
	InvoiceDate    time.Time       `json:"invoice_date" binding:"required"`
	PaymentTerms   PaymentTerms    `json:"payment_terms"`
	CustomDays     int             `json:"custom_days"`
	DepositPercent decimal.Decimal `json:"deposit_percent"`
	TaxEnabled     bool            `json:"tax_enabled"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Notes          string          `json:"notes"`
	Items          []*NewLineItem  `json:"items" binding:"required"`
}

func buildInvoiceItems(items []*NewLineItem) []InvoiceItem {
	results := make([]InvoiceItem, 0, len(items))
	for _, item := range items {
		results = append(results, InvoiceItem{
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

func validateInvoiceType(t InvoiceType) error {
	if t != InvoiceTypeIncome && t != InvoiceTypeExpense {
		return errors.New("invalid invoice type")
	}
	return nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := validateInvoiceType(input.InvoiceType); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Company](ctx, businessId, input.CompanyId); err != nil {
		return nil, errors.New("companyId does not exist")
	}
	if err := validateLineItems(ctx, businessId, input.Items); err != nil {
		return nil, err
	}

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = PaymentTermsDueOnReceipt
	}

	subTotal, taxAmount, total := computeTotals(input.Items, input.TaxEnabled, input.TaxRate)

	invoice := Invoice{
		BusinessId:     businessId,
		InvoiceType:    input.InvoiceType,
		CompanyId:      input.CompanyId,
		InvoiceDate:    input.InvoiceDate,
		DueDate:        CalculateDueDate(input.InvoiceDate, paymentTerms, input.CustomDays),
		PaymentTerms:   paymentTerms,
		CustomDays:     input.CustomDays,
		DepositPercent: input.DepositPercent,
		Status:         InvoiceStatusDraft,
		TaxEnabled:     input.TaxEnabled,
		TaxRate:        input.TaxRate,
		SubTotal:       subTotal,
		TaxAmount:      taxAmount,
		Total:          total,
		Notes:          input.Notes,
		Items:          buildInvoiceItems(input.Items),
	}

	db := config.GetDB()
	err := RetryOnDuplicateNumber(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := NextDocumentNumber(tx, ctx, businessId, DocumentKindInvoice, input.InvoiceDate.Year())
			if err != nil {
				return err
			}
			invoice.Number = number
			return tx.Create(&invoice).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice replaces the whole line item set, like UpdateQuotation.
// Editable states are Draft, Sent and Overdue; anything paid or cancelled is
// frozen. The number is kept even when the invoice date moves to another year.
func UpdateInvoice(ctx context.Context, id int, input *NewInvoice) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	release, err := utils.LockDocument(ctx, businessId, string(DocumentKindInvoice), id)
	if err != nil {
		return nil, err
	}
	defer release()

	invoice, err := utils.FetchModel[Invoice](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	if err := validateInvoiceType(input.InvoiceType); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Company](ctx, businessId, input.CompanyId); err != nil {
		return nil, errors.New("companyId does not exist")
	}
	if err := validateLineItems(ctx, businessId, input.Items); err != nil {
		return nil, err
	}

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = PaymentTermsDueOnReceipt
	}

	subTotal, taxAmount, total := computeTotals(input.Items, input.TaxEnabled, input.TaxRate)

	invoice.InvoiceType = input.InvoiceType
	invoice.CompanyId = input.CompanyId
	invoice.InvoiceDate = input.InvoiceDate
	invoice.DueDate = CalculateDueDate(input.InvoiceDate, paymentTerms, input.CustomDays)
	invoice.PaymentTerms = paymentTerms
	invoice.CustomDays = input.CustomDays
	invoice.DepositPercent = input.DepositPercent
	invoice.TaxEnabled = input.TaxEnabled
	invoice.TaxRate = input.TaxRate
	invoice.SubTotal = subTotal
	invoice.TaxAmount = taxAmount
	invoice.Total = total
	invoice.Notes = input.Notes

	items := buildInvoiceItems(input.Items)
	for i := range items {
		items[i].InvoiceId = invoice.ID
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-check the status on a fresh read; a transition may have landed
		// between the fetch above and this transaction
		var current Invoice
		if err := tx.Where("business_id = ?", businessId).First(&current, invoice.ID).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if !current.Status.Editable() {
			return errors.New("invoice can no longer be edited")
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Omit("Items").Save(invoice).Error
	})
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Invoice](ctx, businessId, id, "Items", "Company")
}

func GetInvoices(ctx context.Context) ([]*Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Invoice](ctx, businessId, "Items")
}
