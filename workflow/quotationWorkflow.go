package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
	"gorm.io/gorm"
)

func setQuotationStatus(ctx context.Context, id int, from []models.QuotationStatus, to models.QuotationStatus) (*models.Quotation, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Quotations", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindQuotation), id)
	if err != nil {
		return nil, err
	}
	defer release()

	quotation, err := utils.FetchModel[models.Quotation](ctx, businessId, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, s := range from {
		if quotation.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("quotation cannot move from %s to %s", quotation.Status, to)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(quotation).Update("status", to).Error
	if err != nil {
		return nil, err
	}
	quotation.Status = to
	return quotation, nil
}

func SendQuotation(ctx context.Context, id int) (*models.Quotation, error) {
	return setQuotationStatus(ctx, id,
		[]models.QuotationStatus{models.QuotationStatusDraft}, models.QuotationStatusSent)
}

func ApproveQuotation(ctx context.Context, id int) (*models.Quotation, error) {
	return setQuotationStatus(ctx, id,
		[]models.QuotationStatus{models.QuotationStatusDraft, models.QuotationStatusSent}, models.QuotationStatusApproved)
}

func RejectQuotation(ctx context.Context, id int) (*models.Quotation, error) {
	return setQuotationStatus(ctx, id,
		[]models.QuotationStatus{models.QuotationStatusDraft, models.QuotationStatusSent}, models.QuotationStatusRejected)
}

func ExpireQuotation(ctx context.Context, id int) (*models.Quotation, error) {
	return setQuotationStatus(ctx, id,
		[]models.QuotationStatus{models.QuotationStatusSent}, models.QuotationStatusExpired)
}

// ConvertQuotationToInvoice turns an Approved quotation into a fresh Draft
// invoice. The quotation is re-read inside the transaction so two concurrent
// conversions cannot both pass the status guard; the winner stamps
// converted_to_invoice_id and the loser sees Converted.
//
// The invoice is dated today with the due date re-derived from the payment
// terms; everything else (client, terms, deposit percent, totals, notes,
// items with their stock references) carries over verbatim. Stock and journal
// ledgers are untouched, conversion is purely a document operation.
func ConvertQuotationToInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Quotations", "edit"); err != nil {
		return nil, err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindQuotation), id)
	if err != nil {
		return nil, err
	}
	defer release()

	var invoice models.Invoice
	db := config.GetDB()
	convert := func(tx *gorm.DB) error {
		var quotation models.Quotation
		err := tx.Where("business_id = ?", businessId).Preload("Items").First(&quotation, id).Error
		if err != nil {
			return utils.ErrorRecordNotFound
		}
		if quotation.Status != models.QuotationStatusApproved {
			return fmt.Errorf("only Approved quotations can be converted, got %s", quotation.Status)
		}

		today := time.Now()
		invoice = models.Invoice{
			BusinessId:     businessId,
			InvoiceType:    models.InvoiceTypeIncome,
			CompanyId:      quotation.CompanyId,
			InvoiceDate:    today,
			DueDate:        models.CalculateDueDate(today, quotation.PaymentTerms, quotation.CustomDays),
			PaymentTerms:   quotation.PaymentTerms,
			CustomDays:     quotation.CustomDays,
			DepositPercent: quotation.DepositPercent,
			Status:         models.InvoiceStatusDraft,
			TaxEnabled:     quotation.TaxEnabled,
			TaxRate:        quotation.TaxRate,
			SubTotal:       quotation.SubTotal,
			TaxAmount:      quotation.TaxAmount,
			Total:          quotation.Total,
			Notes:          quotation.Notes,
			QuotationId:    quotation.ID,
		}
		for _, item := range quotation.Items {
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				ItemType:     item.ItemType,
				Description:  item.Description,
				Quantity:     item.Quantity,
				Unit:         item.Unit,
				UnitPrice:    item.UnitPrice,
				TotalPrice:   item.TotalPrice,
				WarehouseId:  item.WarehouseId,
				EquipmentId:  item.EquipmentId,
				LandId:       item.LandId,
				MaterialType: item.MaterialType,
				VesselId:     item.VesselId,
			})
		}

		number, err := models.NextDocumentNumber(tx, ctx, businessId, models.DocumentKindInvoice, today.Year())
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		return tx.Model(&quotation).Updates(map[string]interface{}{
			"status":                  models.QuotationStatusConverted,
			"converted_to_invoice_id": invoice.ID,
		}).Error
	}

	err = models.RetryOnDuplicateNumber(func() error {
		return db.WithContext(ctx).Transaction(convert)
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// DeleteQuotation removes the quotation and its items. Status policy (only
// Draft, Rejected and Expired are deletable) is enforced at the handler
// layer, the workflow deletes whatever it is given.
func DeleteQuotation(ctx context.Context, id int) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}
	if err := checkPermission(ctx, "Quotations", "delete"); err != nil {
		return err
	}

	release, err := utils.LockDocument(ctx, businessId, string(models.DocumentKindQuotation), id)
	if err != nil {
		return err
	}
	defer release()

	quotation, err := utils.FetchModel[models.Quotation](ctx, businessId, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(quotation).Error
	})
}
