package models

import "errors"

type DocumentKind string

const (
	DocumentKindQuotation DocumentKind = "QUO"
	DocumentKindInvoice   DocumentKind = "INV"
)

type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "Draft"
	QuotationStatusSent      QuotationStatus = "Sent"
	QuotationStatusApproved  QuotationStatus = "Approved"
	QuotationStatusRejected  QuotationStatus = "Rejected"
	QuotationStatusConverted QuotationStatus = "Converted"
	QuotationStatusExpired   QuotationStatus = "Expired"
)

// Editable covers the form-edit window; Rejected/Expired documents can only
// be deleted, Converted documents are immutable.
func (s QuotationStatus) Editable() bool {
	return s == QuotationStatusDraft || s == QuotationStatusSent
}

func (s QuotationStatus) Deletable() bool {
	return s == QuotationStatusDraft || s == QuotationStatusRejected || s == QuotationStatusExpired
}

type InvoiceStatus string

const (
	InvoiceStatusDraft                InvoiceStatus = "Draft"
	InvoiceStatusSent                 InvoiceStatus = "Sent"
	InvoiceStatusOverdue              InvoiceStatus = "Overdue"
	InvoiceStatusPartial              InvoiceStatus = "Partial"
	InvoiceStatusPaid                 InvoiceStatus = "Paid"
	InvoiceStatusDepositPaid          InvoiceStatus = "Deposit Paid"
	InvoiceStatusCancelled            InvoiceStatus = "Cancelled"
	InvoiceStatusCancelledDepositKept InvoiceStatus = "Cancelled Deposit Kept"
	InvoiceStatusCancelledRefunded    InvoiceStatus = "Cancelled Refunded"
)

func (s InvoiceStatus) Editable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// Payable states are the only legal sources for Mark Paid and Record Deposit.
func (s InvoiceStatus) Payable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

type InvoiceType string

const (
	InvoiceTypeIncome  InvoiceType = "Income"
	InvoiceTypeExpense InvoiceType = "Expense"
)

type LineItemType string

const (
	LineItemTypeEquipmentSale LineItemType = "Equipment Sale"
	LineItemTypeScrapSale     LineItemType = "Scrap Sale"
	LineItemTypeVesselRental  LineItemType = "Vessel Rental"
	LineItemTypeService       LineItemType = "Service"
	LineItemTypeOther         LineItemType = "Other"
)

func ValidLineItemType(t LineItemType) error {
	switch t {
	case LineItemTypeEquipmentSale, LineItemTypeScrapSale, LineItemTypeVesselRental,
		LineItemTypeService, LineItemTypeOther:
		return nil
	}
	return errors.New("invalid line item type")
}

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "Available"
	EquipmentStatusInWarehouse EquipmentStatus = "In Warehouse"
	EquipmentStatusSold        EquipmentStatus = "Sold"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodOther        PaymentMethod = "Other"
)

type PaymentTerms string

const (
	PaymentTermsDueOnReceipt PaymentTerms = "DueOnReceipt"
	PaymentTermsNet15        PaymentTerms = "Net15"
	PaymentTermsNet30        PaymentTerms = "Net30"
	PaymentTermsNet45        PaymentTerms = "Net45"
	PaymentTermsNet60        PaymentTerms = "Net60"
	PaymentTermsCustom       PaymentTerms = "Custom"
)
