package models

import "time"

// CalculateDueDate derives a due date from the document date and payment
// terms. Unknown terms fall back to due-on-receipt.
func CalculateDueDate(date time.Time, paymentTerms PaymentTerms, customDays int) *time.Time {
	var dueDate time.Time
	switch terms := paymentTerms; terms {
	case PaymentTermsDueOnReceipt:
		dueDate = date
	case PaymentTermsNet15:
		dueDate = date.AddDate(0, 0, 15)
	case PaymentTermsNet30:
		dueDate = date.AddDate(0, 0, 30)
	case PaymentTermsNet45:
		dueDate = date.AddDate(0, 0, 45)
	case PaymentTermsNet60:
		dueDate = date.AddDate(0, 0, 60)
	case PaymentTermsCustom:
		dueDate = date.AddDate(0, 0, customDays)
	default:
		dueDate = date
	}
	return &dueDate
}
