package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// NextDocumentNumber allocates the next sequential human-readable number for
// a document kind and year: QUO-2025-001, INV-2025-007, ...
//
// The scan takes the lexicographically-last matching number, which is the
// numeric maximum only because the suffix is zero-padded to 3 digits. Callers
// must run this inside the transaction that creates the document, while
// holding the document lock; the unique index on the number column is the
// backstop against concurrent allocation.
func NextDocumentNumber(tx *gorm.DB, ctx context.Context, businessId string, kind DocumentKind, year int) (string, error) {
	if tx == nil {
		return "", errors.New("tx is nil")
	}

	prefix := fmt.Sprintf("%s-%d-", kind, year)

	var model interface{}
	switch kind {
	case DocumentKindQuotation:
		model = &Quotation{}
	case DocumentKindInvoice:
		model = &Invoice{}
	default:
		return "", errors.New("invalid document kind")
	}

	var numbers []string
	err := tx.WithContext(ctx).Model(model).
		Where("business_id = ? AND number LIKE ?", businessId, prefix+"%").
		Order("number DESC").Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}

	seq := 0
	if len(numbers) > 0 {
		suffix := strings.TrimPrefix(numbers[0], prefix)
		if n, perr := strconv.Atoi(suffix); perr == nil {
			seq = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

// RetryOnDuplicateNumber reruns fn once when it lost a concurrent race on the
// number's unique index. The rerun opens a fresh transaction, scans again and
// allocates past the winner's number; a second duplicate is returned as-is.
func RetryOnDuplicateNumber(fn func() error) error {
	err := fn()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = fn()
	}
	return err
}
