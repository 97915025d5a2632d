package config

import (
	"os"
	"strings"
)

// JournalExtendedSchema reports whether the journal ledgers carry the
// payment_method and bank_account_id columns. Deployments that have not run
// the journal migration yet set this to false and the writer emits the
// legacy-minimal column set, instead of masking insert failures with retries.
//
// Set via env:
// - JOURNAL_EXTENDED_SCHEMA=false   (default true)
func JournalExtendedSchema() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("JOURNAL_EXTENDED_SCHEMA")))
	return !(v == "0" || v == "false" || v == "no" || v == "n")
}

// StrictDeleteDraftOnly restricts invoice deletion over HTTP to Draft
// documents. The full reversal path for paid/deposit-paid invoices exists in
// the workflow layer; enabling it is an integrator decision.
//
// Set via env:
// - STRICT_DELETE_DRAFT_ONLY=false   (default true)
func StrictDeleteDraftOnly() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_DELETE_DRAFT_ONLY")))
	return !(v == "0" || v == "false" || v == "no" || v == "n")
}
