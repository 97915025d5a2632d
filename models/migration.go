package models

import (
	"log"

	"bitbucket.org/harborworks/salvage_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Business{}, &Company{}, &Warehouse{}, &Vessel{}, &BankAccount{},
		&Land{}, &Equipment{},
		&Quotation{}, &QuoteItem{},
		&Invoice{}, &InvoiceItem{},
		&IncomeRecord{}, &Expense{},
		&Role{}, &Module{}, &RoleModule{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
