package handlers

import (
	"bitbucket.org/harborworks/salvage_backend/models"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	quotations := r.Group("/quotations")
	{
		quotations.GET("", ListQuotations)
		quotations.POST("", CreateQuotation)
		quotations.GET("/:id", GetQuotation)
		quotations.PUT("/:id", UpdateQuotation)
		quotations.DELETE("/:id", DeleteQuotation)
		quotations.POST("/:id/send", SendQuotation)
		quotations.POST("/:id/approve", ApproveQuotation)
		quotations.POST("/:id/reject", RejectQuotation)
		quotations.POST("/:id/expire", ExpireQuotation)
		quotations.POST("/:id/convert", ConvertQuotation)
	}

	invoices := r.Group("/invoices")
	{
		invoices.GET("", ListInvoices)
		invoices.POST("", CreateInvoice)
		invoices.GET("/:id", GetInvoice)
		invoices.PUT("/:id", UpdateInvoice)
		invoices.DELETE("/:id", DeleteInvoice)
		invoices.POST("/:id/send", SendInvoice)
		invoices.POST("/:id/overdue", MarkInvoiceOverdue)
		invoices.POST("/:id/mark-paid", MarkInvoicePaid)
		invoices.POST("/:id/record-deposit", RecordDeposit)
		invoices.POST("/:id/refund-deposit", RefundDeposit)
		invoices.POST("/:id/keep-deposit", KeepDepositAsIncome)
		invoices.POST("/:id/refund-sale", RefundPaidSale)
	}

	r.GET("/companies", listHandler(func(c *gin.Context) ([]*models.Company, error) {
		return models.GetCompanies(c.Request.Context())
	}))
	r.POST("/companies", createHandler(func(c *gin.Context, input *models.NewCompany) (*models.Company, error) {
		return models.CreateCompany(c.Request.Context(), input)
	}))
	r.GET("/warehouses", listHandler(func(c *gin.Context) ([]*models.Warehouse, error) {
		return models.GetWarehouses(c.Request.Context())
	}))
	r.POST("/warehouses", createHandler(func(c *gin.Context, input *models.NewWarehouse) (*models.Warehouse, error) {
		return models.CreateWarehouse(c.Request.Context(), input)
	}))
	r.GET("/vessels", listHandler(func(c *gin.Context) ([]*models.Vessel, error) {
		return models.GetVessels(c.Request.Context())
	}))
	r.POST("/vessels", createHandler(func(c *gin.Context, input *models.NewVessel) (*models.Vessel, error) {
		return models.CreateVessel(c.Request.Context(), input)
	}))
	r.GET("/bank-accounts", listHandler(func(c *gin.Context) ([]*models.BankAccount, error) {
		return models.GetBankAccounts(c.Request.Context())
	}))
	r.POST("/bank-accounts", createHandler(func(c *gin.Context, input *models.NewBankAccount) (*models.BankAccount, error) {
		return models.CreateBankAccount(c.Request.Context(), input)
	}))

	r.GET("/lands", listHandler(func(c *gin.Context) ([]*models.Land, error) {
		return models.GetLands(c.Request.Context())
	}))
	r.POST("/lands", createHandler(func(c *gin.Context, input *models.NewLand) (*models.Land, error) {
		return models.CreateLand(c.Request.Context(), input)
	}))
	r.GET("/lands/:id", GetLandById)
	r.GET("/equipment", listHandler(func(c *gin.Context) ([]*models.Equipment, error) {
		return models.GetEquipmentAll(c.Request.Context())
	}))
	r.POST("/equipment", createHandler(func(c *gin.Context, input *models.NewEquipment) (*models.Equipment, error) {
		return models.CreateEquipment(c.Request.Context(), input)
	}))
	r.GET("/equipment/:id", GetEquipmentById)

	r.GET("/journal/:referenceId", ListJournalByReference)

	r.POST("/roles", createHandler(func(c *gin.Context, input *models.NewRole) (*models.Role, error) {
		return models.CreateRole(c.Request.Context(), input)
	}))
	r.POST("/modules", createHandler(func(c *gin.Context, input *models.NewModule) (*models.Module, error) {
		return models.CreateModule(c.Request.Context(), input)
	}))
	r.POST("/role-modules", createHandler(func(c *gin.Context, input *models.NewRoleModule) (*models.RoleModule, error) {
		return models.SaveRoleModule(c.Request.Context(), input)
	}))
}
