package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/workflow"
	"github.com/gin-gonic/gin"
)

func ListInvoices(c *gin.Context) {
	invoices, err := models.GetInvoices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func GetInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func CreateInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func UpdateInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.UpdateInvoice(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func SendInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := workflow.SendInvoice(c.Request.Context(), id)
	respondTransition(c, invoice, err)
}

func MarkInvoiceOverdue(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := workflow.MarkInvoiceOverdue(c.Request.Context(), id)
	respondTransition(c, invoice, err)
}

func MarkInvoicePaid(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input workflow.MarkPaidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := workflow.MarkInvoicePaid(c.Request.Context(), id, &input)
	respondTransition(c, invoice, err)
}

func RecordDeposit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input workflow.RecordDepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := workflow.RecordDeposit(c.Request.Context(), id, &input)
	respondTransition(c, invoice, err)
}

func RefundDeposit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input workflow.RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := workflow.RefundDeposit(c.Request.Context(), id, &input)
	respondTransition(c, invoice, err)
}

func KeepDepositAsIncome(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := workflow.KeepDepositAsIncome(c.Request.Context(), id)
	respondTransition(c, invoice, err)
}

func RefundPaidSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input workflow.RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := workflow.RefundPaidSale(c.Request.Context(), id, &input)
	respondTransition(c, invoice, err)
}

// DeleteInvoice exposure is Draft-only by default; STRICT_DELETE_DRAFT_ONLY=false
// widens it to any state, with the workflow compensating journal and stock.
func DeleteInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if config.StrictDeleteDraftOnly() && invoice.Status != models.InvoiceStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "only Draft invoices can be deleted"})
		return
	}
	if err := workflow.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
