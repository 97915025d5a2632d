package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/workflow"
	"github.com/gin-gonic/gin"
)

func ListQuotations(c *gin.Context) {
	quotations, err := models.GetQuotations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quotations})
}

func GetQuotation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	quotation, err := models.GetQuotation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quotation})
}

func CreateQuotation(c *gin.Context) {
	var input models.NewQuotation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quotation, err := models.CreateQuotation(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": quotation})
}

func UpdateQuotation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input models.NewQuotation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quotation, err := models.UpdateQuotation(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quotation})
}

func quotationTransition(c *gin.Context, fn func(c *gin.Context, id int) (*models.Quotation, error)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	quotation, err := fn(c, id)
	respondTransition(c, quotation, err)
}

func SendQuotation(c *gin.Context) {
	quotationTransition(c, func(c *gin.Context, id int) (*models.Quotation, error) {
		return workflow.SendQuotation(c.Request.Context(), id)
	})
}

func ApproveQuotation(c *gin.Context) {
	quotationTransition(c, func(c *gin.Context, id int) (*models.Quotation, error) {
		return workflow.ApproveQuotation(c.Request.Context(), id)
	})
}

func RejectQuotation(c *gin.Context) {
	quotationTransition(c, func(c *gin.Context, id int) (*models.Quotation, error) {
		return workflow.RejectQuotation(c.Request.Context(), id)
	})
}

func ExpireQuotation(c *gin.Context) {
	quotationTransition(c, func(c *gin.Context, id int) (*models.Quotation, error) {
		return workflow.ExpireQuotation(c.Request.Context(), id)
	})
}

func ConvertQuotation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := workflow.ConvertQuotationToInvoice(c.Request.Context(), id)
	respondTransition(c, invoice, err)
}

func DeleteQuotation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	quotation, err := models.GetQuotation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !quotation.Status.Deletable() {
		c.JSON(http.StatusConflict, gin.H{"error": "only Draft, Rejected or Expired quotations can be deleted"})
		return
	}
	if err := workflow.DeleteQuotation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
