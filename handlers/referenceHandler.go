package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/harborworks/salvage_backend/models"
	"github.com/gin-gonic/gin"
)

// Reference data endpoints follow one shape: list all for the tenant, create
// with a validated input struct. Mutation of stock figures outside the
// document workflows is deliberately not exposed.

func listHandler[T any](fetch func(c *gin.Context) ([]*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := fetch(c)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	}
}

func createHandler[I any, T any](create func(c *gin.Context, input *I) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input I
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := create(c, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func GetEquipmentById(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	equipment, err := models.GetEquipment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": equipment})
}

func GetLandById(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	land, err := models.GetLand(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": land})
}

// ListJournalByReference exposes both ledgers for one document, the audit
// view used to verify payments, deposits and refunds.
func ListJournalByReference(c *gin.Context) {
	referenceId, err := strconv.Atoi(c.Param("referenceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference id"})
		return
	}
	income, err := models.GetIncomeRecordsByReference(c.Request.Context(), referenceId)
	if err != nil {
		respondError(c, err)
		return
	}
	expenses, err := models.GetExpensesByReference(c.Request.Context(), referenceId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"income_records": income, "expenses": expenses}})
}
