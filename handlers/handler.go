package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/harborworks/salvage_backend/utils"
	"bitbucket.org/harborworks/salvage_backend/workflow"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())

	var transitionErr *workflow.TransitionError
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "correlation_id": correlationId})
	case errors.Is(err, workflow.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "correlation_id": correlationId})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":           transitionErr.Error(),
			"failed_step":     transitionErr.FailedStep,
			"completed_steps": transitionErr.CompletedSteps,
			"correlation_id":  correlationId,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "correlation_id": correlationId})
	}
}

// respondTransition handles workflow results that may carry a partial
// failure: the transition committed but one side-effect step (the journal
// post) broke. The document state is returned with a warning instead of an
// error so clients do not retry a committed transition.
func respondTransition(c *gin.Context, result interface{}, err error) {
	if err != nil {
		var transitionErr *workflow.TransitionError
		if errors.As(err, &transitionErr) && transitionErr.Partial() {
			c.JSON(http.StatusOK, gin.H{
				"data":        result,
				"warning":     transitionErr.Error(),
				"failed_step": transitionErr.FailedStep,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
