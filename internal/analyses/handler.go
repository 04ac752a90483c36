package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/contracts"
	"contract-backend/internal/shared/server/respond"
)

// Handler wires the analyze endpoint to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the analyze route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts/:id/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contract id is required", nil)
		return
	}
	c.Set("contractId", id)

	contract, err := h.Svc.Analyze(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "contract not found", nil)
		case errors.Is(err, ErrAnalysisInProgress):
			respond.Error(c, http.StatusConflict, "conflict", "analysis already in progress", nil)
		case errors.Is(err, contracts.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to analyze contract", nil)
		}
		return
	}

	c.Set("statusTransition", contract.Status)
	respond.OK(c, gin.H{
		"id":       contract.ID,
		"status":   contract.Status,
		"analysis": contract.Analysis,
	})
}
