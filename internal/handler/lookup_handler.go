package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
	"github.com/cecyt9/prefect-gate-api/pkg/response"
)

// LookupService resolves scans and manual selections into lookup results.
type LookupService interface {
	Scan(ctx context.Context, session *models.JWTClaims, payload string) (*models.LookupResult, error)
	Select(ctx context.Context, session *models.JWTClaims, boleta string) (*models.LookupResult, error)
}

// ScanRequest carries the raw QR payload from the camera.
type ScanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// SelectRequest carries the boleta picked from search results.
type SelectRequest struct {
	Boleta string `json:"boleta" binding:"required"`
}

// LookupHandler exposes the scan and selection endpoints.
type LookupHandler struct {
	lookups LookupService
}

// NewLookupHandler constructs a LookupHandler.
func NewLookupHandler(lookups LookupService) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

// Scan godoc
// @Summary Resolve a scanned QR code
// @Description Extract the boleta from a QR payload and return the full lookup result
// @Tags Lookups
// @Accept json
// @Produce json
// @Param payload body ScanRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /lookups/scan [post]
func (h *LookupHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "scan payload required"))
		return
	}

	result, err := h.lookups.Scan(c.Request.Context(), claimsFromContext(c), req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Select godoc
// @Summary Resolve a student picked from search results
// @Tags Lookups
// @Accept json
// @Produce json
// @Param payload body SelectRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lookups/select [post]
func (h *LookupHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "boleta required"))
		return
	}

	result, err := h.lookups.Select(c.Request.Context(), claimsFromContext(c), req.Boleta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
