package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	"github.com/cecyt9/prefect-gate-api/internal/service"
	"github.com/cecyt9/prefect-gate-api/pkg/response"
)

// ConsultationService reads consultation history.
type ConsultationService interface {
	History(ctx context.Context, session *models.JWTClaims, boleta string) ([]models.ConsultationRecord, error)
}

// ExportService renders consultation history downloads.
type ExportService interface {
	HistoryExport(ctx context.Context, session *models.JWTClaims, boleta, format string) ([]byte, string, error)
}

// ConsultationHandler exposes consultation history endpoints.
type ConsultationHandler struct {
	consultations ConsultationService
	exports       ExportService
}

// NewConsultationHandler constructs a ConsultationHandler.
func NewConsultationHandler(consultations ConsultationService, exports ExportService) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations, exports: exports}
}

// History godoc
// @Summary Consultation history for a student
// @Description Most recent consultations of the student by the current prefect
// @Tags Consultations
// @Produce json
// @Param boleta path string true "Boleta"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students/{boleta}/consultations [get]
func (h *ConsultationHandler) History(c *gin.Context) {
	records, err := h.consultations.History(c.Request.Context(), claimsFromContext(c), c.Param("boleta"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Export godoc
// @Summary Download consultation history
// @Tags Consultations
// @Produce text/csv
// @Produce application/pdf
// @Param boleta path string true "Boleta"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /students/{boleta}/consultations/export [get]
func (h *ConsultationHandler) Export(c *gin.Context) {
	boleta := c.Param("boleta")
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	data, contentType, err := h.exports.HistoryExport(c.Request.Context(), claimsFromContext(c), boleta, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("consultas_%s.%s", boleta, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
