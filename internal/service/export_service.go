package service

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
	"github.com/cecyt9/prefect-gate-api/pkg/export"
)

// Export formats accepted by the history export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var historyExportHeaders = []string{"Fecha", "Tipo", "Prefecto", "Detalle"}

var archiveSegmentPattern = regexp.MustCompile(`[^0-9A-Za-z_-]`)

// archiveFilename builds the relative archive path for a rendered export.
// The boleta comes from a URL path parameter, so it is reduced to a safe
// directory segment before joining.
func archiveFilename(boleta, format string, now time.Time) string {
	segment := archiveSegmentPattern.ReplaceAllString(boleta, "")
	if segment == "" {
		segment = "desconocido"
	}
	return fmt.Sprintf("%s/consultas_%s.%s", segment, now.Format("20060102T150405"), format)
}

// ExportService renders a prefect's consultation history as a downloadable
// file.
type ExportService struct {
	consultations *ConsultationService
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	archiver      *ExportArchiver
	enabled       bool
	logger        *zap.Logger
}

// NewExportService constructs an ExportService. The archiver is optional.
func NewExportService(consultations *ConsultationService, archiver *ExportArchiver, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		consultations: consultations,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		archiver:      archiver,
		enabled:       enabled,
		logger:        logger,
	}
}

// HistoryExport renders the session prefect's consultation history of one
// student in the requested format. Returns the file bytes and content type.
func (s *ExportService) HistoryExport(ctx context.Context, session *models.JWTClaims, boleta, format string) ([]byte, string, error) {
	if !s.enabled {
		return nil, "", appErrors.New("EXPORTS_DISABLED", http.StatusForbidden, "exports are disabled")
	}

	records, err := s.consultations.History(ctx, session, boleta)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{Headers: historyExportHeaders}
	for _, record := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Fecha":    record.Timestamp.Format("2006-01-02 15:04"),
			"Tipo":     string(record.Type),
			"Prefecto": record.PrefectEmail,
			"Detalle":  record.Details,
		})
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		rendered, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		data, contentType = rendered, "text/csv"
	case ExportFormatPDF:
		title := fmt.Sprintf("Historial de consultas %s", boleta)
		rendered, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		data, contentType = rendered, "application/pdf"
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	if s.archiver != nil {
		s.archiver.Archive(archiveFilename(boleta, format, time.Now().UTC()), data)
	}

	return data, contentType, nil
}
