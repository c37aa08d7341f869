package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

func newExportFixture(records []models.ConsultationRecord, enabled bool) *ExportService {
	consultations := NewConsultationService(&stubConsultationRepo{records: records}, &stubAccessRepo{}, ConsultationConfig{}, nil)
	return NewExportService(consultations, nil, enabled, nil)
}

func TestExportHistoryCSV(t *testing.T) {
	ts := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	svc := newExportFixture([]models.ConsultationRecord{{
		Timestamp:    ts,
		Type:         models.ConsultationQRScan,
		PrefectEmail: "prefecto@cecyt9.ipn.mx",
		Details:      "Consulta por QR",
	}}, true)

	data, contentType, err := svc.HistoryExport(context.Background(), testSession(), "2024090001", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.True(t, strings.HasPrefix(body, "\uFEFF"))
	assert.Contains(t, body, "Fecha,Tipo,Prefecto,Detalle")
	assert.Contains(t, body, "2026-03-12 09:30")
	assert.Contains(t, body, "qr_scan")
	assert.Contains(t, body, "Consulta por QR")
}

func TestExportHistoryPDF(t *testing.T) {
	svc := newExportFixture([]models.ConsultationRecord{{
		Timestamp: time.Now(),
		Type:      models.ConsultationManualSearch,
		Details:   "Consulta manual",
	}}, true)

	data, contentType, err := svc.HistoryExport(context.Background(), testSession(), "2024090001", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportHistoryDisabled(t *testing.T) {
	svc := newExportFixture(nil, false)

	_, _, err := svc.HistoryExport(context.Background(), testSession(), "2024090001", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, "EXPORTS_DISABLED", appErrors.FromError(err).Code)
}

func TestExportHistoryUnsupportedFormat(t *testing.T) {
	svc := newExportFixture(nil, true)

	_, _, err := svc.HistoryExport(context.Background(), testSession(), "2024090001", "xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestArchiveFilenameSanitizesBoleta(t *testing.T) {
	ts := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024090001/consultas_20260312T093000.csv", archiveFilename("2024090001", "csv", ts))
	assert.Equal(t, "desconocido/consultas_20260312T093000.pdf", archiveFilename("../..", "pdf", ts))
	assert.Equal(t, "etcpasswd/consultas_20260312T093000.csv", archiveFilename("../etc/passwd", "csv", ts))
}

func TestExportHistoryRequiresSession(t *testing.T) {
	svc := newExportFixture(nil, true)

	_, _, err := svc.HistoryExport(context.Background(), nil, "2024090001", ExportFormatCSV)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
