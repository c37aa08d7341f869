package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecyt9/prefect-gate-api/internal/middleware"
	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type lookupServiceMock struct {
	scanResp     *models.LookupResult
	scanErr      error
	selectResp   *models.LookupResult
	selectErr    error
	scanCalled   bool
	selectCalled bool
	lastPayload  string
	lastBoleta   string
	lastSession  *models.JWTClaims
}

func (m *lookupServiceMock) Scan(_ context.Context, session *models.JWTClaims, payload string) (*models.LookupResult, error) {
	m.scanCalled = true
	m.lastSession = session
	m.lastPayload = payload
	return m.scanResp, m.scanErr
}

func (m *lookupServiceMock) Select(_ context.Context, session *models.JWTClaims, boleta string) (*models.LookupResult, error) {
	m.selectCalled = true
	m.lastSession = session
	m.lastBoleta = boleta
	return m.selectResp, m.selectErr
}

func postJSON(c *gin.Context, path string, body interface{}) {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func prefectClaims() *models.JWTClaims {
	return &models.JWTClaims{PrefectID: "prefect-1", Email: "prefecto@cecyt9.ipn.mx"}
}

func TestLookupHandlerScan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lookupServiceMock{
		scanResp: &models.LookupResult{Student: &models.Student{Boleta: "2024090001"}},
	}
	handler := NewLookupHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/scan", ScanRequest{Payload: "https://servicios.dae.ipn.mx/vcred/?boleta=2024090001"})
	c.Set(middleware.ContextUserKey, prefectClaims())

	handler.Scan(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.scanCalled)
	assert.Equal(t, "prefect-1", mockSvc.lastSession.PrefectID)
	assert.Contains(t, mockSvc.lastPayload, "boleta=2024090001")
}

func TestLookupHandlerScanMissingPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lookupServiceMock{}
	handler := NewLookupHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/scan", map[string]string{})

	handler.Scan(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.scanCalled)
}

func TestLookupHandlerScanCooldown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLookupHandler(&lookupServiceMock{scanErr: appErrors.ErrScanCooldown})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/scan", ScanRequest{Payload: "2024090001"})
	c.Set(middleware.ContextUserKey, prefectClaims())

	handler.Scan(c)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLookupHandlerScanInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLookupHandler(&lookupServiceMock{scanErr: appErrors.ErrInvalidPayload})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/scan", ScanRequest{Payload: "garbage"})
	c.Set(middleware.ContextUserKey, prefectClaims())

	handler.Scan(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLookupHandlerSelect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lookupServiceMock{
		selectResp: &models.LookupResult{Student: &models.Student{Boleta: "2024090001"}},
	}
	handler := NewLookupHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/select", SelectRequest{Boleta: "2024090001"})
	c.Set(middleware.ContextUserKey, prefectClaims())

	handler.Select(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.selectCalled)
	assert.Equal(t, "2024090001", mockSvc.lastBoleta)
}

func TestLookupHandlerSelectNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLookupHandler(&lookupServiceMock{selectErr: appErrors.ErrNotFound})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/select", SelectRequest{Boleta: "9999999999"})
	c.Set(middleware.ContextUserKey, prefectClaims())

	handler.Select(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupHandlerScanWithoutSessionPassesNilClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lookupServiceMock{
		scanResp: &models.LookupResult{Student: &models.Student{Boleta: "2024090001"}},
	}
	handler := NewLookupHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/lookups/scan", ScanRequest{Payload: "2024090001"})

	handler.Scan(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.lastSession)
}
