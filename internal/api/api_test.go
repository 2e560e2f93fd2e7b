package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lpiteam/autoorder/internal/ingest"
	"github.com/lpiteam/autoorder/internal/service"
	"github.com/lpiteam/autoorder/internal/settings"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewOrderService(settings.NewStore(), nil, nil)
	return NewRouter(svc, Options{UrgentRatioPct: 25})
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func snapshotWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	return buildWorkbook(t, append([][]interface{}{{
		ingest.ColItemCode, ingest.ColItemName, ingest.ColSpec, ingest.ColBarcode,
		ingest.ColUnitPrice, ingest.ColSupplier, ingest.ColSales, ingest.ColStock,
	}}, rows...))
}

func multipartUpload(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalculateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	workbook := snapshotWorkbook(t, [][]interface{}{
		{"A001", "비타민C 앰플", "30ml", "880001", 1000, "헬스서플라이", 600, 80},
		{"A002", "유산균 캡슐", "", "880002", 500, "헬스서플라이", 600, 200},
	})

	body, contentType := multipartUpload(t, "snapshot", "현황20250626.xlsx", workbook, map[string]string{
		"start": "2025-06-01",
		"end":   "2025-06-30",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/calculate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run service.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))

	assert.Equal(t, 30, run.PeriodDays)
	assert.Equal(t, 2, run.TotalRows)
	require.Len(t, run.OrderNeeded, 2)
	assert.NotEmpty(t, run.Urgent)
}

func TestCalculateMissingFile(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/calculate", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateIncompleteSchema(t *testing.T) {
	router := newTestRouter(t)

	workbook := buildWorkbook(t, [][]interface{}{
		{ingest.ColItemCode, ingest.ColItemName},
		{"A001", "비타민C 앰플"},
	})

	body, contentType := multipartUpload(t, "snapshot", "현황.xlsx", workbook, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/calculate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		MissingColumns []string `json:"missing_columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.MissingColumns, ingest.ColStock)
}

func TestSummaryNotCached(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/summary?snapshot_id=현황.xlsx", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	// upload a workbook with one item override
	workbook := buildWorkbook(t, [][]interface{}{
		{ingest.ColSettingKind, ingest.ColItemCode, ingest.ColLeadTime, ingest.ColSafetyRate, ingest.ColAdditionRate, ingest.ColOrderUnit, ingest.ColMinSales},
		{"개별 품목 설정", "A001", 20, 15, 5, 10, 3},
	})

	body, contentType := multipartUpload(t, "settings", "설정.xlsx", workbook, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap settings.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Items, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/settings/overrides", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	// json.Unmarshal merges into an existing map, so decode into a
	// fresh value to observe the cleared state.
	snap = settings.Snapshot{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Items)
}
