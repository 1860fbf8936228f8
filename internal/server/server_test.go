package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philvuai/bnk/internal/analyze"
	"github.com/philvuai/bnk/internal/model"
	"github.com/philvuai/bnk/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	// No model client: every analysis takes the deterministic path.
	analyzer, err := analyze.New(nil, nil)
	require.NoError(t, err)

	return New(store, analyzer, nil).Router()
}

func multipartBody(t *testing.T, fieldName, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func uploadStatement(t *testing.T, router *gin.Engine, content string) documentResponse {
	t.Helper()

	body, contentType := multipartBody(t, "file", "statement.txt", "text/plain", content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp documentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestListCategories(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Categories []struct {
			Name     string `json:"name"`
			Examples string `json:"examples"`
		} `json:"categories"`
		TaxonomyVersion int `json:"taxonomy_version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp.Categories, 9)
	assert.Equal(t, model.TaxonomyVersion, resp.TaxonomyVersion)
	for _, category := range resp.Categories {
		assert.NotEqual(t, string(model.CategoryUnknown), category.Name)
		assert.NotEmpty(t, category.Examples)
	}
}

func TestUploadDocument(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "statement.txt", resp.FileName)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, model.SourceFallback, resp.Analysis.Source)
	require.Len(t, resp.Analysis.Transactions, 1)
	assert.Equal(t, "2025-06-05", resp.Analysis.Transactions[0].Date)
	assert.Equal(t, model.CategoryOffice, resp.Analysis.Transactions[0].Category)
}

func TestUploadDocumentMissingFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestUploadDocumentUnsupportedFormat(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "file", "image.png", "image/png", "\x89PNG")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported_format")
}

func TestListDocuments(t *testing.T) {
	router := newTestRouter(t)

	uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")
	uploadStatement(t, router, "06/06/2025 TRAIN TICKET £32.50")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Documents []storage.Upload `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Documents, 2)
}

func TestGetAnalysis(t *testing.T) {
	router := newTestRouter(t)

	doc := uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID+"/analysis", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, doc.ID, result.DocumentID)
	assert.Equal(t, doc.Analysis.Transactions, result.Transactions)
}

func TestGetAnalysisNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing/analysis", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestUpdateTransactionCategory(t *testing.T) {
	router := newTestRouter(t)

	doc := uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")

	body := strings.NewReader(`{"category": "Equipment and software"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/documents/"+doc.ID+"/transactions/0", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.CategoryEquipment, result.Transactions[0].Category)
	assert.Equal(t, 1, result.Summary.CategoryBreakdown[model.CategoryEquipment])
	assert.Zero(t, result.Summary.CategoryBreakdown[model.CategoryOffice])
}

func TestUpdateTransactionCategoryErrors(t *testing.T) {
	router := newTestRouter(t)

	doc := uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{
			name:   "missing document",
			path:   "/api/v1/documents/missing/transactions/0",
			body:   `{"category": "Office costs"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "index out of range",
			path:   "/api/v1/documents/" + doc.ID + "/transactions/5",
			body:   `{"category": "Office costs"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "non-numeric index",
			path:   "/api/v1/documents/" + doc.ID + "/transactions/abc",
			body:   `{"category": "Office costs"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown category label",
			path:   "/api/v1/documents/" + doc.ID + "/transactions/0",
			body:   `{"category": "Groceries"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing category",
			path:   "/api/v1/documents/" + doc.ID + "/transactions/0",
			body:   `{}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t)

	doc := uploadStatement(t, router, "05/06/2025 OFFICE SUPPLIES LTD £45.99")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID+"/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Date,Description,Category")
	assert.Contains(t, w.Body.String(), "OFFICE SUPPLIES LTD")
}

func TestExportCSVNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing/export", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
