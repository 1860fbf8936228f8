package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/philvuai/bnk/internal/common"
	"github.com/philvuai/bnk/internal/export"
	"github.com/philvuai/bnk/internal/extract"
	"github.com/philvuai/bnk/internal/model"
	"github.com/philvuai/bnk/internal/storage"
)

const maxUploadSize = 10 << 20 // 10MB

// documentResponse is the wire shape for an upload plus its analysis.
type documentResponse struct {
	ID       string                `json:"id"`
	FileName string                `json:"file_name"`
	Analysis *model.AnalysisResult `json:"analysis"`
}

func (s *Server) listCategories(c *gin.Context) {
	type categoryResponse struct {
		Name     string `json:"name"`
		Examples string `json:"examples"`
	}

	infos := model.Categories()
	categories := make([]categoryResponse, 0, len(infos))
	for _, info := range infos {
		categories = append(categories, categoryResponse{
			Name:     string(info.Name),
			Examples: info.Examples,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":       categories,
		"taxonomy_version": model.TaxonomyVersion,
	})
}

// uploadDocument accepts a multipart file, extracts its text, runs the
// analysis pipeline and persists both. The response carries the full
// analysis so clients need no second round trip.
func (s *Server) uploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	text, err := extract.FromBytes(data, fileHeader.Filename, mimeType)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			respondError(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), nil)
			return
		}
		respondError(c, http.StatusBadRequest, "extraction_failed", err.Error(), nil)
		return
	}

	upload := &storage.Upload{
		ID:        uuid.New().String(),
		FileName:  fileHeader.Filename,
		MimeType:  mimeType,
		SizeBytes: fileHeader.Size,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveUpload(c.Request.Context(), upload); err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to save document", nil)
		return
	}

	result := s.analyzer.Analyze(c.Request.Context(), text)
	result.DocumentID = upload.ID
	if err := s.store.SaveAnalysis(c.Request.Context(), result); err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to save analysis", nil)
		return
	}

	s.logger.Info("document analyzed",
		"document_id", upload.ID,
		"file_name", upload.FileName,
		"source", result.Source,
		"transactions", len(result.Transactions))

	c.JSON(http.StatusCreated, documentResponse{
		ID:       upload.ID,
		FileName: upload.FileName,
		Analysis: result,
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	uploads, err := s.store.ListUploads(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to list documents", nil)
		return
	}
	if uploads == nil {
		uploads = []storage.Upload{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": uploads})
}

func (s *Server) getAnalysis(c *gin.Context) {
	result, err := s.store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "internal", "failed to load analysis", nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateCategoryRequest struct {
	Category string `json:"category"`
}

// updateTransactionCategory reassigns one transaction's category. The
// summary in the response is recomputed from the stored list.
func (s *Server) updateTransactionCategory(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "index must be an integer", nil)
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Category == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "category is required", nil)
		return
	}

	result, err := s.store.UpdateTransactionCategory(c.Request.Context(), c.Param("id"), index, model.Category(req.Category))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, common.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, storage.ErrInvalidIndex):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, storage.ErrInvalidCategory):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal", "failed to update category", nil)
	}
}

func (s *Server) exportCSV(c *gin.Context) {
	id := c.Param("id")
	result, err := s.store.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "internal", "failed to load analysis", nil)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "analysis-"+id+".csv"))
	if err := export.WriteCSV(c.Writer, result); err != nil {
		s.logger.Error("failed to stream CSV export", "document_id", id, "error", err)
	}
}
