package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/middleware"
	"github.com/lexplain/legal-demystifier/model"
	"github.com/lexplain/legal-demystifier/pkg/logger"
	"github.com/lexplain/legal-demystifier/service"
)

type DocumentHandler struct {
	store       *service.DocumentStore
	dispatcher  *service.AnalysisDispatcher
	gemini      *service.GeminiService
	archive     *service.ArchiveService // nil when archiving is disabled
	maxFileSize int64
}

func NewDocumentHandler(store *service.DocumentStore, dispatcher *service.AnalysisDispatcher, gemini *service.GeminiService, archive *service.ArchiveService, uploadCfg *config.UploadConfig) *DocumentHandler {
	return &DocumentHandler{
		store:       store,
		dispatcher:  dispatcher,
		gemini:      gemini,
		archive:     archive,
		maxFileSize: int64(uploadCfg.MaxFileSizeKB) * 1024,
	}
}

// Upload accepts one or more plain-text documents in a multipart form and
// creates a pending document per file.
func (h *DocumentHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	var entries []service.FileEntry
	for _, header := range files {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".txt" && ext != ".md" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only plain-text files (.txt, .md) are allowed"})
			return
		}
		if header.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large: " + header.Filename})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + header.Filename})
			return
		}
		content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + header.Filename})
			return
		}
		if int64(len(content)) > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large: " + header.Filename})
			return
		}
		if !utf8.Valid(content) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is not valid UTF-8 text: " + header.Filename})
			return
		}

		entries = append(entries, service.FileEntry{
			FileName: header.Filename,
			Content:  string(content),
		})
	}

	docs := h.store.AddDocuments(tenant, entries)

	if h.archive != nil {
		for _, doc := range docs {
			if err := h.archive.SaveOriginal(c.Request.Context(), doc); err != nil {
				// The store stays authoritative; a failed archive write is
				// logged and the upload still succeeds.
				logger.Warn(c.Request.Context(), "failed to archive original",
					"document_id", doc.ID, "error", err)
			}
		}
	}

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"id":              doc.ID,
			"file_name":       doc.FileName,
			"analysis_status": doc.AnalysisStatus,
			"contract_status": doc.ContractStatus,
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// List returns all documents for the current tenant, without content or
// result payloads.
func (h *DocumentHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	docs := h.store.GetByTenant(tenant)

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"id":              doc.ID,
			"file_name":       doc.FileName,
			"analysis_status": doc.AnalysisStatus,
			"contract_status": doc.ContractStatus,
			"created_at":      doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at":      doc.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// Get returns a single document with its analysis results.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetStatus returns both lifecycle statuses of a document.
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                 doc.ID,
		"analysis_status":    doc.AnalysisStatus,
		"contract_status":    doc.ContractStatus,
		"error_msg":          doc.ErrorMsg,
		"contract_error_msg": doc.ContractErrorMsg,
	})
}

// Delete deletes a document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	h.store.Delete(doc.ID)

	if h.archive != nil {
		if err := h.archive.DeleteDocument(c.Request.Context(), doc); err != nil {
			logger.Warn(c.Request.Context(), "failed to delete archived objects",
				"document_id", doc.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

type AnalyzeRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Analyze starts the general analysis for a batch of documents. Unknown ids
// are skipped, every accepted document is marked analyzing immediately, and
// results land asynchronously.
func (h *DocumentHandler) Analyze(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Only the caller's own documents enter the batch.
	var ids []string
	for _, id := range req.IDs {
		if doc := h.store.Get(id); doc != nil && doc.Tenant == tenant {
			ids = append(ids, id)
		}
	}

	accepted := h.dispatcher.AnalyzeBatch(c.Request.Context(), ids)
	if accepted == nil {
		accepted = []string{}
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}

// AnalyzeForReminders starts the contract/obligation analysis for one
// document.
func (h *DocumentHandler) AnalyzeForReminders(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	h.dispatcher.AnalyzeForReminders(c.Request.Context(), doc.ID)

	c.JSON(http.StatusAccepted, gin.H{"id": doc.ID, "contract_status": model.ContractPending})
}

// GetReminders returns the completed contract analysis.
func (h *DocumentHandler) GetReminders(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	if doc.ContractStatus != model.ContractComplete {
		c.JSON(http.StatusConflict, gin.H{
			"error":           "Contract analysis is not complete",
			"contract_status": doc.ContractStatus,
		})
		return
	}

	c.JSON(http.StatusOK, doc.ContractAnalysis)
}

// ExportCalendar produces the .ics file for a document's obligations and
// key dates. When none of the extracted dates can be resolved this is a
// neutral condition, not an error.
func (h *DocumentHandler) ExportCalendar(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	if doc.ContractStatus != model.ContractComplete || doc.ContractAnalysis == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":           "Contract analysis is not complete",
			"contract_status": doc.ContractStatus,
		})
		return
	}

	events := service.ReminderEvents(doc.ContractAnalysis)
	content, err := service.CreateICSContent(events)
	if err != nil {
		if errors.Is(err, service.ErrNothingToExport) {
			c.JSON(http.StatusOK, gin.H{"message": "No valid, specific dates could be found to export to the calendar."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar: " + err.Error()})
		return
	}

	if h.archive != nil {
		if err := h.archive.SaveCalendar(c.Request.Context(), doc, content); err != nil {
			logger.Warn(c.Request.Context(), "failed to archive calendar",
				"document_id", doc.ID, "error", err)
		}
	}

	fileName := service.CalendarFileName(doc.FileName)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}

type CompareRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Compare runs a synchronous comparison of two or more documents.
func (h *DocumentHandler) Compare(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two document ids are required"})
		return
	}

	var docs []*model.Document
	for _, id := range req.IDs {
		doc := h.store.Get(id)
		if doc == nil || doc.Tenant != tenant {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found: " + id})
			return
		}
		docs = append(docs, doc)
	}

	result, err := h.gemini.Compare(c.Request.Context(), docs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "The comparison could not be completed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type NegotiateRequest struct {
	Query string `json:"query" binding:"required"`
}

// Negotiate suggests a balanced counter-clause for the user's concern.
func (h *DocumentHandler) Negotiate(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	var req NegotiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.gemini.NegotiationSuggestion(c.Request.Context(), doc.OriginalContent, req.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "The negotiation suggestion could not be completed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type WhatIfRequest struct {
	Scenario string `json:"scenario" binding:"required"`
}

// WhatIf simulates a hypothetical scenario against the contract.
func (h *DocumentHandler) WhatIf(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	var req WhatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.gemini.WhatIfSimulation(c.Request.Context(), doc.OriginalContent, req.Scenario)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "The simulation could not be completed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type TranslateRequest struct {
	TargetLanguage string `json:"target_language" binding:"required"`
}

// Translate runs the sentence-by-sentence bilingual analysis of a document.
func (h *DocumentHandler) Translate(c *gin.Context) {
	doc := h.tenantDocument(c)
	if doc == nil {
		return
	}

	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.gemini.BilingualAnalysis(c.Request.Context(), doc.OriginalContent, req.TargetLanguage)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "The translation could not be completed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// tenantDocument resolves the :id parameter to a document owned by the
// caller's tenant, writing the 404 itself when absent.
func (h *DocumentHandler) tenantDocument(c *gin.Context) *model.Document {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	doc := h.store.Get(id)
	if doc == nil || doc.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil
	}
	return doc
}
