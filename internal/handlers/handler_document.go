package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentHandler handles HTTP requests related to financial documents.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{
		documentService: ds,
	}
}

// registerDocumentRoutes registers workplace-scoped document routes.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	documents := rg.Group("/documents")
	{
		documents.POST("", h.createDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:document_id", h.getDocument)
		documents.PUT("/:document_id", h.updateDocument)
		documents.POST("/:document_id/status", h.setDocumentStatus)
		documents.DELETE("/:document_id", h.deleteDocument)
	}
}

// createDocument godoc
// @Summary Create a financial document
// @Description Creates a document in DRAFT with computed totals and an assigned serial number
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   document body dto.CreateDocumentRequest true "Document details"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create document"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents [post]
func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("creator_user_id", creatorUserID), slog.String("kind", string(req.Kind)))
	logger.Info("Received request to create document", slog.Int("item_count", len(req.Items)))

	doc, err := h.documentService.CreateDocument(c.Request.Context(), workplaceID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate document number", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create document in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		}
		return
	}

	logger.Info("Document created successfully", slog.String("document_id", doc.DocumentID), slog.String("number", doc.Number()))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// getDocument godoc
// @Summary Get a document by ID
// @Description Retrieves a document with its line items and adjustments; soft-deleted documents are not returned
// @Tags documents
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   document_id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to retrieve document"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents/{document_id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	documentID := c.Param("document_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("document_id", documentID))

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), workplaceID, documentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Document not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			logger.Error("Failed to get document from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents
// @Description Retrieves a paginated list of documents, optionally filtered by kind, status and contact
// @Tags documents
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   kind query string false "Filter by document kind"
// @Param   status query string false "Filter by document status"
// @Param   contactID query string false "Filter by contact"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDocuments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), workplaceID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid list parameters", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list documents from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateDocument godoc
// @Summary Update a document
// @Description Updates a document and recomputes totals; fields beyond the allowlist only change while in DRAFT
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   document_id path string true "Document ID"
// @Param   document body dto.UpdateDocumentRequest true "Fields to change"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document state forbids the change"
// @Failure 500 {object} map[string]string "Failed to update document"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents/{document_id} [put]
func (h *documentHandler) updateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	documentID := c.Param("document_id")

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("document_id", documentID))
	logger.Info("Received request to update document")

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), workplaceID, documentID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Document not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Document state forbids update", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update document in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		}
		return
	}

	logger.Info("Document updated successfully")
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// setDocumentStatus godoc
// @Summary Transition a document's status
// @Description Drives the document through its lifecycle; illegal transitions are rejected listing the legal set
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   document_id path string true "Document ID"
// @Param   status body dto.SetDocumentStatusRequest true "Target status"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 500 {object} map[string]string "Failed to update document status"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents/{document_id}/status [post]
func (h *documentHandler) setDocumentStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	documentID := c.Param("document_id")

	var req dto.SetDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetDocumentStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("document_id", documentID), slog.String("target_status", string(req.Status)))
	logger.Info("Received request to transition document status")

	doc, err := h.documentService.SetDocumentStatus(c.Request.Context(), workplaceID, documentID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error transitioning document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Document not found for status transition")
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Illegal document status transition", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to transition document status in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document status"})
		}
		return
	}

	logger.Info("Document status updated successfully", slog.String("new_status", string(doc.Status)))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// deleteDocument godoc
// @Summary Delete a draft document
// @Description Soft-deletes a DRAFT document; non-draft documents must be voided instead
// @Tags documents
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   document_id path string true "Document ID"
// @Success 204 "Document deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Only draft documents can be deleted"
// @Failure 500 {object} map[string]string "Failed to delete document"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/documents/{document_id} [delete]
func (h *documentHandler) deleteDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("document_id", documentID))
	logger.Info("Received request to delete document")

	err := h.documentService.DeleteDocument(c.Request.Context(), workplaceID, documentID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Document not found for deletion")
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Document cannot be deleted", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error deleting document", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to delete document in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		}
		return
	}

	logger.Info("Document deleted successfully")
	c.Status(http.StatusNoContent)
}
