package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// DocumentReaderSvc defines read operations for financial documents
type DocumentReaderSvc interface {
	// GetDocumentByID retrieves a specific document with its line items and
	// adjustments. Soft-deleted documents are not returned.
	GetDocumentByID(ctx context.Context, workplaceID string, documentID string) (*domain.FinancialDocument, error)

	// ListDocuments retrieves a paginated, filtered list of documents.
	ListDocuments(ctx context.Context, workplaceID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentWriterSvc defines write operations for financial documents
type DocumentWriterSvc interface {
	// CreateDocument persists a new document in DRAFT with computed totals and
	// an assigned serial number.
	CreateDocument(ctx context.Context, workplaceID string, req dto.CreateDocumentRequest, creatorUserID string) (*domain.FinancialDocument, error)

	// UpdateDocument updates a document and recomputes its totals. Once a
	// document leaves DRAFT only a small allowlist of fields may change.
	UpdateDocument(ctx context.Context, workplaceID string, documentID string, req dto.UpdateDocumentRequest, requestingUserID string) (*domain.FinancialDocument, error)

	// SetDocumentStatus drives the document through its lifecycle. Illegal
	// transitions for the document's kind are rejected with the legal set.
	SetDocumentStatus(ctx context.Context, workplaceID string, documentID string, req dto.SetDocumentStatusRequest, userID string) (*domain.FinancialDocument, error)

	// DeleteDocument soft-deletes a DRAFT document. Non-draft documents must
	// be voided instead.
	DeleteDocument(ctx context.Context, workplaceID string, documentID string, userID string) error
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
}
