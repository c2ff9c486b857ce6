package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DocumentListFilter narrows document listings.
type DocumentListFilter struct {
	Kind      *domain.DocumentKind
	Status    *domain.DocumentStatus
	ContactID *string
}

// DocumentReader defines read operations for financial documents.
type DocumentReader interface {
	// FindDocumentByID retrieves a document with its items and adjustments.
	// Soft-deleted documents are not returned.
	FindDocumentByID(ctx context.Context, workplaceID string, documentID string) (*domain.FinancialDocument, error)

	// ListDocuments retrieves a paginated list of document headers using
	// token-based pagination, newest issue date first.
	ListDocuments(ctx context.Context, workplaceID string, filter DocumentListFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error)

	// ListSerialNumbers returns the serial numbers already assigned for a
	// (workplace, kind, prefix) scope, including those of soft-deleted rows.
	ListSerialNumbers(ctx context.Context, workplaceID string, kind domain.DocumentKind, prefix string) ([]string, error)
}

// DocumentWriter defines write operations for financial documents.
type DocumentWriter interface {
	// SaveDocument persists the header, items and adjustments in one atomic unit.
	SaveDocument(ctx context.Context, doc domain.FinancialDocument) error

	// UpdateDocument updates the header and, when replaceItems is set, replaces
	// the item and adjustment sets wholesale (delete-then-insert).
	UpdateDocument(ctx context.Context, doc domain.FinancialDocument, replaceItems bool) error

	// UpdateDocumentStatus writes a new status, optionally stamping settlement.
	UpdateDocumentStatus(ctx context.Context, workplaceID string, documentID string, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error

	// SoftDeleteDocument sets the tombstone timestamp.
	SoftDeleteDocument(ctx context.Context, workplaceID string, documentID string, userID string, now time.Time) error
}

// DocumentTransactionSupport defines operations used inside enclosing
// transactions (payments lock and settle documents atomically).
type DocumentTransactionSupport interface {
	// FindDocumentByIDForUpdate loads a document header with a row lock.
	FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, workplaceID string, documentID string) (*domain.FinancialDocument, error)

	// UpdateDocumentAmountsInTx writes the paid/due amounts and status of a
	// locked document within the caller's transaction.
	UpdateDocumentAmountsInTx(ctx context.Context, tx pgx.Tx, documentID string, amountPaid, amountDue decimal.Decimal, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	DocumentTransactionSupport
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
