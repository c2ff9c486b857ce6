package repositories

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// PaymentReader defines read operations for payments and allocations.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its allocations.
	FindPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error)

	// ListPaymentsByDocument retrieves all payments allocated to a document.
	ListPaymentsByDocument(ctx context.Context, workplaceID string, documentID string) ([]domain.Payment, error)

	// ListPayments retrieves a paginated list of payments using token pagination.
	ListPayments(ctx context.Context, workplaceID string, limit int, nextToken *string) ([]domain.Payment, *string, error)
}

// PaymentWriter defines the atomic write operations of the allocation engine.
// Each method runs one transaction covering every affected document row:
// documents are locked FOR UPDATE, re-validated, and updated together with
// the payment rows and activity records. Any violation rolls back the whole
// batch; no partial allocation is ever persisted.
type PaymentWriter interface {
	// RecordPayment inserts a payment with its allocations, settles the target
	// documents, optionally posts a ledger entry, and appends activities.
	RecordPayment(ctx context.Context, payment domain.Payment, allocations []domain.PaymentAllocation, posting *LedgerPosting, activities []domain.Activity) error

	// AddAllocations allocates more of an existing payment across documents.
	// The payment row is locked and the allocation sum re-validated under the lock.
	AddAllocations(ctx context.Context, paymentID string, workplaceID string, allocations []domain.PaymentAllocation, activities []domain.Activity) error

	// ReversePayment marks the original payment with the given status and
	// inserts the offsetting reversal payment and allocations, restoring the
	// target documents' amounts. Original rows are never edited or deleted
	// beyond the status flag.
	ReversePayment(ctx context.Context, originalPaymentID string, originalStatus domain.PaymentStatus, reversal domain.Payment, reversalAllocations []domain.PaymentAllocation, activities []domain.Activity) error
}

// PaymentRepositoryFacade combines payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction capabilities.
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
