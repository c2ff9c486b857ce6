package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_core/internal/models"
	"github.com/finbooks/finbooks_core/internal/utils/accounting"
	"github.com/finbooks/finbooks_core/internal/utils/mapping"
	"github.com/finbooks/finbooks_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const paymentColumns = `payment_id, workplace_id, payment_type, amount, currency_code, method, reference, notes, withholding_tax_rate, withholding_tax_amount, paid_at, status, reversed_payment_id, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxPaymentRepository struct {
	BaseRepository
	documentRepo portsrepo.DocumentRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	activityRepo portsrepo.ActivityRepositoryFacade
}

// newPgxPaymentRepository creates a new repository for payment and allocation data.
func newPgxPaymentRepository(pool *pgxpool.Pool, documentRepo portsrepo.DocumentRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, activityRepo portsrepo.ActivityRepositoryFacade) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
		documentRepo:   documentRepo,
		journalRepo:    journalRepo,
		activityRepo:   activityRepo,
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryWithTx
var _ portsrepo.PaymentRepositoryWithTx = (*PgxPaymentRepository)(nil)

func scanPaymentRow(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.WorkplaceID,
		&m.PaymentType,
		&m.Amount,
		&m.CurrencyCode,
		&m.Method,
		&m.Reference,
		&m.Notes,
		&m.WithholdingTaxRate,
		&m.WithholdingTaxAmount,
		&m.PaidAt,
		&m.Status,
		&m.ReversedPaymentID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// insertPaymentInTx inserts a payment row inside the caller's transaction.
func (r *PgxPaymentRepository) insertPaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	modelPayment := mapping.ToModelPayment(payment)

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		modelPayment.PaymentID,
		modelPayment.WorkplaceID,
		modelPayment.PaymentType,
		modelPayment.Amount,
		modelPayment.CurrencyCode,
		modelPayment.Method,
		modelPayment.Reference,
		modelPayment.Notes,
		modelPayment.WithholdingTaxRate,
		modelPayment.WithholdingTaxAmount,
		modelPayment.PaidAt,
		modelPayment.Status,
		modelPayment.ReversedPaymentID,
		modelPayment.CreatedAt,
		modelPayment.CreatedBy,
		modelPayment.LastUpdatedAt,
		modelPayment.LastUpdatedBy,
		modelPayment.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment "+modelPayment.PaymentID, err)
	}
	return nil
}

// insertAllocationsInTx batch-inserts allocation rows inside the caller's transaction.
func (r *PgxPaymentRepository) insertAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}

	query := `
		INSERT INTO payment_allocations (allocation_id, payment_id, document_id, allocated_amount, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	batch := &pgx.Batch{}
	for _, alloc := range allocations {
		modelAlloc := mapping.ToModelAllocation(alloc)
		batch.Queue(query,
			modelAlloc.AllocationID,
			modelAlloc.PaymentID,
			modelAlloc.DocumentID,
			modelAlloc.AllocatedAmount,
			modelAlloc.CreatedAt,
			modelAlloc.CreatedBy,
			modelAlloc.LastUpdatedAt,
			modelAlloc.LastUpdatedBy,
			modelAlloc.Version,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert allocation batch", err)
	}
	return nil
}

// applyAllocationsInTx locks each target document, re-validates it under the
// lock, and writes the new paid/due amounts and status. Negative allocation
// amounts restore previously applied payments.
func (r *PgxPaymentRepository) applyAllocationsInTx(ctx context.Context, tx pgx.Tx, workplaceID string, allocations []domain.PaymentAllocation, currencyCode string, userID string, now time.Time) error {
	for _, alloc := range allocations {
		doc, err := r.documentRepo.FindDocumentByIDForUpdate(ctx, tx, workplaceID, alloc.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to lock document %s: %w", alloc.DocumentID, err)
		}

		if alloc.AllocatedAmount.IsPositive() {
			// Re-validate under the lock; the document may have changed between
			// the service's read and this transaction.
			if !domain.CanReceivePayment(doc.Kind, doc.Status) {
				return fmt.Errorf("%w: document %s in status %s cannot receive payment", apperrors.ErrConflict, doc.DocumentID, doc.Status)
			}
			if doc.CurrencyCode != currencyCode {
				return fmt.Errorf("%w: payment currency %s does not match document currency %s", apperrors.ErrValidation, currencyCode, doc.CurrencyCode)
			}
			if alloc.AllocatedAmount.GreaterThan(doc.AmountDue) {
				return fmt.Errorf("%w: allocation %s exceeds amount due %s on document %s", apperrors.ErrValidation, alloc.AllocatedAmount.String(), doc.AmountDue.String(), doc.DocumentID)
			}
		} else if alloc.AllocatedAmount.Neg().GreaterThan(doc.AmountPaid) {
			return fmt.Errorf("%w: reversal %s exceeds amount paid %s on document %s", apperrors.ErrConflict, alloc.AllocatedAmount.Abs().String(), doc.AmountPaid.String(), doc.DocumentID)
		}

		outcome := accounting.ApplyAllocation(*doc, alloc.AllocatedAmount, now)

		if err := r.documentRepo.UpdateDocumentAmountsInTx(ctx, tx, doc.DocumentID, outcome.AmountPaid, outcome.AmountDue, outcome.Status, outcome.SettledAt, userID, now); err != nil {
			return err
		}
	}
	return nil
}

// appendActivitiesInTx writes the audit records inside the caller's transaction.
func (r *PgxPaymentRepository) appendActivitiesInTx(ctx context.Context, tx pgx.Tx, activities []domain.Activity) error {
	for _, activity := range activities {
		if err := r.activityRepo.AppendInTx(ctx, tx, activity); err != nil {
			return err
		}
	}
	return nil
}

// RecordPayment inserts a payment with its allocations, settles the target
// documents, optionally posts a ledger entry, and appends activities, all in
// one transaction.
func (r *PgxPaymentRepository) RecordPayment(ctx context.Context, payment domain.Payment, allocations []domain.PaymentAllocation, posting *portsrepo.LedgerPosting, activities []domain.Activity) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertPaymentInTx(ctx, tx, payment); err != nil {
		return err
	}
	if err := r.insertAllocationsInTx(ctx, tx, allocations); err != nil {
		return err
	}
	if err := r.applyAllocationsInTx(ctx, tx, payment.WorkplaceID, allocations, payment.CurrencyCode, payment.CreatedBy, payment.CreatedAt); err != nil {
		return err
	}

	if posting != nil {
		if err := r.journalRepo.SaveEntryInTx(ctx, tx, posting.Entry, posting.Lines, posting.BalanceChanges); err != nil {
			return fmt.Errorf("failed to post ledger entry for payment %s: %w", payment.PaymentID, err)
		}
	}

	if err := r.appendActivitiesInTx(ctx, tx, activities); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for payment "+payment.PaymentID, err)
	}

	return nil
}

// AddAllocations allocates more of an existing payment across documents. The
// payment row is locked and the allocation sum re-validated under the lock.
func (r *PgxPaymentRepository) AddAllocations(ctx context.Context, paymentID string, workplaceID string, allocations []domain.PaymentAllocation, activities []domain.Activity) error {
	if len(allocations) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	// Lock the payment row so concurrent allocation attempts serialize.
	lockQuery := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE workplace_id = $1 AND payment_id = $2
		FOR UPDATE;
	`
	modelPayment, err := scanPaymentRow(tx.QueryRow(ctx, lockQuery, workplaceID, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock payment "+paymentID, err)
	}

	var allocated decimal.Decimal
	sumQuery := `SELECT COALESCE(SUM(allocated_amount), 0) FROM payment_allocations WHERE payment_id = $1;`
	if err := tx.QueryRow(ctx, sumQuery, paymentID).Scan(&allocated); err != nil {
		return apperrors.NewAppError(500, "failed to sum allocations for payment "+paymentID, err)
	}

	requested := decimal.Zero
	for _, alloc := range allocations {
		requested = requested.Add(alloc.AllocatedAmount)
	}
	if allocated.Add(requested).GreaterThan(modelPayment.Amount) {
		return &apperrors.OverAllocationError{
			PaymentAmount: modelPayment.Amount,
			Allocated:     allocated.Add(requested),
		}
	}

	if err := r.insertAllocationsInTx(ctx, tx, allocations); err != nil {
		return err
	}

	userID := allocations[0].CreatedBy
	now := allocations[0].CreatedAt
	if err := r.applyAllocationsInTx(ctx, tx, workplaceID, allocations, modelPayment.CurrencyCode, userID, now); err != nil {
		return err
	}

	if err := r.appendActivitiesInTx(ctx, tx, activities); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for payment "+paymentID, err)
	}

	return nil
}

// ReversePayment marks the original payment with the given status and inserts
// the offsetting reversal payment and allocations, restoring the target
// documents' amounts. Original rows are only touched for the status flag.
func (r *PgxPaymentRepository) ReversePayment(ctx context.Context, originalPaymentID string, originalStatus domain.PaymentStatus, reversal domain.Payment, reversalAllocations []domain.PaymentAllocation, activities []domain.Activity) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	// Flip the original's status only if it is still COMPLETED; a concurrent
	// reversal loses the race here.
	statusQuery := `
		UPDATE payments
		SET status = $2, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE payment_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, statusQuery,
		originalPaymentID,
		originalStatus,
		reversal.CreatedAt,
		reversal.CreatedBy,
		domain.PaymentCompleted,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of payment "+originalPaymentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s is not in %s status", apperrors.ErrConflict, originalPaymentID, domain.PaymentCompleted)
	}

	if err := r.insertPaymentInTx(ctx, tx, reversal); err != nil {
		return err
	}
	if err := r.insertAllocationsInTx(ctx, tx, reversalAllocations); err != nil {
		return err
	}
	if err := r.applyAllocationsInTx(ctx, tx, reversal.WorkplaceID, reversalAllocations, reversal.CurrencyCode, reversal.CreatedBy, reversal.CreatedAt); err != nil {
		return err
	}

	if err := r.appendActivitiesInTx(ctx, tx, activities); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit reversal of payment "+originalPaymentID, err)
	}

	return nil
}

// FindPaymentByID retrieves a payment with its allocations.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE workplace_id = $1 AND payment_id = $2;
	`
	modelPayment, err := scanPaymentRow(r.Pool.QueryRow(ctx, query, workplaceID, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by ID "+paymentID, err)
	}

	allocations, err := r.findAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	payment := mapping.ToDomainPayment(modelPayment)
	payment.Allocations = allocations
	return &payment, nil
}

// findAllocationsByPaymentID loads the allocation rows of one payment.
func (r *PgxPaymentRepository) findAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	query := `
		SELECT allocation_id, payment_id, document_id, allocated_amount, created_at, created_by, last_updated_at, last_updated_by, version
		FROM payment_allocations
		WHERE payment_id = $1
		ORDER BY created_at, allocation_id;
	`
	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations for payment "+paymentID, err)
	}
	defer rows.Close()

	allocations := []models.PaymentAllocation{}
	for rows.Next() {
		var m models.PaymentAllocation
		if err := rows.Scan(&m.AllocationID, &m.PaymentID, &m.DocumentID, &m.AllocatedAmount, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row for payment "+paymentID, err)
		}
		allocations = append(allocations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows for payment "+paymentID, err)
	}

	return mapping.ToDomainAllocationSlice(allocations), nil
}

// ListPaymentsByDocument retrieves all payments with an allocation against a document.
func (r *PgxPaymentRepository) ListPaymentsByDocument(ctx context.Context, workplaceID string, documentID string) ([]domain.Payment, error) {
	query := `
		SELECT DISTINCT p.payment_id, p.workplace_id, p.payment_type, p.amount, p.currency_code, p.method, p.reference, p.notes, p.withholding_tax_rate, p.withholding_tax_amount, p.paid_at, p.status, p.reversed_payment_id, p.created_at, p.created_by, p.last_updated_at, p.last_updated_by, p.version
		FROM payments p
		JOIN payment_allocations a ON p.payment_id = a.payment_id
		WHERE p.workplace_id = $1 AND a.document_id = $2
		ORDER BY p.paid_at, p.payment_id;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments for document "+documentID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		m, err := scanPaymentRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row for document "+documentID, err)
		}
		payments = append(payments, mapping.ToDomainPayment(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows for document "+documentID, err)
	}

	return payments, nil
}

// ListPayments retrieves a paginated list of payments using token-based pagination.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, workplaceID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + paymentColumns + `
		FROM payments
	`
	filterClause := `WHERE workplace_id = $1`
	orderByClause := `ORDER BY paid_at DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{workplaceID}

	if nextToken != nil && *nextToken != "" {
		lastPaidAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (paid_at, created_at) < ($2, $3)`
		args = append(args, lastPaidAt, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payments for workplace "+workplaceID, err)
	}
	defer rows.Close()

	modelPayments := make([]models.Payment, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanPaymentRow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payment row for workplace "+workplaceID, scanErr)
		}
		modelPayments = append(modelPayments, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payment rows for workplace "+workplaceID, err)
	}

	var nextTokenVal *string
	results := modelPayments
	if len(modelPayments) > limit {
		lastPayment := modelPayments[limit-1] // The actual last item of the current page
		newToken := pagination.EncodeToken(lastPayment.PaidAt, lastPayment.CreatedAt)
		nextTokenVal = &newToken
		results = modelPayments[:limit]
	}

	payments := make([]domain.Payment, len(results))
	for i, m := range results {
		payments[i] = mapping.ToDomainPayment(m)
	}

	return payments, nextTokenVal, nil
}
