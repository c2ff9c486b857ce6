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
	"github.com/finbooks/finbooks_core/internal/utils/mapping"
	"github.com/finbooks/finbooks_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const documentColumns = `document_id, workplace_id, kind, status, contact_id, currency_code, prefix, serial_number, issue_date, due_date, notes, metadata, subtotal, tax_total, discount_total, total, amount_paid, amount_due, settled_at, deleted_at, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for financial document data.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryWithTx
var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

func scanDocumentRow(row pgx.Row) (models.FinancialDocument, error) {
	var m models.FinancialDocument
	err := row.Scan(
		&m.DocumentID,
		&m.WorkplaceID,
		&m.Kind,
		&m.Status,
		&m.ContactID,
		&m.CurrencyCode,
		&m.Prefix,
		&m.SerialNumber,
		&m.IssueDate,
		&m.DueDate,
		&m.Notes,
		&m.Metadata,
		&m.Subtotal,
		&m.TaxTotal,
		&m.DiscountTotal,
		&m.Total,
		&m.AmountPaid,
		&m.AmountDue,
		&m.SettledAt,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveDocument persists the header, items and adjustments in one transaction.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.FinancialDocument) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	modelDoc := mapping.ToModelDocument(doc)
	headerQuery := `
		INSERT INTO financial_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
	`
	_, err = tx.Exec(ctx, headerQuery,
		modelDoc.DocumentID,
		modelDoc.WorkplaceID,
		modelDoc.Kind,
		modelDoc.Status,
		modelDoc.ContactID,
		modelDoc.CurrencyCode,
		modelDoc.Prefix,
		modelDoc.SerialNumber,
		modelDoc.IssueDate,
		modelDoc.DueDate,
		modelDoc.Notes,
		modelDoc.Metadata,
		modelDoc.Subtotal,
		modelDoc.TaxTotal,
		modelDoc.DiscountTotal,
		modelDoc.Total,
		modelDoc.AmountPaid,
		modelDoc.AmountDue,
		modelDoc.SettledAt,
		modelDoc.DeletedAt,
		modelDoc.CreatedAt,
		modelDoc.CreatedBy,
		modelDoc.LastUpdatedAt,
		modelDoc.LastUpdatedBy,
		modelDoc.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: document number %s already exists in workplace %s", apperrors.ErrDuplicate, doc.Number(), doc.WorkplaceID)
		}
		return apperrors.NewAppError(500, "failed to insert document "+modelDoc.DocumentID, err)
	}

	if err := r.insertItemsInTx(ctx, tx, doc); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for document "+modelDoc.DocumentID, err)
	}

	return nil
}

// insertItemsInTx batch-inserts the items and adjustments of a document.
func (r *PgxDocumentRepository) insertItemsInTx(ctx context.Context, tx pgx.Tx, doc domain.FinancialDocument) error {
	if len(doc.Items) == 0 && len(doc.Adjustments) == 0 {
		return nil
	}

	itemQuery := `
		INSERT INTO line_items (line_item_id, document_id, name, quantity, unit_price, discount_percent, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	adjustmentQuery := `
		INSERT INTO billing_adjustments (adjustment_id, document_id, name, type, value, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	batch := &pgx.Batch{}
	for i, item := range doc.Items {
		modelItem := mapping.ToModelLineItem(item, doc.DocumentID, i)
		batch.Queue(itemQuery,
			modelItem.LineItemID,
			modelItem.DocumentID,
			modelItem.Name,
			modelItem.Quantity,
			modelItem.UnitPrice,
			modelItem.DiscountPercent,
			modelItem.Amount,
			modelItem.Position,
		)
	}
	for i, adj := range doc.Adjustments {
		modelAdj := mapping.ToModelAdjustment(adj, doc.DocumentID, i)
		batch.Queue(adjustmentQuery,
			modelAdj.AdjustmentID,
			modelAdj.DocumentID,
			modelAdj.Name,
			modelAdj.Type,
			modelAdj.Value,
			modelAdj.Amount,
			modelAdj.Position,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert items for document "+doc.DocumentID, err)
	}
	return nil
}

// FindDocumentByID retrieves a document with its items and adjustments.
// Soft-deleted documents are not returned.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, workplaceID string, documentID string) (*domain.FinancialDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM financial_documents
		WHERE workplace_id = $1 AND document_id = $2 AND deleted_at IS NULL;
	`
	modelDoc, err := scanDocumentRow(r.Pool.QueryRow(ctx, query, workplaceID, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find document by ID "+documentID, err)
	}

	doc := mapping.ToDomainDocument(modelDoc)

	items, adjustments, err := r.findItemsByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	doc.Adjustments = adjustments

	return &doc, nil
}

// findItemsByDocumentID loads the item and adjustment rows of a document in
// position order.
func (r *PgxDocumentRepository) findItemsByDocumentID(ctx context.Context, documentID string) ([]domain.LineItem, []domain.BillingAdjustment, error) {
	itemQuery := `
		SELECT line_item_id, document_id, name, quantity, unit_price, discount_percent, amount, position
		FROM line_items
		WHERE document_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, itemQuery, documentID)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query items for document "+documentID, err)
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var m models.LineItem
		if err := rows.Scan(&m.LineItemID, &m.DocumentID, &m.Name, &m.Quantity, &m.UnitPrice, &m.DiscountPercent, &m.Amount, &m.Position); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan item row for document "+documentID, err)
		}
		items = append(items, mapping.ToDomainLineItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating item rows for document "+documentID, err)
	}

	adjustmentQuery := `
		SELECT adjustment_id, document_id, name, type, value, amount, position
		FROM billing_adjustments
		WHERE document_id = $1
		ORDER BY position;
	`
	adjRows, err := r.Pool.Query(ctx, adjustmentQuery, documentID)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query adjustments for document "+documentID, err)
	}
	defer adjRows.Close()

	adjustments := []domain.BillingAdjustment{}
	for adjRows.Next() {
		var m models.BillingAdjustment
		if err := adjRows.Scan(&m.AdjustmentID, &m.DocumentID, &m.Name, &m.Type, &m.Value, &m.Amount, &m.Position); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan adjustment row for document "+documentID, err)
		}
		adjustments = append(adjustments, mapping.ToDomainAdjustment(m))
	}
	if err := adjRows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating adjustment rows for document "+documentID, err)
	}

	return items, adjustments, nil
}

// ListDocuments retrieves a paginated list of document headers using token-based pagination.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, workplaceID string, filter portsrepo.DocumentListFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + documentColumns + `
		FROM financial_documents
	`
	filterClause := `WHERE workplace_id = $1 AND deleted_at IS NULL`
	args := []interface{}{workplaceID}

	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		filterClause += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		filterClause += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ContactID != nil {
		args = append(args, *filter.ContactID)
		filterClause += ` AND contact_id = $` + strconv.Itoa(len(args))
	}

	// Ordering must be stable: issue_date DESC with created_at DESC tie-breaker.
	orderByClause := `ORDER BY issue_date DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastIssueDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		args = append(args, lastIssueDate, lastCreatedAt)
		filterClause += ` AND (issue_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query documents for workplace "+workplaceID, err)
	}
	defer rows.Close()

	modelDocs := make([]models.FinancialDocument, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDocumentRow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan document row for workplace "+workplaceID, scanErr)
		}
		modelDocs = append(modelDocs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating document rows for workplace "+workplaceID, err)
	}

	// Determine the next token
	var nextTokenVal *string
	results := modelDocs
	if len(modelDocs) > limit {
		lastDoc := modelDocs[limit-1] // The actual last item of the current page
		newToken := pagination.EncodeToken(lastDoc.IssueDate, lastDoc.CreatedAt)
		nextTokenVal = &newToken
		results = modelDocs[:limit]
	}

	docs := make([]domain.FinancialDocument, len(results))
	for i, m := range results {
		docs[i] = mapping.ToDomainDocument(m)
	}

	return docs, nextTokenVal, nil
}

// ListSerialNumbers returns the serial numbers already assigned in a
// (workplace, kind, prefix) scope. Soft-deleted rows are included so their
// numbers are never reissued.
func (r *PgxDocumentRepository) ListSerialNumbers(ctx context.Context, workplaceID string, kind domain.DocumentKind, prefix string) ([]string, error) {
	query := `
		SELECT serial_number
		FROM financial_documents
		WHERE workplace_id = $1 AND kind = $2 AND prefix = $3;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, string(kind), prefix)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query serial numbers for workplace "+workplaceID, err)
	}
	defer rows.Close()

	serials := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan serial number row", err)
		}
		serials = append(serials, s)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating serial number rows", err)
	}

	return serials, nil
}

// UpdateDocument updates the header and, when replaceItems is set, replaces
// the item and adjustment sets wholesale.
func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, doc domain.FinancialDocument, replaceItems bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	modelDoc := mapping.ToModelDocument(doc)
	headerQuery := `
		UPDATE financial_documents
		SET contact_id = $2, issue_date = $3, due_date = $4, notes = $5, metadata = $6,
		    subtotal = $7, tax_total = $8, discount_total = $9, total = $10, amount_paid = $11, amount_due = $12,
		    last_updated_at = $13, last_updated_by = $14, version = version + 1
		WHERE document_id = $1 AND deleted_at IS NULL;
	`
	// Note: kind, status, prefix, serial_number and currency_code are not
	// updated here. Status changes go through UpdateDocumentStatus.

	cmdTag, err := tx.Exec(ctx, headerQuery,
		modelDoc.DocumentID,
		modelDoc.ContactID,
		modelDoc.IssueDate,
		modelDoc.DueDate,
		modelDoc.Notes,
		modelDoc.Metadata,
		modelDoc.Subtotal,
		modelDoc.TaxTotal,
		modelDoc.DiscountTotal,
		modelDoc.Total,
		modelDoc.AmountPaid,
		modelDoc.AmountDue,
		modelDoc.LastUpdatedAt,
		modelDoc.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to execute update document "+modelDoc.DocumentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if replaceItems {
		// Delete-then-insert keeps positions contiguous without diffing.
		if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE document_id = $1;`, doc.DocumentID); err != nil {
			return apperrors.NewAppError(500, "failed to delete items for document "+doc.DocumentID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM billing_adjustments WHERE document_id = $1;`, doc.DocumentID); err != nil {
			return apperrors.NewAppError(500, "failed to delete adjustments for document "+doc.DocumentID, err)
		}
		if err := r.insertItemsInTx(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for document "+modelDoc.DocumentID, err)
	}

	return nil
}

// UpdateDocumentStatus writes a new status, optionally stamping settlement.
func (r *PgxDocumentRepository) UpdateDocumentStatus(ctx context.Context, workplaceID string, documentID string, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE financial_documents
		SET status = $3, settled_at = $4, last_updated_at = $5, last_updated_by = $6, version = version + 1
		WHERE workplace_id = $1 AND document_id = $2 AND deleted_at IS NULL;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, workplaceID, documentID, status, settledAt, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for document "+documentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SoftDeleteDocument sets the tombstone timestamp.
func (r *PgxDocumentRepository) SoftDeleteDocument(ctx context.Context, workplaceID string, documentID string, userID string, now time.Time) error {
	query := `
		UPDATE financial_documents
		SET deleted_at = $3, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE workplace_id = $1 AND document_id = $2 AND deleted_at IS NULL;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, workplaceID, documentID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to soft delete document "+documentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// FindDocumentByIDForUpdate loads a document header with a row lock.
// Must be called within a transaction.
func (r *PgxDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, workplaceID string, documentID string) (*domain.FinancialDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM financial_documents
		WHERE workplace_id = $1 AND document_id = $2 AND deleted_at IS NULL
		FOR UPDATE;
	`
	modelDoc, err := scanDocumentRow(tx.QueryRow(ctx, query, workplaceID, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock document "+documentID, err)
	}

	doc := mapping.ToDomainDocument(modelDoc)
	return &doc, nil
}

// UpdateDocumentAmountsInTx writes the paid/due amounts and status of a
// locked document within the caller's transaction.
func (r *PgxDocumentRepository) UpdateDocumentAmountsInTx(ctx context.Context, tx pgx.Tx, documentID string, amountPaid, amountDue decimal.Decimal, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE financial_documents
		SET amount_paid = $2, amount_due = $3, status = $4, settled_at = $5,
		    last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE document_id = $1;
	`

	cmdTag, err := tx.Exec(ctx, query, documentID, amountPaid, amountDue, status, settledAt, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update amounts for document "+documentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s not found during amount update", apperrors.ErrNotFound, documentID)
	}

	return nil
}
