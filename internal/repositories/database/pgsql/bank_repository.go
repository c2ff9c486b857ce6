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
)

const bankTransactionColumns = `transaction_id, workplace_id, bank_account_id, transaction_date, amount, type, description, reference, currency_code, match_status, matched_document_id, matched_contact_id, matched_rule_id, category, match_confidence, is_reconciled, created_at, created_by, last_updated_at, last_updated_by, version`

const matchingRuleColumns = `rule_id, workplace_id, name, priority, description_contains, min_amount, max_amount, direction, link_contact_id, category, is_active, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxBankRepository struct {
	BaseRepository
}

// newPgxBankRepository creates a new repository for bank transactions and matching rules.
func newPgxBankRepository(pool *pgxpool.Pool) portsrepo.BankRepositoryFacade {
	return &PgxBankRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBankRepository implements portsrepo.BankRepositoryFacade
var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

func scanBankTransactionRow(row pgx.Row) (models.BankTransaction, error) {
	var m models.BankTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.WorkplaceID,
		&m.BankAccountID,
		&m.TransactionDate,
		&m.Amount,
		&m.Type,
		&m.Description,
		&m.Reference,
		&m.CurrencyCode,
		&m.MatchStatus,
		&m.MatchedDocumentID,
		&m.MatchedContactID,
		&m.MatchedRuleID,
		&m.Category,
		&m.MatchConfidence,
		&m.IsReconciled,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveTransactions bulk-inserts imported transactions in one transaction.
func (r *PgxBankRepository) SaveTransactions(ctx context.Context, transactions []domain.BankTransaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO bank_transactions (` + bankTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelBankTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.WorkplaceID,
			m.BankAccountID,
			m.TransactionDate,
			m.Amount,
			m.Type,
			m.Description,
			m.Reference,
			m.CurrencyCode,
			m.MatchStatus,
			m.MatchedDocumentID,
			m.MatchedContactID,
			m.MatchedRuleID,
			m.Category,
			m.MatchConfidence,
			m.IsReconciled,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
			m.Version,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: duplicate bank transaction in import batch", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert bank transaction batch", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit bank transaction import", err)
	}

	return nil
}

// FindTransactionByID retrieves a single bank transaction.
func (r *PgxBankRepository) FindTransactionByID(ctx context.Context, workplaceID string, transactionID string) (*domain.BankTransaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE workplace_id = $1 AND transaction_id = $2;
	`
	m, err := scanBankTransactionRow(r.Pool.QueryRow(ctx, query, workplaceID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bank transaction by ID "+transactionID, err)
	}

	txn := mapping.ToDomainBankTransaction(m)
	return &txn, nil
}

// FindNearbyTransactions retrieves transactions on the same bank account
// whose date falls within the window around the given date.
func (r *PgxBankRepository) FindNearbyTransactions(ctx context.Context, workplaceID string, bankAccountID string, date time.Time, window time.Duration) ([]domain.BankTransaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE workplace_id = $1 AND bank_account_id = $2 AND transaction_date BETWEEN $3 AND $4
		ORDER BY transaction_date;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, bankAccountID, date.Add(-window), date.Add(window))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query nearby transactions for bank account "+bankAccountID, err)
	}
	defer rows.Close()

	transactions := []models.BankTransaction{}
	for rows.Next() {
		m, err := scanBankTransactionRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction row", err)
		}
		transactions = append(transactions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bank transaction rows", err)
	}

	return mapping.ToDomainBankTransactionSlice(transactions), nil
}

// ListTransactions retrieves a paginated, optionally status-filtered list
// using token-based pagination.
func (r *PgxBankRepository) ListTransactions(ctx context.Context, workplaceID string, bankAccountID string, status *domain.MatchStatus, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
	`
	filterClause := `WHERE workplace_id = $1 AND bank_account_id = $2`
	args := []interface{}{workplaceID, bankAccountID}

	if status != nil {
		args = append(args, string(*status))
		filterClause += ` AND match_status = $` + strconv.Itoa(len(args))
	}

	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		args = append(args, lastDate, lastCreatedAt)
		filterClause += ` AND (transaction_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query bank transactions for account "+bankAccountID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.BankTransaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanBankTransactionRow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan bank transaction row", scanErr)
		}
		modelTxns = append(modelTxns, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating bank transaction rows", err)
	}

	var nextTokenVal *string
	results := modelTxns
	if len(modelTxns) > limit {
		lastTxn := modelTxns[limit-1] // The actual last item of the current page
		newToken := pagination.EncodeToken(lastTxn.TransactionDate, lastTxn.CreatedAt)
		nextTokenVal = &newToken
		results = modelTxns[:limit]
	}

	return mapping.ToDomainBankTransactionSlice(results), nextTokenVal, nil
}

// ListUnmatched retrieves all unmatched transactions of a workplace, oldest
// first, for rule application.
func (r *PgxBankRepository) ListUnmatched(ctx context.Context, workplaceID string) ([]domain.BankTransaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE workplace_id = $1 AND match_status = $2
		ORDER BY transaction_date, created_at;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, string(domain.MatchUnmatched))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unmatched transactions for workplace "+workplaceID, err)
	}
	defer rows.Close()

	transactions := []models.BankTransaction{}
	for rows.Next() {
		m, err := scanBankTransactionRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction row", err)
		}
		transactions = append(transactions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bank transaction rows", err)
	}

	return mapping.ToDomainBankTransactionSlice(transactions), nil
}

// UpdateMatch persists the matching fields of one transaction.
func (r *PgxBankRepository) UpdateMatch(ctx context.Context, txn domain.BankTransaction) error {
	m := mapping.ToModelBankTransaction(txn)

	query := `
		UPDATE bank_transactions
		SET match_status = $2, matched_document_id = $3, matched_contact_id = $4, matched_rule_id = $5,
		    category = $6, match_confidence = $7, is_reconciled = $8,
		    last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE transaction_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.MatchStatus,
		m.MatchedDocumentID,
		m.MatchedContactID,
		m.MatchedRuleID,
		m.Category,
		m.MatchConfidence,
		m.IsReconciled,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update match for transaction "+m.TransactionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SaveRule persists a new matching rule.
func (r *PgxBankRepository) SaveRule(ctx context.Context, rule domain.MatchingRule) error {
	m := mapping.ToModelMatchingRule(rule)

	query := `
		INSERT INTO matching_rules (` + matchingRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.WorkplaceID,
		m.Name,
		m.Priority,
		m.DescriptionContains,
		m.MinAmount,
		m.MaxAmount,
		m.Direction,
		m.LinkContactID,
		m.Category,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: rule with ID %s already exists", apperrors.ErrDuplicate, m.RuleID)
		}
		return apperrors.NewAppError(500, "failed to save matching rule "+m.RuleID, err)
	}
	return nil
}

// ListRules retrieves the active rules of a workplace ordered by priority
// descending, then creation time ascending.
func (r *PgxBankRepository) ListRules(ctx context.Context, workplaceID string) ([]domain.MatchingRule, error) {
	query := `
		SELECT ` + matchingRuleColumns + `
		FROM matching_rules
		WHERE workplace_id = $1 AND is_active = TRUE
		ORDER BY priority DESC, created_at;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matching rules for workplace "+workplaceID, err)
	}
	defer rows.Close()

	rules := []models.MatchingRule{}
	for rows.Next() {
		var m models.MatchingRule
		err := rows.Scan(
			&m.RuleID,
			&m.WorkplaceID,
			&m.Name,
			&m.Priority,
			&m.DescriptionContains,
			&m.MinAmount,
			&m.MaxAmount,
			&m.Direction,
			&m.LinkContactID,
			&m.Category,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.Version,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan matching rule row", err)
		}
		rules = append(rules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating matching rule rows", err)
	}

	return mapping.ToDomainMatchingRuleSlice(rules), nil
}

// DeactivateRule marks a rule inactive.
func (r *PgxBankRepository) DeactivateRule(ctx context.Context, workplaceID string, ruleID string, userID string, now time.Time) error {
	query := `
		UPDATE matching_rules
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE workplace_id = $1 AND rule_id = $2 AND is_active = TRUE;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, workplaceID, ruleID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate matching rule "+ruleID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
