package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_core/internal/models"
	"github.com/finbooks/finbooks_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, workplace_id, code, name, account_type, sub_type, normal_balance, currency_code, parent_account_id, path, description, is_system_account, is_header, is_active, created_at, created_by, last_updated_at, last_updated_by, version, balance`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

// scanAccountRow scans one accounts row in accountColumns order.
func scanAccountRow(row pgx.Row) (models.Account, error) {
	var m models.Account
	var parentID sql.NullString
	err := row.Scan(
		&m.AccountID,
		&m.WorkplaceID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.SubType,
		&m.NormalBalance,
		&m.CurrencyCode,
		&parentID,
		&m.Path,
		&m.Description,
		&m.IsSystemAccount,
		&m.IsHeader,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
		&m.Balance,
	)
	if err != nil {
		return models.Account{}, err
	}
	if parentID.Valid {
		m.ParentAccountID = parentID.String
	}
	return m, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	// Use sql.NullString for potentially NULL parent_account_id
	var parentID sql.NullString
	if modelAcc.ParentAccountID != "" {
		parentID = sql.NullString{String: modelAcc.ParentAccountID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.WorkplaceID,
		modelAcc.Code,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.SubType,
		modelAcc.NormalBalance,
		modelAcc.CurrencyCode,
		parentID,
		modelAcc.Path,
		modelAcc.Description,
		modelAcc.IsSystemAccount,
		modelAcc.IsHeader,
		modelAcc.IsActive,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
		modelAcc.Version,
		modelAcc.Balance,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account with code %s already exists in workplace %s", apperrors.ErrDuplicate, modelAcc.Code, modelAcc.WorkplaceID)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID within a workplace.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, workplaceID string, accountID string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE workplace_id = $1 AND account_id = $2;
	`
	modelAcc, err := scanAccountRow(r.Pool.QueryRow(ctx, query, workplaceID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountByCode retrieves an account by its code within a workplace.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, workplaceID string, code string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE workplace_id = $1 AND code = $2;
	`
	modelAcc, err := scanAccountRow(r.Pool.QueryRow(ctx, query, workplaceID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE workplace_id = $1 AND account_id = ANY($2);
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		modelAcc, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[modelAcc.AccountID] = mapping.ToDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	// It's possible not all requested IDs were found, the map will simply not contain them.
	// The caller (service) should check if all needed accounts were retrieved.
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of accounts for a specific workplace,
// ordered by code so the chart reads top-down.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, workplaceID string, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE workplace_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for workplace %s: %w", workplaceID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		modelAcc, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for workplace %s: %w", workplaceID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(modelAcc))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for workplace %s: %w", workplaceID, rows.Err())
	}

	return accounts, nil
}

// HasPostings reports whether any journal line references the account.
func (r *PgxAccountRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check postings for account %s: %w", accountID, err)
	}
	return exists, nil
}

// HasChildren reports whether any account names this one as its parent.
func (r *PgxAccountRepository) HasChildren(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_account_id = $1);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check children for account %s: %w", accountID, err)
	}
	return exists, nil
}

// UpdateAccount updates an existing account's mutable fields.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, sub_type = $3, description = $4, parent_account_id = $5, path = $6, is_active = $7,
		    last_updated_at = $8, last_updated_by = $9, version = version + 1
		WHERE account_id = $1;
	`
	// Note: code, account_type, normal_balance and currency_code are immutable after creation.

	var parentID sql.NullString
	if modelAcc.ParentAccountID != "" {
		parentID = sql.NullString{String: modelAcc.ParentAccountID, Valid: true}
	}

	cmdTag, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.Name,
		modelAcc.SubType,
		modelAcc.Description,
		parentID,
		modelAcc.Path,
		modelAcc.IsActive,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)

	if err != nil {
		return fmt.Errorf("failed to execute update account %s: %w", modelAcc.AccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// MoveAccountSubtree updates a re-parented account and rewrites the paths of
// every descendant in the same transaction, so the materialized paths stay
// consistent with the parent chain.
func (r *PgxAccountRepository) MoveAccountSubtree(ctx context.Context, account domain.Account, oldPath string) error {
	modelAcc := mapping.ToModelAccount(account)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE accounts
		SET name = $2, sub_type = $3, description = $4, parent_account_id = $5, path = $6, is_active = $7,
		    last_updated_at = $8, last_updated_by = $9, version = version + 1
		WHERE account_id = $1;
	`

	var parentID sql.NullString
	if modelAcc.ParentAccountID != "" {
		parentID = sql.NullString{String: modelAcc.ParentAccountID, Valid: true}
	}

	cmdTag, err := tx.Exec(ctx, updateQuery,
		modelAcc.AccountID,
		modelAcc.Name,
		modelAcc.SubType,
		modelAcc.Description,
		parentID,
		modelAcc.Path,
		modelAcc.IsActive,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s during move: %w", modelAcc.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// Descendants carry the old path as a prefix; splice in the new one.
	rewriteQuery := `
		UPDATE accounts
		SET path = $3 || substr(path, length($2) + 1), last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE workplace_id = $1 AND path LIKE $2 || '/%';
	`
	if _, err := tx.Exec(ctx, rewriteQuery, modelAcc.WorkplaceID, oldPath, modelAcc.Path, modelAcc.LastUpdatedAt, modelAcc.LastUpdatedBy); err != nil {
		return fmt.Errorf("failed to rewrite descendant paths for account %s: %w", modelAcc.AccountID, err)
	}

	return r.Commit(ctx, tx)
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, workplaceID string, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE workplace_id = $1 AND account_id = $2 AND is_active = TRUE;
	` // Only update if it was active

	cmdTag, err := r.Pool.Exec(ctx, query, workplaceID, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate account %s: %w", accountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Either the account doesn't exist or it was already inactive; check which.
		_, findErr := r.FindAccountByID(ctx, workplaceID, accountID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check account status after deactivation attempt for %s: %w", accountID, findErr)
		}
		// Account exists but was already inactive.
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, accountID)
	}

	return nil
}

// DeleteAccount removes an account row. The service layer guarantees the
// account has no postings and no children before calling this.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, workplaceID string, accountID string) error {
	query := `DELETE FROM accounts WHERE workplace_id = $1 AND account_id = $2;`

	cmdTag, err := r.Pool.Exec(ctx, query, workplaceID, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: account %s is still referenced", apperrors.ErrConflict, accountID)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the rows for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		modelAcc, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[modelAcc.AccountID] = mapping.ToDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	// Check if all requested accounts were found and locked
	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		requested := make(map[string]bool)
		for _, id := range accountIDs {
			requested[id] = true
		}
		for id := range requested {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalancesInTx updates balances for multiple accounts within a transaction.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil // Nothing to update
	}

	// Use COALESCE to handle potential NULL balances if the default wasn't set correctly
	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() { // Only queue updates if there's a change
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}

	if batch.Len() == 0 {
		return nil // No non-zero changes
	}

	br := tx.SendBatch(ctx, batch)
	// Important: Check result for each update
	var batchErr error
	updatedCount := 0
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		} else {
			updatedCount++
		}
	}

	err := br.Close()
	if err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}

	if updatedCount != batch.Len() {
		slog.WarnContext(ctx, "Mismatch between expected and actual account balance updates", "expected", batch.Len(), "actual", updatedCount)
	}

	return nil
}
