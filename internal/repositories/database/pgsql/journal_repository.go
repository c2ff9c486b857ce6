package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
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

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

// SaveEntry saves an entry, updates account balances and the monthly balance
// cache, and saves the lines, all within a DB transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	// Defer rollback in case of error
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	if err := r.SaveEntryInTx(ctx, tx, entry, lines, balanceChanges); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for entry "+entry.EntryID, err)
	}

	return nil
}

// SaveEntryInTx persists an entry and its lines inside the caller's
// transaction. Payments use this to post their ledger entry atomically with
// the payment rows.
func (r *PgxJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	accountRepo := r.accountRepo

	now := entry.CreatedAt // Use consistent time from the entry
	userID := entry.CreatedBy

	// 1. Insert the entry
	modelEntry := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, workplace_id, entry_date, description, currency_code, status,
			reversed_entry_id, reversing_entry_id, source_type, source_id, amount,
			created_at, created_by, last_updated_at, last_updated_by, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.WorkplaceID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.CurrencyCode,
		modelEntry.Status,
		modelEntry.ReversedEntryID,
		modelEntry.ReversingEntryID,
		modelEntry.SourceType,
		modelEntry.SourceID,
		modelEntry.Amount,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
		modelEntry.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+modelEntry.EntryID, err)
	}

	// 2. Lock accounts and get current balances
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	lockedAccounts, err := accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		// Error includes ErrNotFound if any account is missing
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	// 3. Update cached account balances
	if err := accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// 4. Prepare and insert lines with calculated running balances
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, debit_amount, credit_amount, currency_code, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	// Running balance per account within this entry, seeded from the balance
	// *before* this entry's changes.
	currentRunningBalances := make(map[string]decimal.Decimal)
	for accID, lockedAcc := range lockedAccounts {
		currentRunningBalances[accID] = lockedAcc.Balance
	}

	// Sort by LineID for deterministic running balance order
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].LineID < lines[j].LineID
	})

	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		modelLine.CreatedAt = now
		modelLine.LastUpdatedAt = now
		modelLine.CreatedBy = userID
		modelLine.LastUpdatedBy = userID

		lockedAccount, ok := lockedAccounts[line.AccountID]
		if !ok {
			// Should not happen, the locking step finds all accounts
			return apperrors.NewAppError(500, "internal error: locked account "+line.AccountID+" not found during line processing", nil)
		}

		signedAmount, err := accounting.CalculateSignedAmount(line, lockedAccount.AccountType)
		if err != nil {
			return apperrors.NewAppError(500, "failed to calculate signed amount for line "+line.LineID, err)
		}

		newRunningBalance := currentRunningBalances[line.AccountID].Add(signedAmount)
		modelLine.RunningBalance = newRunningBalance
		currentRunningBalances[line.AccountID] = newRunningBalance

		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountID,
			modelLine.DebitAmount,
			modelLine.CreditAmount,
			modelLine.CurrencyCode,
			modelLine.Notes,
			modelLine.RunningBalance,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
			modelLine.Version,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+modelEntry.EntryID, err)
	}

	// 5. Fold the entry into the monthly balance cache
	if err := r.updateMonthlyBalancesInTx(ctx, tx, entry, lines, balanceChanges, userID, now); err != nil {
		return err
	}

	return nil
}

// updateMonthlyBalancesInTx upserts the (account, year, month) cache rows for
// the entry's month. Closing balances stay cumulative because postings into
// months that already have later cached rows are blocked by period close.
func (r *PgxJournalRepository) updateMonthlyBalancesInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	year := entry.EntryDate.Year()
	month := int(entry.EntryDate.Month())

	type movement struct {
		debits  decimal.Decimal
		credits decimal.Decimal
	}
	movements := make(map[string]movement)
	for _, line := range lines {
		m := movements[line.AccountID]
		m.debits = m.debits.Add(line.DebitAmount)
		m.credits = m.credits.Add(line.CreditAmount)
		movements[line.AccountID] = m
	}

	query := `
		INSERT INTO account_balances (account_id, workplace_id, year, month, period_debits, period_credits, closing_balance, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		ON CONFLICT (account_id, year, month) DO UPDATE
		SET period_debits = account_balances.period_debits + EXCLUDED.period_debits,
		    period_credits = account_balances.period_credits + EXCLUDED.period_credits,
		    closing_balance = account_balances.closing_balance + EXCLUDED.closing_balance,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by,
		    version = account_balances.version + 1;
	`

	batch := &pgx.Batch{}
	for accID, m := range movements {
		batch.Queue(query,
			accID,
			entry.WorkplaceID,
			year,
			month,
			m.debits,
			m.credits,
			balanceChanges[accID],
			now,
			userID,
			now,
			userID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update monthly balances for entry "+entry.EntryID, err)
	}

	return nil
}

// FindEntryByID retrieves an entry by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, workplaceID string, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT entry_id, workplace_id, entry_date, description, currency_code, status,
		       reversed_entry_id, reversing_entry_id, source_type, source_id, amount,
		       created_at, created_by, last_updated_at, last_updated_by, version
		FROM journal_entries
		WHERE workplace_id = $1 AND entry_id = $2;
	`
	var modelEntry models.JournalEntry
	var reversedID sql.NullString
	var reversingID sql.NullString

	err := r.Pool.QueryRow(ctx, query, workplaceID, entryID).Scan(
		&modelEntry.EntryID,
		&modelEntry.WorkplaceID,
		&modelEntry.EntryDate,
		&modelEntry.Description,
		&modelEntry.CurrencyCode,
		&modelEntry.Status,
		&reversedID,
		&reversingID,
		&modelEntry.SourceType,
		&modelEntry.SourceID,
		&modelEntry.Amount,
		&modelEntry.CreatedAt,
		&modelEntry.CreatedBy,
		&modelEntry.LastUpdatedAt,
		&modelEntry.LastUpdatedBy,
		&modelEntry.Version,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	if reversedID.Valid {
		modelEntry.ReversedEntryID = &reversedID.String
	}
	if reversingID.Valid {
		modelEntry.ReversingEntryID = &reversingID.String
	}

	domainEntry := mapping.ToDomainJournalEntry(modelEntry)
	return &domainEntry, nil
}

// ListEntries retrieves a paginated list of entries for a workplace using token-based pagination.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, workplaceID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT entry_id, workplace_id, entry_date, description, currency_code, status,
		       reversed_entry_id, reversing_entry_id, source_type, source_id, amount,
		       created_at, created_by, last_updated_at, last_updated_by, version
		FROM journal_entries
	`
	filterClause := `WHERE workplace_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversed_entry_id IS NULL`
	}

	// Ordering must be stable: entry_date DESC with created_at DESC tie-breaker.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{workplaceID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		// Tuple comparison is concise and efficient in Postgres
		cursorClause := `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for workplace "+workplaceID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		var m models.JournalEntry
		var reversedID sql.NullString
		var reversingID sql.NullString

		scanErr := rows.Scan(
			&m.EntryID,
			&m.WorkplaceID,
			&m.EntryDate,
			&m.Description,
			&m.CurrencyCode,
			&m.Status,
			&reversedID,
			&reversingID,
			&m.SourceType,
			&m.SourceID,
			&m.Amount,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.Version,
		)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for workplace "+workplaceID, scanErr)
		}

		if reversedID.Valid {
			m.ReversedEntryID = &reversedID.String
		}
		if reversingID.Valid {
			m.ReversingEntryID = &reversingID.String
		}
		modelEntries = append(modelEntries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for workplace "+workplaceID, err)
	}

	// Determine the next token
	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		lastEntry := modelEntries[limit-1] // The actual last item of the current page
		newToken := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	domainEntries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		domainEntries[i] = mapping.ToDomainJournalEntry(m)
	}

	return domainEntries, nextTokenVal, nil
}

// FindLinesByEntryID retrieves all lines associated with a specific entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, debit_amount, credit_amount, currency_code, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by, version
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		var l models.JournalLine
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.CurrencyCode,
			&l.Notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.Version,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainJournalLineSlice(lines), nil
}

// ListLinesByAccountID retrieves a paginated list of lines for a specific account using token-based pagination.
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, workplaceID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.entry_id, l.account_id, l.debit_amount, l.credit_amount, l.currency_code, l.notes, l.running_balance,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, l.version, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.workplace_id = $2
	`
	orderByClause := `ORDER BY e.entry_date DESC, l.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID, workplaceID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (e.entry_date, l.created_at) < ($3, $4)`
		args = append(args, lastEntryDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID+" in workplace "+workplaceID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line      models.JournalLine
		entryDate time.Time
	}
	scanned := make([]lineWithDate, 0, fetchLimit)

	for rows.Next() {
		var l models.JournalLine
		var entryDate time.Time
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.CurrencyCode,
			&l.Notes,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.Version,
			&entryDate,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, err)
		}
		scanned = append(scanned, lineWithDate{line: l, entryDate: entryDate})
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	var results []models.JournalLine
	if len(scanned) > limit {
		last := scanned[limit-1] // The actual last item of the current page
		token := pagination.EncodeToken(last.entryDate, last.line.CreatedAt)
		nextTokenVal = &token

		results = make([]models.JournalLine, limit)
		for i := 0; i < limit; i++ {
			results[i] = scanned[i].line
		}
	} else {
		results = make([]models.JournalLine, len(scanned))
		for i, s := range scanned {
			results[i] = s.line
		}
	}

	return mapping.ToDomainJournalLineSlice(results), nextTokenVal, nil
}

// UpdateEntryStatusAndLinks updates the status and reversal linkage of an entry.
func (r *PgxJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    reversing_entry_id = $3,
		    last_updated_at = $4,
		    last_updated_by = $5,
		    version = version + 1
		WHERE entry_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		entryID,
		status,
		reversingEntryID,
		updatedAt,
		updatedByUserID,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry status/links for "+entryID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s not found for update", apperrors.ErrNotFound, entryID)
	}

	return nil
}

// FindAccountBalance retrieves the cached balance row for (account, year, month).
func (r *PgxJournalRepository) FindAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	query := `
		SELECT account_id, workplace_id, year, month, period_debits, period_credits, closing_balance, created_at, created_by, last_updated_at, last_updated_by, version
		FROM account_balances
		WHERE workplace_id = $1 AND account_id = $2 AND year = $3 AND month = $4;
	`
	var m models.AccountBalance
	err := r.Pool.QueryRow(ctx, query, workplaceID, accountID, year, month).Scan(
		&m.AccountID,
		&m.WorkplaceID,
		&m.Year,
		&m.Month,
		&m.PeriodDebits,
		&m.PeriodCredits,
		&m.ClosingBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find balance for account "+accountID, err)
	}

	domainBalance := mapping.ToDomainAccountBalance(m)
	return &domainBalance, nil
}

// RecomputeAccountBalance re-derives the (account, year, month) aggregate from
// the line history. The cache row is not touched; callers compare the two to
// detect drift.
func (r *PgxJournalRepository) RecomputeAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	account, err := r.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT COALESCE(SUM(l.debit_amount), 0),
		       COALESCE(SUM(l.credit_amount), 0),
		       COALESCE(SUM(l.debit_amount) FILTER (WHERE e.entry_date >= $3), 0),
		       COALESCE(SUM(l.credit_amount) FILTER (WHERE e.entry_date >= $3), 0)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.workplace_id = $1 AND l.account_id = $2 AND e.entry_date < $4;
	`

	var totalDebits, totalCredits, periodDebits, periodCredits decimal.Decimal
	err = r.Pool.QueryRow(ctx, query, workplaceID, accountID, monthStart, nextMonth).Scan(
		&totalDebits,
		&totalCredits,
		&periodDebits,
		&periodCredits,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to recompute balance for account "+accountID, err)
	}

	// Cumulative signed balance at month end, oriented by the account's type.
	closing := totalDebits.Sub(totalCredits)
	if account.NormalBalance == domain.CreditBalance {
		closing = totalCredits.Sub(totalDebits)
	}

	return &domain.AccountBalance{
		AccountID:      accountID,
		WorkplaceID:    workplaceID,
		Year:           year,
		Month:          month,
		PeriodDebits:   periodDebits,
		PeriodCredits:  periodCredits,
		ClosingBalance: closing,
	}, nil
}
