package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/utils/accounting"
)

var (
	ErrEntryMinLines     = errors.New("journal entry must have at least two lines")
	ErrEntryMinAccounts  = errors.New("journal entry must affect at least two different accounts")
	ErrEntryOneSided     = errors.New("journal line must carry exactly one of debit or credit")
	ErrCurrencyMismatch  = errors.New("account currency does not match entry currency")
	ErrHeaderAccount     = errors.New("header accounts cannot be posted to")
	ErrEntryDescMissing  = errors.New("journal entry description is required")
	ErrEntryAccountMiss  = errors.New("account not found")
)

const (
	sourceTypeManual   = "MANUAL"
	sourceTypeReversal = "REVERSAL"
	sourceTypePayment  = "PAYMENT"
)

// journalService provides double-entry posting operations.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	periodRepo  portsrepo.PeriodRepositoryFacade
	activityRepo portsrepo.ActivityRepositoryFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx, periodRepo portsrepo.PeriodRepositoryFacade, activityRepo portsrepo.ActivityRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		periodRepo:   periodRepo,
		activityRepo: activityRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateLines checks the structural double-entry rules: at least two lines
// across at least two accounts, one side per line, debits equal credits.
func (s *journalService) validateLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return ErrEntryMinLines
	}

	accountSet := make(map[string]bool)
	for _, line := range lines {
		accountSet[line.AccountID] = true

		debitSet := line.DebitAmount.IsPositive()
		creditSet := line.CreditAmount.IsPositive()
		if debitSet == creditSet || line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: account %s", ErrEntryOneSided, line.AccountID)
		}
	}
	if len(accountSet) < 2 {
		return ErrEntryMinAccounts
	}

	debits, credits := accounting.SumDebitsCredits(lines)
	if !debits.Equal(credits) {
		return &apperrors.UnbalancedEntryError{
			Debits:    debits,
			Credits:   credits,
			Imbalance: debits.Sub(credits),
		}
	}
	return nil
}

// checkPeriodOpen rejects postings dated inside a period that is not OPEN.
// Dates with no period defined are accepted.
func (s *journalService) checkPeriodOpen(ctx context.Context, workplaceID string, date time.Time) error {
	period, err := s.periodRepo.FindPeriodForDate(ctx, workplaceID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check accounting period: %w", err)
	}
	if period.Status != domain.PeriodOpen {
		return &apperrors.PeriodClosedError{
			Year:   period.Year,
			Month:  period.Month,
			Status: string(period.Status),
		}
	}
	return nil
}

// fetchAndValidateAccounts loads all referenced accounts and checks that each
// exists in the workplace, is active, is postable and matches the currency.
func (s *journalService) fetchAndValidateAccounts(ctx context.Context, workplaceID string, lines []domain.JournalLine, currencyCode string) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, workplaceID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range accountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s: %w", ErrEntryAccountMiss, id, apperrors.ErrNotFound)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.IsHeader {
			return nil, fmt.Errorf("%w: account %s", ErrHeaderAccount, id)
		}
		if acc.CurrencyCode != currencyCode {
			return nil, fmt.Errorf("%w: account currency %s, entry currency %s for account %s", ErrCurrencyMismatch, acc.CurrencyCode, currencyCode, id)
		}
	}
	return accountsMap, nil
}

// balanceChanges computes the net signed balance delta of each account.
func (s *journalService) balanceChanges(lines []domain.JournalLine, accountsMap map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		acc := accountsMap[line.AccountID]
		signed, err := accounting.CalculateSignedAmount(line, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance change: %w", err)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}

// PostEntry validates and posts a balanced journal entry. The entry, its
// lines and the balance cache updates are committed in one transaction.
func (s *journalService) PostEntry(ctx context.Context, workplaceID string, req dto.PostJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEntryDescMissing)
	}

	if err := s.checkPeriodOpen(ctx, workplaceID, req.EntryDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    lineReq.AccountID,
			DebitAmount:  lineReq.DebitAmount,
			CreditAmount: lineReq.CreditAmount,
			CurrencyCode: req.CurrencyCode,
			Notes:        lineReq.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	if err := s.validateLines(lines); err != nil {
		return nil, err
	}

	accountsMap, err := s.fetchAndValidateAccounts(ctx, workplaceID, lines, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	changes, err := s.balanceChanges(lines, accountsMap)
	if err != nil {
		return nil, err
	}

	debits, _ := accounting.SumDebitsCredits(lines)
	entry := domain.JournalEntry{
		EntryID:      entryID,
		WorkplaceID:  workplaceID,
		EntryDate:    req.EntryDate,
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		Status:       domain.Posted,
		SourceType:   sourceTypeManual,
		Amount:       debits,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.journalRepo.SaveEntry(ctx, entry, lines, changes); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityJournal,
		EntityID:    entryID,
		Action:      "posted",
		Description: fmt.Sprintf("Journal entry posted: %s", req.Description),
		CreatedAt:   now,
		CreatedBy:   creatorUserID,
	})

	s.LogInfo(ctx, "Journal entry posted", slog.String("entry_id", entryID), slog.String("amount", debits.String()))
	entry.Lines = lines
	return &entry, nil
}

// ReverseEntry creates and posts an offsetting entry for a posted entry,
// dated at the time of reversal, and links the pair.
func (s *journalService) ReverseEntry(ctx context.Context, workplaceID string, entryID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	if original.Status == domain.Reversed {
		return nil, &apperrors.InvalidReversalError{EntryID: entryID, Reason: "entry is already reversed"}
	}
	if original.Status != domain.Posted {
		return nil, &apperrors.InvalidReversalError{EntryID: entryID, Reason: fmt.Sprintf("entry status is %s", original.Status)}
	}
	if original.ReversedEntryID != nil {
		return nil, &apperrors.InvalidReversalError{EntryID: entryID, Reason: "entry is itself a reversal"}
	}

	now := time.Now().UTC()
	if err := s.checkPeriodOpen(ctx, workplaceID, now); err != nil {
		return nil, err
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}

	reversalID := uuid.NewString()
	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		// Swap sides to offset the original posting.
		reversalLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      reversalID,
			AccountID:    line.AccountID,
			DebitAmount:  line.CreditAmount,
			CreditAmount: line.DebitAmount,
			CurrencyCode: line.CurrencyCode,
			Notes:        line.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accountsMap, err := s.fetchAndValidateAccounts(ctx, workplaceID, reversalLines, original.CurrencyCode)
	if err != nil {
		return nil, err
	}

	changes, err := s.balanceChanges(reversalLines, accountsMap)
	if err != nil {
		return nil, err
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		WorkplaceID:     workplaceID,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of: %s", original.Description),
		CurrencyCode:    original.CurrencyCode,
		Status:          domain.Posted,
		ReversedEntryID: &original.EntryID,
		SourceType:      sourceTypeReversal,
		SourceID:        original.EntryID,
		Amount:          original.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveEntry(ctx, reversal, reversalLines, changes); err != nil {
		s.LogError(ctx, err, "Failed to save reversal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}

	if err := s.journalRepo.UpdateEntryStatusAndLinks(ctx, original.EntryID, domain.Reversed, &reversalID, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark entry reversed", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityJournal,
		EntityID:    original.EntryID,
		Action:      "reversed",
		Description: fmt.Sprintf("Journal entry reversed by %s", reversalID),
		CreatedAt:   now,
		CreatedBy:   userID,
	})

	s.LogInfo(ctx, "Journal entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", reversalID))
	reversal.Lines = reversalLines
	return &reversal, nil
}

// GetEntryByID retrieves a journal entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, workplaceID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, workplaceID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of journal entries.
func (s *journalService) ListEntries(ctx context.Context, workplaceID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, workplaceID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	resp := &dto.ListJournalEntriesResponse{NextToken: nextToken}
	for i := range entries {
		if params.IncludeLines {
			lines, err := s.journalRepo.FindLinesByEntryID(ctx, entries[i].EntryID)
			if err != nil {
				return nil, fmt.Errorf("failed to load lines for entry %s: %w", entries[i].EntryID, err)
			}
			entries[i].Lines = lines
		}
		resp.Entries = append(resp.Entries, dto.ToJournalEntryResponse(&entries[i]))
	}
	return resp, nil
}

// ListLinesByAccount retrieves posted lines touching an account.
func (s *journalService) ListLinesByAccount(ctx context.Context, workplaceID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	lines, next, err := s.journalRepo.ListLinesByAccountID(ctx, workplaceID, accountID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list lines for account %s: %w", accountID, err)
	}
	return lines, next, nil
}

// GetAccountBalance retrieves the cached balance of an account for a period.
func (s *journalService) GetAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	balance, err := s.journalRepo.FindAccountBalance(ctx, workplaceID, accountID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance for account %s in %04d-%02d: %w", accountID, year, month, err)
	}
	return balance, nil
}

// RecomputeAccountBalance rebuilds a cached period balance from journal lines.
func (s *journalService) RecomputeAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	balance, err := s.journalRepo.RecomputeAccountBalance(ctx, workplaceID, accountID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute balance for account %s in %04d-%02d: %w", accountID, year, month, err)
	}
	return balance, nil
}

// appendActivity records an audit activity. The posting has already been
// committed, so a failed append is logged and not surfaced to the caller.
func (s *journalService) appendActivity(ctx context.Context, activity domain.Activity) {
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		s.LogError(ctx, err, "Failed to append activity",
			slog.String("entity_id", activity.EntityID))
	}
}
