package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/utils/matching"
)

// duplicateWindow is how far apart two transactions may be dated and still be
// screened as duplicates of each other.
const duplicateWindow = 24 * time.Hour

// ruleMatchConfidence is assigned to rule-driven suggestions; a manual
// confirmation raises confidence to 1.
const ruleMatchConfidence = 0.8

// bankService implements bank feed import and the reconciliation workflow.
type bankService struct {
	BaseService
	bankRepo     portsrepo.BankRepositoryFacade
	activityRepo portsrepo.ActivityRepositoryFacade
	paymentSvc   portssvc.PaymentSvcFacade
}

// NewBankService creates a new BankService.
func NewBankService(bankRepo portsrepo.BankRepositoryFacade, activityRepo portsrepo.ActivityRepositoryFacade, paymentSvc portssvc.PaymentSvcFacade) portssvc.BankSvcFacade {
	return &bankService{
		bankRepo:     bankRepo,
		activityRepo: activityRepo,
		paymentSvc:   paymentSvc,
	}
}

var _ portssvc.BankSvcFacade = (*bankService)(nil)

// ImportTransactions imports a batch of bank transactions, screening each row
// against existing transactions and earlier rows of the same batch for likely
// duplicates. Suspected duplicates are returned unimported unless the request
// forces them in; nothing is ever silently dropped.
func (s *bankService) ImportTransactions(ctx context.Context, workplaceID string, req dto.ImportBankTransactionsRequest, userID string) (*dto.ImportBankTransactionsResponse, error) {
	now := time.Now().UTC()
	resp := &dto.ImportBankTransactionsResponse{}
	var accepted []domain.BankTransaction

	for _, row := range req.Transactions {
		if !row.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
		}

		txn := domain.BankTransaction{
			TransactionID:   uuid.NewString(),
			WorkplaceID:     workplaceID,
			BankAccountID:   req.BankAccountID,
			TransactionDate: row.TransactionDate,
			Amount:          row.Amount,
			Type:            row.Type,
			Description:     row.Description,
			Reference:       row.Reference,
			CurrencyCode:    row.CurrencyCode,
			MatchStatus:     domain.MatchUnmatched,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		if !req.AllowDuplicates {
			existing, err := s.findDuplicate(ctx, workplaceID, txn, accepted)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				candidate := domain.DuplicateCandidate{Incoming: txn, Existing: *existing}
				resp.Duplicates = append(resp.Duplicates, dto.ToDuplicateCandidateResponse(candidate))
				continue
			}
		}
		accepted = append(accepted, txn)
	}

	if len(accepted) > 0 {
		if err := s.bankRepo.SaveTransactions(ctx, accepted); err != nil {
			s.LogError(ctx, err, "Failed to save bank transactions", slog.String("bank_account_id", req.BankAccountID))
			return nil, fmt.Errorf("failed to save bank transactions: %w", err)
		}
	}

	for i := range accepted {
		resp.Imported = append(resp.Imported, dto.ToBankTransactionResponse(&accepted[i]))
	}

	s.LogInfo(ctx, "Bank transactions imported",
		slog.String("bank_account_id", req.BankAccountID),
		slog.Int("imported", len(resp.Imported)),
		slog.Int("duplicates", len(resp.Duplicates)))
	return resp, nil
}

// findDuplicate returns the first stored or already-accepted transaction the
// incoming row appears to duplicate, or nil when none matches.
func (s *bankService) findDuplicate(ctx context.Context, workplaceID string, incoming domain.BankTransaction, batch []domain.BankTransaction) (*domain.BankTransaction, error) {
	nearby, err := s.bankRepo.FindNearbyTransactions(ctx, workplaceID, incoming.BankAccountID, incoming.TransactionDate, duplicateWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to screen for duplicates: %w", err)
	}
	for i := range nearby {
		if matching.IsLikelyDuplicate(incoming, nearby[i]) {
			return &nearby[i], nil
		}
	}
	for i := range batch {
		gap := incoming.TransactionDate.Sub(batch[i].TransactionDate)
		if gap < 0 {
			gap = -gap
		}
		if gap <= duplicateWindow && matching.IsLikelyDuplicate(incoming, batch[i]) {
			return &batch[i], nil
		}
	}
	return nil, nil
}

// GetTransactionByID retrieves a specific bank transaction.
func (s *bankService) GetTransactionByID(ctx context.Context, workplaceID string, transactionID string) (*domain.BankTransaction, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, workplaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions retrieves a paginated list of bank transactions.
func (s *bankService) ListTransactions(ctx context.Context, workplaceID string, params dto.ListBankTransactionsParams) (*dto.ListBankTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	txns, nextToken, err := s.bankRepo.ListTransactions(ctx, workplaceID, params.BankAccountID, params.Status, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}

	resp := &dto.ListBankTransactionsResponse{NextToken: nextToken}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, dto.ToBankTransactionResponse(&txns[i]))
	}
	return resp, nil
}

// SuggestMatches runs the active rules over unmatched transactions. Rules are
// evaluated by priority descending; the first rule whose conditions all hold
// wins and marks the transaction SUGGESTED.
func (s *bankService) SuggestMatches(ctx context.Context, workplaceID string, bankAccountID string, userID string) ([]domain.BankTransaction, error) {
	txns, err := s.bankRepo.ListUnmatched(ctx, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}

	rules, err := s.bankRepo.ListRules(ctx, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matching rules: %w", err)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})

	now := time.Now().UTC()
	var changed []domain.BankTransaction
	for _, txn := range txns {
		if bankAccountID != "" && txn.BankAccountID != bankAccountID {
			continue
		}
		for _, rule := range rules {
			if !rule.IsActive || !matching.RuleMatches(rule, txn) {
				continue
			}

			ruleID := rule.RuleID
			txn.MatchStatus = domain.MatchSuggested
			txn.MatchedRuleID = &ruleID
			txn.MatchedContactID = rule.LinkContactID
			txn.Category = rule.Category
			txn.MatchConfidence = ruleMatchConfidence
			txn.LastUpdatedAt = now
			txn.LastUpdatedBy = userID

			if err := s.bankRepo.UpdateMatch(ctx, txn); err != nil {
				s.LogError(ctx, err, "Failed to store match suggestion", slog.String("transaction_id", txn.TransactionID))
				return nil, fmt.Errorf("failed to store match suggestion: %w", err)
			}
			changed = append(changed, txn)
			break
		}
	}

	s.LogInfo(ctx, "Match suggestions computed", slog.Int("suggested", len(changed)))
	return changed, nil
}

// SetMatchStatus drives a transaction through the match status machine.
func (s *bankService) SetMatchStatus(ctx context.Context, workplaceID string, transactionID string, req dto.SetMatchStatusRequest, userID string) (*domain.BankTransaction, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, workplaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}

	if txn.MatchStatus == req.Status {
		return txn, nil
	}

	if !domain.CanTransitionMatch(txn.MatchStatus, req.Status) {
		allowed := domain.NextMatchStatuses(txn.MatchStatus)
		allowedStrs := make([]string, len(allowed))
		for i, a := range allowed {
			allowedStrs[i] = string(a)
		}
		return nil, &apperrors.InvalidTransitionError{
			Entity:  "bank_transaction",
			From:    string(txn.MatchStatus),
			To:      string(req.Status),
			Allowed: allowedStrs,
		}
	}

	from := txn.MatchStatus
	now := time.Now().UTC()

	switch req.Status {
	case domain.MatchMatched:
		if req.MatchedDocumentID != nil {
			txn.MatchedDocumentID = req.MatchedDocumentID
		}
		if req.MatchedContactID != nil {
			txn.MatchedContactID = req.MatchedContactID
		}
		if txn.MatchedDocumentID == nil && txn.MatchedContactID == nil {
			return nil, fmt.Errorf("%w: confirming a match requires a document or contact", apperrors.ErrValidation)
		}
		txn.MatchConfidence = 1
	case domain.MatchUnmatched:
		txn.MatchedDocumentID = nil
		txn.MatchedContactID = nil
		txn.MatchedRuleID = nil
		txn.Category = ""
		txn.MatchConfidence = 0
	case domain.MatchSuggested:
		txn.MatchedDocumentID = req.MatchedDocumentID
		txn.MatchedContactID = req.MatchedContactID
	}
	txn.MatchStatus = req.Status
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	if err := s.bankRepo.UpdateMatch(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update match status", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update match status: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityBank,
		EntityID:    transactionID,
		Action:      "match_status_changed",
		Description: fmt.Sprintf("Match status: %s -> %s", from, req.Status),
		Diff: map[string]domain.FieldChange{
			"matchStatus": {From: string(from), To: string(req.Status)},
		},
		CreatedAt: now,
		CreatedBy: userID,
	})

	return txn, nil
}

// ResetMatch returns a transaction to UNMATCHED, clearing its match fields.
// MATCHED and EXCLUDED are stable states that only this explicit reset can
// leave. A reconciled transaction cannot be reset.
func (s *bankService) ResetMatch(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.BankTransaction, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, workplaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}

	if txn.IsReconciled {
		return nil, fmt.Errorf("%w: transaction %s is reconciled and cannot be reset", apperrors.ErrConflict, transactionID)
	}
	if txn.MatchStatus == domain.MatchUnmatched {
		return txn, nil
	}

	from := txn.MatchStatus
	now := time.Now().UTC()

	txn.MatchStatus = domain.MatchUnmatched
	txn.MatchedDocumentID = nil
	txn.MatchedContactID = nil
	txn.MatchedRuleID = nil
	txn.Category = ""
	txn.MatchConfidence = 0
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	if err := s.bankRepo.UpdateMatch(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to reset match", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to reset match: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityBank,
		EntityID:    transactionID,
		Action:      "match_reset",
		Description: fmt.Sprintf("Match status: %s -> %s", from, domain.MatchUnmatched),
		Diff: map[string]domain.FieldChange{
			"matchStatus": {From: string(from), To: string(domain.MatchUnmatched)},
		},
		CreatedAt: now,
		CreatedBy: userID,
	})

	return txn, nil
}

// ReconcileTransaction marks a MATCHED transaction as reconciled against the
// bank statement.
func (s *bankService) ReconcileTransaction(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.BankTransaction, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, workplaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}
	if txn.MatchStatus != domain.MatchMatched {
		return nil, &apperrors.InvalidStateError{
			Entity:   "bank_transaction",
			Status:   string(txn.MatchStatus),
			Expected: []string{string(domain.MatchMatched)},
		}
	}
	if txn.IsReconciled {
		return txn, nil
	}

	now := time.Now().UTC()
	txn.IsReconciled = true
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	if err := s.bankRepo.UpdateMatch(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to reconcile transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to reconcile transaction: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityBank,
		EntityID:    transactionID,
		Action:      "reconciled",
		Description: "Transaction reconciled against bank statement",
		CreatedAt:   now,
		CreatedBy:   userID,
	})

	return txn, nil
}

// ConvertToPayment records a payment from a matched bank transaction and
// allocates it to the matched document.
func (s *bankService) ConvertToPayment(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.Payment, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, workplaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}
	if txn.MatchStatus != domain.MatchMatched || txn.MatchedDocumentID == nil {
		return nil, &apperrors.InvalidStateError{
			Entity:   "bank_transaction",
			Status:   string(txn.MatchStatus),
			Expected: []string{string(domain.MatchMatched) + " with a matched document"},
		}
	}

	reference := txn.Reference
	if reference == "" {
		reference = txn.TransactionID
	}
	payment, err := s.paymentSvc.RecordPayment(ctx, workplaceID, dto.RecordPaymentRequest{
		DocumentID:   *txn.MatchedDocumentID,
		Amount:       txn.Amount,
		CurrencyCode: txn.CurrencyCode,
		Method:       "BANK_TRANSFER",
		Reference:    reference,
		PaidAt:       txn.TransactionDate,
		Notes:        txn.Description,
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment from transaction %s: %w", transactionID, err)
	}

	now := time.Now().UTC()
	txn.IsReconciled = true
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID
	if err := s.bankRepo.UpdateMatch(ctx, *txn); err != nil {
		// The payment is committed; surface the inconsistency in the logs
		// rather than failing the caller.
		s.LogError(ctx, err, "Failed to flag converted transaction as reconciled", slog.String("transaction_id", transactionID))
	}

	s.LogInfo(ctx, "Bank transaction converted to payment",
		slog.String("transaction_id", transactionID),
		slog.String("payment_id", payment.PaymentID))
	return payment, nil
}

// ListRules retrieves the matching rules of a workplace.
func (s *bankService) ListRules(ctx context.Context, workplaceID string) ([]domain.MatchingRule, error) {
	rules, err := s.bankRepo.ListRules(ctx, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matching rules: %w", err)
	}
	return rules, nil
}

// CreateRule persists a new matching rule. A rule needs at least one
// condition; an unconstrained rule would match everything or nothing.
func (s *bankService) CreateRule(ctx context.Context, workplaceID string, req dto.CreateMatchingRuleRequest, creatorUserID string) (*domain.MatchingRule, error) {
	if len(req.DescriptionContains) == 0 && req.MinAmount == nil && req.MaxAmount == nil && req.Direction == nil {
		return nil, fmt.Errorf("%w: matching rule needs at least one condition", apperrors.ErrValidation)
	}
	if req.MinAmount != nil && req.MaxAmount != nil && req.MinAmount.GreaterThan(*req.MaxAmount) {
		return nil, fmt.Errorf("%w: minAmount exceeds maxAmount", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rule := domain.MatchingRule{
		RuleID:              uuid.NewString(),
		WorkplaceID:         workplaceID,
		Name:                req.Name,
		Priority:            req.Priority,
		DescriptionContains: req.DescriptionContains,
		MinAmount:           req.MinAmount,
		MaxAmount:           req.MaxAmount,
		Direction:           req.Direction,
		LinkContactID:       req.LinkContactID,
		Category:            req.Category,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.bankRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save matching rule", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to save matching rule: %w", err)
	}

	s.LogInfo(ctx, "Matching rule created", slog.String("rule_id", rule.RuleID), slog.String("name", rule.Name))
	return &rule, nil
}

// DeactivateRule disables a rule without deleting its match history.
func (s *bankService) DeactivateRule(ctx context.Context, workplaceID string, ruleID string, userID string) error {
	now := time.Now().UTC()
	if err := s.bankRepo.DeactivateRule(ctx, workplaceID, ruleID, userID, now); err != nil {
		return fmt.Errorf("failed to deactivate rule %s: %w", ruleID, err)
	}
	return nil
}

func (s *bankService) appendActivity(ctx context.Context, activity domain.Activity) {
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		s.LogError(ctx, err, "Failed to append activity",
			slog.String("entity_id", activity.EntityID))
	}
}
