package services

import (
	"context"
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

// paymentService records payments and applies them to documents.
type paymentService struct {
	BaseService
	paymentRepo  portsrepo.PaymentRepositoryWithTx
	documentRepo portsrepo.DocumentRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryWithTx
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryWithTx, documentRepo portsrepo.DocumentRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo:  paymentRepo,
		documentRepo: documentRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// validatePayable checks that a document can accept a payment of the given
// amount. The repository re-validates under a row lock before applying.
func validatePayable(doc *domain.FinancialDocument, amount decimal.Decimal, currencyCode string) error {
	if !domain.CanReceivePayment(doc.Kind, doc.Status) {
		expected := domain.PayableStatuses(doc.Kind)
		expectedStrs := make([]string, len(expected))
		for i, st := range expected {
			expectedStrs[i] = string(st)
		}
		return &apperrors.InvalidStateError{
			Entity:   string(doc.Kind),
			Status:   string(doc.Status),
			Expected: expectedStrs,
		}
	}
	if doc.CurrencyCode != currencyCode {
		return fmt.Errorf("%w: payment currency %s does not match document currency %s", apperrors.ErrValidation, currencyCode, doc.CurrencyCode)
	}
	if amount.GreaterThan(doc.AmountDue) {
		return fmt.Errorf("%w: amount %s exceeds amount due %s on document %s", apperrors.ErrValidation, amount.String(), doc.AmountDue.String(), doc.DocumentID)
	}
	return nil
}

// buildPosting assembles the optional double-entry posting recorded together
// with a payment: cash against the receivable or payable control account.
func (s *paymentService) buildPosting(ctx context.Context, workplaceID string, payment domain.Payment, cashAccountID, controlAccountID string, now time.Time) (*portsrepo.LedgerPosting, error) {
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, workplaceID, []string{cashAccountID, controlAccountID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posting accounts: %w", err)
	}

	for _, id := range []string{cashAccountID, controlAccountID} {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("posting account %s: %w", id, apperrors.ErrNotFound)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.CurrencyCode != payment.CurrencyCode {
			return nil, fmt.Errorf("%w: account currency %s does not match payment currency %s", apperrors.ErrValidation, acc.CurrencyCode, payment.CurrencyCode)
		}
	}

	// Receiving money debits cash and credits the control account; paying out
	// runs the other way.
	debitAccountID, creditAccountID := cashAccountID, controlAccountID
	if payment.PaymentType == domain.PaymentPayable {
		debitAccountID, creditAccountID = controlAccountID, cashAccountID
	}

	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     payment.CreatedBy,
		LastUpdatedAt: now,
		LastUpdatedBy: payment.CreatedBy,
	}
	lines := []domain.JournalLine{
		{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    debitAccountID,
			DebitAmount:  payment.Amount,
			CreditAmount: decimal.Zero,
			CurrencyCode: payment.CurrencyCode,
			AuditFields:  audit,
		},
		{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    creditAccountID,
			DebitAmount:  decimal.Zero,
			CreditAmount: payment.Amount,
			CurrencyCode: payment.CurrencyCode,
			AuditFields:  audit,
		},
	}

	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		acc := accountsMap[line.AccountID]
		signed, err := accounting.CalculateSignedAmount(line, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance change: %w", err)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}

	entry := domain.JournalEntry{
		EntryID:      entryID,
		WorkplaceID:  workplaceID,
		EntryDate:    payment.PaidAt,
		Description:  fmt.Sprintf("Payment %s (%s)", payment.Reference, payment.Method),
		CurrencyCode: payment.CurrencyCode,
		Status:       domain.Posted,
		SourceType:   sourceTypePayment,
		SourceID:     payment.PaymentID,
		Amount:       payment.Amount,
		AuditFields:  audit,
	}

	return &portsrepo.LedgerPosting{Entry: entry, Lines: lines, BalanceChanges: changes}, nil
}

// RecordPayment records a payment against one document. Allocation, document
// amount updates, optional ledger posting and activity records are committed
// in a single transaction by the repository, which re-validates the document
// under a row lock.
func (s *paymentService) RecordPayment(ctx context.Context, workplaceID string, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if req.WithholdingTaxRate.IsNegative() || req.WithholdingTaxRate.GreaterThanOrEqual(hundred) {
		return nil, fmt.Errorf("%w: withholding tax rate must be between 0 and 100", apperrors.ErrValidation)
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", req.DocumentID, err)
	}
	if err := validatePayable(doc, req.Amount, req.CurrencyCode); err != nil {
		return nil, err
	}

	paymentType := domain.PaymentReceivable
	if doc.Kind == domain.KindBill {
		paymentType = domain.PaymentPayable
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:          uuid.NewString(),
		WorkplaceID:        workplaceID,
		PaymentType:        paymentType,
		Amount:             req.Amount,
		CurrencyCode:       req.CurrencyCode,
		Method:             req.Method,
		Reference:          req.Reference,
		Notes:              req.Notes,
		WithholdingTaxRate: req.WithholdingTaxRate,
		PaidAt:             req.PaidAt,
		Status:             domain.PaymentCompleted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.WithholdingTaxRate.IsPositive() {
		payment.WithholdingTaxAmount = accounting.RoundMinor(
			req.Amount.Mul(req.WithholdingTaxRate).Div(hundred), req.CurrencyCode)
	}

	allocations := []domain.PaymentAllocation{{
		AllocationID:    uuid.NewString(),
		PaymentID:       payment.PaymentID,
		DocumentID:      doc.DocumentID,
		AllocatedAmount: req.Amount,
		AuditFields:     payment.AuditFields,
	}}

	var posting *portsrepo.LedgerPosting
	if req.CashAccountID != "" && req.ControlAccountID != "" {
		posting, err = s.buildPosting(ctx, workplaceID, payment, req.CashAccountID, req.ControlAccountID, now)
		if err != nil {
			return nil, err
		}
	}

	activities := []domain.Activity{
		{
			ActivityID:  uuid.NewString(),
			WorkplaceID: workplaceID,
			Entity:      domain.ActivityPayment,
			EntityID:    payment.PaymentID,
			Action:      "created",
			Description: fmt.Sprintf("Payment of %s %s recorded via %s", req.Amount.String(), req.CurrencyCode, req.Method),
			CreatedAt:   now,
			CreatedBy:   creatorUserID,
		},
		{
			ActivityID:  uuid.NewString(),
			WorkplaceID: workplaceID,
			Entity:      domain.ActivityDocument,
			EntityID:    doc.DocumentID,
			Action:      "payment_received",
			Description: fmt.Sprintf("Payment of %s %s applied to %s %s", req.Amount.String(), req.CurrencyCode, doc.Kind, doc.Number()),
			Diff: map[string]domain.FieldChange{
				"amountPaid": {From: doc.AmountPaid.String(), To: doc.AmountPaid.Add(req.Amount).String()},
			},
			CreatedAt: now,
			CreatedBy: creatorUserID,
		},
	}

	if err := s.paymentRepo.RecordPayment(ctx, payment, allocations, posting, activities); err != nil {
		s.LogError(ctx, err, "Failed to record payment", slog.String("document_id", req.DocumentID))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("document_id", doc.DocumentID),
		slog.String("amount", req.Amount.String()))

	payment.Allocations = allocations
	return &payment, nil
}

// GetPaymentByID retrieves a payment with its allocations.
func (s *paymentService) GetPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, workplaceID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// ListPayments retrieves a paginated list of payments.
func (s *paymentService) ListPayments(ctx context.Context, workplaceID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	payments, nextToken, err := s.paymentRepo.ListPayments(ctx, workplaceID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	resp := &dto.ListPaymentsResponse{NextToken: nextToken}
	for i := range payments {
		resp.Payments = append(resp.Payments, dto.ToPaymentResponse(&payments[i]))
	}
	return resp, nil
}

// AllocatePayment applies additional allocations from an existing payment to
// further documents, bounded by the payment's unallocated remainder.
func (s *paymentService) AllocatePayment(ctx context.Context, workplaceID string, paymentID string, req dto.AllocatePaymentRequest, userID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, workplaceID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentCompleted {
		return nil, &apperrors.InvalidStateError{
			Entity:   "payment",
			Status:   string(payment.Status),
			Expected: []string{string(domain.PaymentCompleted)},
		}
	}
	if payment.ReversedPaymentID != nil {
		return nil, fmt.Errorf("%w: reversal payments cannot be allocated", apperrors.ErrConflict)
	}

	docIDs := make([]string, len(req.Allocations))
	requested := decimal.Zero
	for i, alloc := range req.Allocations {
		if !alloc.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation amount must be positive", apperrors.ErrValidation)
		}
		docIDs[i] = alloc.DocumentID
		requested = requested.Add(alloc.Amount)
	}
	if len(uniqueStrings(docIDs)) != len(docIDs) {
		return nil, fmt.Errorf("%w: duplicate document in allocation request", apperrors.ErrValidation)
	}

	if requested.GreaterThan(payment.UnallocatedAmount()) {
		return nil, &apperrors.OverAllocationError{
			PaymentAmount: payment.Amount,
			Allocated:     payment.AllocatedTotal().Add(requested),
		}
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	allocations := make([]domain.PaymentAllocation, len(req.Allocations))
	activities := make([]domain.Activity, 0, len(req.Allocations))
	for i, alloc := range req.Allocations {
		doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, alloc.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to find document %s: %w", alloc.DocumentID, err)
		}
		if err := validatePayable(doc, alloc.Amount, payment.CurrencyCode); err != nil {
			return nil, err
		}

		allocations[i] = domain.PaymentAllocation{
			AllocationID:    uuid.NewString(),
			PaymentID:       paymentID,
			DocumentID:      alloc.DocumentID,
			AllocatedAmount: alloc.Amount,
			AuditFields:     audit,
		}
		activities = append(activities, domain.Activity{
			ActivityID:  uuid.NewString(),
			WorkplaceID: workplaceID,
			Entity:      domain.ActivityDocument,
			EntityID:    alloc.DocumentID,
			Action:      "payment_received",
			Description: fmt.Sprintf("Payment of %s %s applied to %s %s", alloc.Amount.String(), payment.CurrencyCode, doc.Kind, doc.Number()),
			CreatedAt:   now,
			CreatedBy:   userID,
		})
	}

	if err := s.paymentRepo.AddAllocations(ctx, paymentID, workplaceID, allocations, activities); err != nil {
		s.LogError(ctx, err, "Failed to add allocations", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to add allocations: %w", err)
	}

	s.LogInfo(ctx, "Payment allocated", slog.String("payment_id", paymentID), slog.String("amount", requested.String()))
	payment.Allocations = append(payment.Allocations, allocations...)
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID
	return payment, nil
}

// ReversePayment reverses a completed payment by writing an offsetting
// payment record and restoring the paid amounts of allocated documents. The
// original record stays untouched except for its status.
func (s *paymentService) ReversePayment(ctx context.Context, workplaceID string, paymentID string, req dto.ReversePaymentRequest, userID string) (*domain.Payment, error) {
	original, err := s.paymentRepo.FindPaymentByID(ctx, workplaceID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if original.ReversedPaymentID != nil {
		return nil, fmt.Errorf("%w: payment %s is itself a reversal", apperrors.ErrConflict, paymentID)
	}
	if original.Status != domain.PaymentCompleted {
		return nil, &apperrors.InvalidStateError{
			Entity:   "payment",
			Status:   string(original.Status),
			Expected: []string{string(domain.PaymentCompleted)},
		}
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	reversal := domain.Payment{
		PaymentID:         uuid.NewString(),
		WorkplaceID:       workplaceID,
		PaymentType:       original.PaymentType,
		Amount:            original.Amount.Neg(),
		CurrencyCode:      original.CurrencyCode,
		Method:            original.Method,
		Reference:         original.Reference,
		Notes:             req.Reason,
		PaidAt:            now,
		Status:            domain.PaymentCompleted,
		ReversedPaymentID: &original.PaymentID,
		AuditFields:       audit,
	}

	reversalAllocations := make([]domain.PaymentAllocation, len(original.Allocations))
	activities := []domain.Activity{{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityPayment,
		EntityID:    original.PaymentID,
		Action:      "reversed",
		Description: fmt.Sprintf("Payment reversed: %s", req.Reason),
		CreatedAt:   now,
		CreatedBy:   userID,
	}}
	for i, alloc := range original.Allocations {
		reversalAllocations[i] = domain.PaymentAllocation{
			AllocationID:    uuid.NewString(),
			PaymentID:       reversal.PaymentID,
			DocumentID:      alloc.DocumentID,
			AllocatedAmount: alloc.AllocatedAmount.Neg(),
			AuditFields:     audit,
		}
		activities = append(activities, domain.Activity{
			ActivityID:  uuid.NewString(),
			WorkplaceID: workplaceID,
			Entity:      domain.ActivityDocument,
			EntityID:    alloc.DocumentID,
			Action:      "payment_reversed",
			Description: fmt.Sprintf("Payment of %s %s reversed", alloc.AllocatedAmount.String(), original.CurrencyCode),
			CreatedAt:   now,
			CreatedBy:   userID,
		})
	}

	if err := s.paymentRepo.ReversePayment(ctx, original.PaymentID, domain.PaymentRefunded, reversal, reversalAllocations, activities); err != nil {
		s.LogError(ctx, err, "Failed to reverse payment", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to reverse payment: %w", err)
	}

	s.LogInfo(ctx, "Payment reversed", slog.String("payment_id", paymentID), slog.String("reversal_id", reversal.PaymentID))
	reversal.Allocations = reversalAllocations
	return &reversal, nil
}
