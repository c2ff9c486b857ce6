package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/utils/accounting"
)

// serialNumberStart is the first serial issued for a fresh (workplace,
// prefix) sequence.
const serialNumberStart = 1000

// defaultPrefixes supplies a display prefix per kind when the caller does
// not pick one.
var defaultPrefixes = map[domain.DocumentKind]string{
	domain.KindInvoice:    "INV",
	domain.KindCreditNote: "CN",
	domain.KindDebitNote:  "DN",
	domain.KindQuotation:  "QUO",
	domain.KindBill:       "BILL",
}

// documentService manages financial documents across all kinds.
type documentService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryWithTx
	activityRepo portsrepo.ActivityRepositoryFacade
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(documentRepo portsrepo.DocumentRepositoryWithTx, activityRepo portsrepo.ActivityRepositoryFacade) portssvc.DocumentSvcFacade {
	return &documentService{
		documentRepo: documentRepo,
		activityRepo: activityRepo,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// nextSerialNumber issues the next serial within the (workplace, kind,
// prefix) sequence: max existing numeric serial plus one.
func (s *documentService) nextSerialNumber(ctx context.Context, workplaceID string, kind domain.DocumentKind, prefix string) (string, error) {
	serials, err := s.documentRepo.ListSerialNumbers(ctx, workplaceID, kind, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to list serial numbers: %w", err)
	}

	max := int64(serialNumberStart - 1)
	for _, serial := range serials {
		n, err := strconv.ParseInt(serial, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// buildItems converts request line items to domain items and computes their
// derived amounts.
func buildItems(reqs []dto.LineItemRequest) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(reqs))
	for i, r := range reqs {
		if r.Quantity.IsNegative() || r.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: quantity and unit price must be non-negative for item %q", apperrors.ErrValidation, r.Name)
		}
		if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: discount percent must be between 0 and 100 for item %q", apperrors.ErrValidation, r.Name)
		}
		items[i] = domain.LineItem{
			LineItemID:      uuid.NewString(),
			Name:            r.Name,
			Quantity:        r.Quantity,
			UnitPrice:       r.UnitPrice,
			DiscountPercent: r.DiscountPercent,
		}
	}
	return items, nil
}

// buildAdjustments converts request adjustments to domain adjustments.
func buildAdjustments(reqs []dto.BillingAdjustmentRequest) []domain.BillingAdjustment {
	adjustments := make([]domain.BillingAdjustment, len(reqs))
	for i, r := range reqs {
		adjustments[i] = domain.BillingAdjustment{
			AdjustmentID: uuid.NewString(),
			Name:         r.Name,
			Type:         r.Type,
			Value:        r.Value,
		}
	}
	return adjustments
}

// CreateDocument creates a new document in DRAFT with derived totals and an
// assigned serial number.
func (s *documentService) CreateDocument(ctx context.Context, workplaceID string, req dto.CreateDocumentRequest, creatorUserID string) (*domain.FinancialDocument, error) {
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	adjustments := buildAdjustments(req.Adjustments)

	prefix := req.Prefix
	if prefix == "" {
		prefix = defaultPrefixes[req.Kind]
	}

	serial, err := s.nextSerialNumber(ctx, workplaceID, req.Kind, prefix)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := domain.FinancialDocument{
		DocumentID:   uuid.NewString(),
		WorkplaceID:  workplaceID,
		Kind:         req.Kind,
		Status:       domain.InitialDocumentStatus(req.Kind),
		ContactID:    req.ContactID,
		CurrencyCode: req.CurrencyCode,
		Prefix:       prefix,
		SerialNumber: serial,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
		Metadata:     req.Metadata,
		Items:        items,
		Adjustments:  adjustments,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	doc.DocumentTotals = accounting.ComputeTotals(doc.Items, doc.Adjustments, doc.AmountPaid, doc.CurrencyCode)

	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		s.LogError(ctx, err, "Failed to save document", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityDocument,
		EntityID:    doc.DocumentID,
		Action:      "created",
		Description: fmt.Sprintf("%s %s created", doc.Kind, doc.Number()),
		CreatedAt:   now,
		CreatedBy:   creatorUserID,
	})

	s.LogInfo(ctx, "Document created", slog.String("document_id", doc.DocumentID), slog.String("number", doc.Number()))
	return &doc, nil
}

// GetDocumentByID retrieves a document with items and adjustments.
func (s *documentService) GetDocumentByID(ctx context.Context, workplaceID string, documentID string) (*domain.FinancialDocument, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	return doc, nil
}

// ListDocuments retrieves a paginated, filtered list of documents.
func (s *documentService) ListDocuments(ctx context.Context, workplaceID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := portsrepo.DocumentListFilter{
		Kind:      params.Kind,
		Status:    params.Status,
		ContactID: params.ContactID,
	}
	docs, nextToken, err := s.documentRepo.ListDocuments(ctx, workplaceID, filter, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	resp := &dto.ListDocumentsResponse{NextToken: nextToken}
	for i := range docs {
		resp.Documents = append(resp.Documents, dto.ToDocumentResponse(&docs[i]))
	}
	return resp, nil
}

// UpdateDocument updates a document and recomputes its totals. DRAFT
// documents are fully editable; afterwards only the allowlisted fields may
// change, and terminal documents reject every update.
func (s *documentService) UpdateDocument(ctx context.Context, workplaceID string, documentID string, req dto.UpdateDocumentRequest, requestingUserID string) (*domain.FinancialDocument, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	if domain.IsTerminalDocumentStatus(doc.Kind, doc.Status) {
		return nil, &apperrors.TerminalStateError{
			Entity: string(doc.Kind),
			Status: string(doc.Status),
		}
	}

	diff := make(map[string]domain.FieldChange)
	editable := domain.IsEditableDocumentStatus(doc.Status)
	replaceItems := false

	// Reject locked fields up front so the caller sees all violations at once.
	if !editable {
		var locked []string
		if req.ContactID != nil && *req.ContactID != doc.ContactID {
			locked = append(locked, "contactID")
		}
		if req.IssueDate != nil && !req.IssueDate.Equal(doc.IssueDate) {
			locked = append(locked, "issueDate")
		}
		if len(req.Items) > 0 {
			locked = append(locked, "items")
		}
		if len(req.Adjustments) > 0 {
			locked = append(locked, "adjustments")
		}
		if len(locked) > 0 {
			return nil, &apperrors.LockedFieldError{Status: string(doc.Status), Fields: locked}
		}
	}

	if editable {
		if req.ContactID != nil && *req.ContactID != doc.ContactID {
			diff["contactID"] = domain.FieldChange{From: doc.ContactID, To: *req.ContactID}
			doc.ContactID = *req.ContactID
		}
		if req.IssueDate != nil && !req.IssueDate.Equal(doc.IssueDate) {
			diff["issueDate"] = domain.FieldChange{From: doc.IssueDate, To: *req.IssueDate}
			doc.IssueDate = *req.IssueDate
		}
		if len(req.Items) > 0 {
			items, err := buildItems(req.Items)
			if err != nil {
				return nil, err
			}
			doc.Items = items
			diff["items"] = domain.FieldChange{From: nil, To: len(items)}
			replaceItems = true
		}
		if req.Adjustments != nil {
			doc.Adjustments = buildAdjustments(req.Adjustments)
			diff["adjustments"] = domain.FieldChange{From: nil, To: len(doc.Adjustments)}
			replaceItems = true
		}
	}

	// Fields updatable in any non-terminal status.
	if req.DueDate != nil {
		diff["dueDate"] = domain.FieldChange{From: doc.DueDate, To: *req.DueDate}
		doc.DueDate = req.DueDate
	}
	if req.Notes != nil && *req.Notes != doc.Notes {
		diff["notes"] = domain.FieldChange{From: doc.Notes, To: *req.Notes}
		doc.Notes = *req.Notes
	}
	if req.Metadata != nil {
		diff["metadata"] = domain.FieldChange{From: doc.Metadata, To: req.Metadata}
		doc.Metadata = req.Metadata
	}

	doc.DocumentTotals = accounting.ComputeTotals(doc.Items, doc.Adjustments, doc.AmountPaid, doc.CurrencyCode)

	now := time.Now().UTC()
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = requestingUserID

	if err := s.documentRepo.UpdateDocument(ctx, *doc, replaceItems); err != nil {
		s.LogError(ctx, err, "Failed to update document", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if len(diff) > 0 {
		s.appendActivity(ctx, domain.Activity{
			ActivityID:  uuid.NewString(),
			WorkplaceID: workplaceID,
			Entity:      domain.ActivityDocument,
			EntityID:    doc.DocumentID,
			Action:      "updated",
			Description: fmt.Sprintf("%s %s updated", doc.Kind, doc.Number()),
			Diff:        diff,
			CreatedAt:   now,
			CreatedBy:   requestingUserID,
		})
	}

	// A status change piggybacked on an update goes through the same
	// transition checks as a bare one.
	if req.Status != nil && *req.Status != doc.Status {
		return s.SetDocumentStatus(ctx, workplaceID, documentID, dto.SetDocumentStatusRequest{Status: *req.Status}, requestingUserID)
	}

	return doc, nil
}

// SetDocumentStatus drives the document through its lifecycle.
func (s *documentService) SetDocumentStatus(ctx context.Context, workplaceID string, documentID string, req dto.SetDocumentStatusRequest, userID string) (*domain.FinancialDocument, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	if !domain.IsKnownDocumentStatus(doc.Kind, req.Status) {
		return nil, fmt.Errorf("%w: status %s is not valid for %s", apperrors.ErrValidation, req.Status, doc.Kind)
	}

	if doc.Status == req.Status {
		return doc, nil
	}

	if !domain.CanTransitionDocument(doc.Kind, doc.Status, req.Status) {
		allowed := domain.NextDocumentStatuses(doc.Kind, doc.Status)
		allowedStrs := make([]string, len(allowed))
		for i, a := range allowed {
			allowedStrs[i] = string(a)
		}
		return nil, &apperrors.InvalidTransitionError{
			Entity:  string(doc.Kind),
			From:    string(doc.Status),
			To:      string(req.Status),
			Allowed: allowedStrs,
		}
	}

	// Voiding is only possible while nothing has been collected against the
	// document; reversal of the payments must come first.
	if req.Status == domain.DocVoid && doc.AmountPaid.IsPositive() {
		return nil, &apperrors.InvalidStateError{
			Entity:   string(doc.Kind),
			Status:   string(doc.Status),
			Expected: []string{"no recorded payments"},
		}
	}

	now := time.Now().UTC()
	var settledAt *time.Time
	if domain.IsSettledDocumentStatus(req.Status) {
		settledAt = &now
	}

	if err := s.documentRepo.UpdateDocumentStatus(ctx, workplaceID, documentID, req.Status, settledAt, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update document status", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityDocument,
		EntityID:    documentID,
		Action:      "status_changed",
		Description: fmt.Sprintf("%s %s: %s -> %s", doc.Kind, doc.Number(), doc.Status, req.Status),
		Diff: map[string]domain.FieldChange{
			"status": {From: string(doc.Status), To: string(req.Status)},
		},
		CreatedAt: now,
		CreatedBy: userID,
	})

	s.LogInfo(ctx, "Document status changed",
		slog.String("document_id", documentID),
		slog.String("from", string(doc.Status)),
		slog.String("to", string(req.Status)))

	doc.Status = req.Status
	doc.SettledAt = settledAt
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	return doc, nil
}

// DeleteDocument soft-deletes a document. Settled documents cannot be
// deleted; the remedy for a settled document is a correcting credit or
// debit note.
func (s *documentService) DeleteDocument(ctx context.Context, workplaceID string, documentID string, userID string) error {
	doc, err := s.documentRepo.FindDocumentByID(ctx, workplaceID, documentID)
	if err != nil {
		return fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	if domain.IsSettledDocumentStatus(doc.Status) {
		return &apperrors.TerminalStateError{
			Entity: string(doc.Kind),
			Status: string(doc.Status),
		}
	}

	now := time.Now().UTC()
	if err := s.documentRepo.SoftDeleteDocument(ctx, workplaceID, documentID, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to delete document", slog.String("document_id", documentID))
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.appendActivity(ctx, domain.Activity{
		ActivityID:  uuid.NewString(),
		WorkplaceID: workplaceID,
		Entity:      domain.ActivityDocument,
		EntityID:    documentID,
		Action:      "deleted",
		Description: fmt.Sprintf("%s %s deleted", doc.Kind, doc.Number()),
		CreatedAt:   now,
		CreatedBy:   userID,
	})

	s.LogInfo(ctx, "Document deleted", slog.String("document_id", documentID))
	return nil
}

func (s *documentService) appendActivity(ctx context.Context, activity domain.Activity) {
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		s.LogError(ctx, err, "Failed to append activity",
			slog.String("entity_id", activity.EntityID))
	}
}
