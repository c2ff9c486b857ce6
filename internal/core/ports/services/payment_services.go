package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// PaymentReaderSvc defines read operations for payments
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a payment with its allocations.
	GetPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves a paginated list of payments in a workplace.
	ListPayments(ctx context.Context, workplaceID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// PaymentWriterSvc defines write operations for payments
type PaymentWriterSvc interface {
	// RecordPayment records a payment and applies its allocations to the
	// target documents atomically. Documents that become fully paid are
	// settled in the same transaction, and a ledger entry is posted when the
	// request names the cash and control accounts.
	RecordPayment(ctx context.Context, workplaceID string, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, error)

	// AllocatePayment applies additional allocations from an existing payment
	// to further documents, bounded by the payment's unallocated amount.
	AllocatePayment(ctx context.Context, workplaceID string, paymentID string, req dto.AllocatePaymentRequest, userID string) (*domain.Payment, error)

	// ReversePayment reverses a completed payment with offsetting records,
	// restoring the paid amounts of every allocated document.
	ReversePayment(ctx context.Context, workplaceID string, paymentID string, req dto.ReversePaymentRequest, userID string) (*domain.Payment, error)
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
