package service

import (
	"context"
	"errors"
	"time"

	"github.com/stablegate/stablegate.go/db/models"
)

var (
	// ErrNotFound : no invoice with the given id
	ErrNotFound = errors.New("invoice not found")
	// ErrDuplicatePayAmount : inserting the invoice would give two pending
	// invoices the same pay amount. Raised by the store's uniqueness
	// constraint, the authoritative collision guard behind the allocator.
	ErrDuplicatePayAmount = errors.New("duplicate pay amount for pending invoice")
	// ErrCapacityExhausted : every tag grid slot is occupied by a pending
	// invoice. Retryable once an invoice confirms.
	ErrCapacityExhausted = errors.New("tag capacity exhausted")
)

// InvoiceStore is the source of truth for invoices and the only owner of
// state transitions. Invoices are never deleted: pending -> confirmed is the
// whole lifecycle.
type InvoiceStore interface {
	// CreateInvoice persists a new pending invoice, returning
	// ErrDuplicatePayAmount if the pending pay amount uniqueness contract
	// would be violated.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	// FindInvoice returns the invoice with the given public id or ErrNotFound.
	FindInvoice(ctx context.Context, publicID string) (*models.Invoice, error)
	// ListPendingInvoices returns all pending invoices in insertion order.
	ListPendingInvoices(ctx context.Context) ([]models.Invoice, error)
	// ConfirmInvoice transitions the invoice to confirmed and records the
	// transaction hash, but only if it is still pending. The bool reports
	// whether a transition actually happened; a repeated confirm is a no-op
	// and must not overwrite the recorded hash.
	ConfirmInvoice(ctx context.Context, publicID string, txHash string) (*models.Invoice, bool, error)
}

// TransferLedger is the durable record of transaction ids the reconciliation
// loop has already processed.
type TransferLedger interface {
	// MarkTransferProcessed atomically checks-and-inserts the (lower-cased)
	// transaction id and reports whether it was newly recorded.
	MarkTransferProcessed(ctx context.Context, txID string) (bool, error)
	// UnmarkTransferProcessed removes the record for the transaction id.
	// Compensates a mark whose follow-up work failed, so the transfer is
	// picked up again on the next cycle.
	UnmarkTransferProcessed(ctx context.Context, txID string) error
	// PruneProcessedTransfers deletes records first seen before olderThan.
	PruneProcessedTransfers(ctx context.Context, olderThan time.Time) error
}
