package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stablegate/stablegate.go/common"
	"github.com/stablegate/stablegate.go/db/models"
	"github.com/uptrace/bun"
)

// MemoryInvoiceStore is an in-memory InvoiceStore honoring the same
// contracts as the durable one, including the pending pay amount uniqueness
// guard. Used in tests and as a reference implementation of the store
// semantics.
type MemoryInvoiceStore struct {
	mu       sync.Mutex
	nextID   int64
	invoices []*models.Invoice
}

func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{}
}

func (s *MemoryInvoiceStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invoices {
		if existing.State == common.InvoiceStatePending && existing.PayAmount.Equal(invoice.PayAmount) {
			return ErrDuplicatePayAmount
		}
	}
	s.nextID++
	invoice.ID = s.nextID
	invoice.CreatedAt = time.Now()
	stored := *invoice
	s.invoices = append(s.invoices, &stored)
	return nil
}

func (s *MemoryInvoiceStore) FindInvoice(ctx context.Context, publicID string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, invoice := range s.invoices {
		if invoice.PublicID == publicID {
			found := *invoice
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryInvoiceStore) ListPendingInvoices(ctx context.Context) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := []models.Invoice{}
	for _, invoice := range s.invoices {
		if invoice.State == common.InvoiceStatePending {
			pending = append(pending, *invoice)
		}
	}
	return pending, nil
}

func (s *MemoryInvoiceStore) ConfirmInvoice(ctx context.Context, publicID string, txHash string) (*models.Invoice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, invoice := range s.invoices {
		if invoice.PublicID != publicID {
			continue
		}
		if invoice.State != common.InvoiceStatePending {
			found := *invoice
			return &found, false, nil
		}
		invoice.State = common.InvoiceStateConfirmed
		invoice.TxHash = txHash
		invoice.ConfirmedAt = bun.NullTime{Time: time.Now()}
		invoice.UpdatedAt = bun.NullTime{Time: time.Now()}
		found := *invoice
		return &found, true, nil
	}
	return nil, false, ErrNotFound
}

// MemoryTransferLedger is the in-memory TransferLedger counterpart.
type MemoryTransferLedger struct {
	mu     sync.Mutex
	seenAt map[string]time.Time
}

func NewMemoryTransferLedger() *MemoryTransferLedger {
	return &MemoryTransferLedger{seenAt: make(map[string]time.Time)}
}

func (l *MemoryTransferLedger) MarkTransferProcessed(ctx context.Context, txID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	normalized := strings.ToLower(txID)
	if _, seen := l.seenAt[normalized]; seen {
		return false, nil
	}
	l.seenAt[normalized] = time.Now()
	return true, nil
}

func (l *MemoryTransferLedger) UnmarkTransferProcessed(ctx context.Context, txID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seenAt, strings.ToLower(txID))
	return nil
}

func (l *MemoryTransferLedger) PruneProcessedTransfers(ctx context.Context, olderThan time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for txID, seen := range l.seenAt {
		if seen.Before(olderThan) {
			delete(l.seenAt, txID)
		}
	}
	return nil
}

var _ InvoiceStore = (*MemoryInvoiceStore)(nil)
var _ TransferLedger = (*MemoryTransferLedger)(nil)
