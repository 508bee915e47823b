package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/stablegate/stablegate.go/common"
	"github.com/stablegate/stablegate.go/db/models"
	"github.com/stablegate/stablegate.go/lib/service"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const pgUniqueViolation = "23505"

// InvoiceStore is the Postgres-backed invoice store. The partial unique
// index on pending pay amounts makes the database the authoritative guard
// for the uniqueness contract, not just an advisory one.
type InvoiceStore struct {
	DB *bun.DB
}

func NewInvoiceStore(db *bun.DB) *InvoiceStore {
	return &InvoiceStore{DB: db}
}

func (s *InvoiceStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	_, err := s.DB.NewInsert().Model(invoice).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return service.ErrDuplicatePayAmount
	}
	return err
}

func (s *InvoiceStore) FindInvoice(ctx context.Context, publicID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.NewSelect().Model(&invoice).Where("public_id = ?", publicID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *InvoiceStore) ListPendingInvoices(ctx context.Context) ([]models.Invoice, error) {
	pending := []models.Invoice{}
	err := s.DB.NewSelect().Model(&pending).Where("state = ?", common.InvoiceStatePending).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *InvoiceStore) ConfirmInvoice(ctx context.Context, publicID string, txHash string) (*models.Invoice, bool, error) {
	// conditional transition: only a still-pending invoice is touched, so a
	// re-derived match across overlapping polls is a harmless no-op and the
	// recorded hash is written exactly once
	res, err := s.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("state = ?", common.InvoiceStateConfirmed).
		Set("tx_hash = ?", txHash).
		Set("confirmed_at = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("public_id = ? AND state = ?", publicID, common.InvoiceStatePending).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	invoice, err := s.FindInvoice(ctx, publicID)
	if err != nil {
		return nil, false, err
	}
	return invoice, rows == 1, nil
}

// TransferLedger is the Postgres-backed deduplication ledger.
type TransferLedger struct {
	DB *bun.DB
}

func NewTransferLedger(db *bun.DB) *TransferLedger {
	return &TransferLedger{DB: db}
}

func (l *TransferLedger) MarkTransferProcessed(ctx context.Context, txID string) (bool, error) {
	record := models.ProcessedTransfer{
		TxID:   strings.ToLower(txID),
		SeenAt: time.Now(),
	}
	res, err := l.DB.NewInsert().Model(&record).On("CONFLICT (tx_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (l *TransferLedger) UnmarkTransferProcessed(ctx context.Context, txID string) error {
	_, err := l.DB.NewDelete().Model((*models.ProcessedTransfer)(nil)).Where("tx_id = ?", strings.ToLower(txID)).Exec(ctx)
	return err
}

func (l *TransferLedger) PruneProcessedTransfers(ctx context.Context, olderThan time.Time) error {
	_, err := l.DB.NewDelete().Model((*models.ProcessedTransfer)(nil)).Where("seen_at < ?", olderThan).Exec(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return false
}

var _ service.InvoiceStore = (*InvoiceStore)(nil)
var _ service.TransferLedger = (*TransferLedger)(nil)
