package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/common"
	"github.com/stablegate/stablegate.go/db/models"
)

// ValidateAmount rejects non-positive amounts and amounts with more
// fractional digits than the gateway's fixed precision.
func (svc *GatewayService) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if !amount.Round(svc.Config.AmountPrecision).Equal(amount) {
		return fmt.Errorf("amount %s exceeds %d fractional digits", amount, svc.Config.AmountPrecision)
	}
	return nil
}

// AddInvoice allocates a free tag and persists a new pending invoice whose
// pay amount is the requested amount plus the tag.
//
// Uniqueness holds on pay amounts, not tags: two pending invoices for
// different requested amounts may share a tag, and two different tags can
// collide on the same pay amount. The allocator therefore excludes every
// offset whose resulting pay amount equals a pending one (offsets off the
// grid simply never match a slot).
//
// Reading the pending set and inserting are not atomic: a concurrent
// creation can win the same pay amount, in which case the store's
// uniqueness constraint rejects the insert and the next attempt reallocates
// against the refreshed pending set. Capacity exhaustion is surfaced to the
// caller as retryable-later.
func (svc *GatewayService) AddInvoice(ctx context.Context, amount decimal.Decimal) (*models.Invoice, error) {
	if err := svc.ValidateAmount(amount); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < svc.Config.CreateRetries; attempt++ {
		pending, err := svc.Invoices.ListPendingInvoices(ctx)
		if err != nil {
			return nil, err
		}
		used := make([]decimal.Decimal, len(pending))
		for i, invoice := range pending {
			used[i] = invoice.PayAmount.Sub(amount)
		}
		tag, err := NextTag(svc.Config.TagStep.Decimal, svc.Config.TagMax.Decimal, used)
		if err != nil {
			return nil, err
		}

		invoice := &models.Invoice{
			PublicID:        uuid.NewString(),
			RequestedAmount: amount,
			Tag:             tag,
			PayAmount:       amount.Add(tag).Round(svc.Config.AmountPrecision),
			ToAddress:       svc.Config.ReceivingAddress,
			State:           common.InvoiceStatePending,
		}

		err = svc.Invoices.CreateInvoice(ctx, invoice)
		if errors.Is(err, ErrDuplicatePayAmount) {
			// lost the allocation race against a concurrent creation
			svc.Logger.Infof("Pay amount collision on tag %s, reallocating (attempt %d)", tag, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		svc.Logger.Infof("Created invoice invoice_id:%s requested:%s tag:%s pay_amount:%s",
			invoice.PublicID, invoice.RequestedAmount, invoice.Tag, invoice.PayAmount)
		return invoice, nil
	}
	return nil, ErrDuplicatePayAmount
}

func (svc *GatewayService) FindInvoice(ctx context.Context, publicID string) (*models.Invoice, error) {
	return svc.Invoices.FindInvoice(ctx, publicID)
}

func (svc *GatewayService) ListPendingInvoices(ctx context.Context) ([]models.Invoice, error) {
	return svc.Invoices.ListPendingInvoices(ctx)
}

// ConfirmInvoice commits the pending -> confirmed transition. Repeated calls
// for the same invoice are no-ops, which makes the reconciliation loop safe
// against re-derived matches across overlapping polls. The pubsub only sees
// the invoice on a real transition.
func (svc *GatewayService) ConfirmInvoice(ctx context.Context, publicID string, txHash string) (*models.Invoice, error) {
	invoice, transitioned, err := svc.Invoices.ConfirmInvoice(ctx, publicID, txHash)
	if err != nil {
		return nil, err
	}
	if transitioned {
		svc.Logger.Infof("Confirmed invoice invoice_id:%s pay_amount:%s tx:%s", invoice.PublicID, invoice.PayAmount, txHash)
		svc.InvoicePubSub.Publish(common.TopicInvoiceConfirmed, *invoice)
	}
	return invoice, nil
}
