package service

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/db/models"
	"github.com/stablegate/stablegate.go/explorer"
)

// ReconcileOnce runs a single reconciliation cycle: pull the newest page of
// incoming transfers, and for each transfer not seen before, try to match it
// to a pending invoice by exact pay amount and commit the confirmation.
//
// Feed problems degrade to an empty page. Persistence errors abort the cycle
// early; the aborted remainder is retried naturally on the next cycle because
// those transfers were never marked processed.
func (svc *GatewayService) ReconcileOnce(ctx context.Context) error {
	transfers, err := svc.FeedClient.IncomingTransfers(ctx, svc.Config.ReceivingAddress, svc.Config.FeedPageSize)
	if err != nil {
		svc.Logger.Warnf("Transfer feed unavailable, treating as empty page: %v", err)
		transfers = nil
	}

	for _, transfer := range transfers {
		if err := svc.processTransfer(ctx, transfer); err != nil {
			return err
		}
	}

	// opportunistic retention pruning; failures here never block the cycle
	if err := svc.Ledger.PruneProcessedTransfers(ctx, time.Now().Add(-svc.Config.LedgerRetention())); err != nil {
		svc.Logger.Warnf("Failed to prune processed transfers: %v", err)
	}
	return nil
}

func (svc *GatewayService) processTransfer(ctx context.Context, transfer explorer.TokenTransfer) error {
	// the feed may include adjacent traffic for the contract
	if !strings.EqualFold(transfer.To, svc.Config.ReceivingAddress) {
		return nil
	}

	isNew, err := svc.Ledger.MarkTransferProcessed(ctx, transfer.TxID)
	if err != nil {
		return err
	}
	if !isNew {
		return nil
	}

	amount := svc.NormalizeRawValue(transfer)

	pending, err := svc.Invoices.ListPendingInvoices(ctx)
	if err != nil {
		return svc.unmarkAfterFailure(ctx, transfer.TxID, err)
	}
	matched := matchTransfer(pending, svc.TokenDecimals, transfer.RawValue)
	if matched == nil {
		// money arrived with no invoice attached. An operational event
		// worth watching, not an error.
		svc.Logger.Warnf("Unmatched deposit tx:%s from:%s amount:%s", transfer.TxID, transfer.From, amount)
		return nil
	}

	if _, err = svc.ConfirmInvoice(ctx, matched.PublicID, transfer.TxID); err != nil {
		return svc.unmarkAfterFailure(ctx, transfer.TxID, err)
	}
	return nil
}

// unmarkAfterFailure rolls the dedup mark back so the transfer is retried on
// the next cycle instead of being orphaned. When the rollback itself fails
// the mark stays and the transfer needs operator attention, which the error
// log flags.
func (svc *GatewayService) unmarkAfterFailure(ctx context.Context, txID string, cause error) error {
	if err := svc.Ledger.UnmarkTransferProcessed(ctx, txID); err != nil {
		svc.Logger.Errorf("Failed to unmark transfer tx:%s after error, manual resolution needed: %v", txID, err)
	}
	return cause
}

// NormalizeRawValue converts a transfer's raw smallest-unit integer value
// into the gateway's decimal amount domain.
func (svc *GatewayService) NormalizeRawValue(transfer explorer.TokenTransfer) decimal.Decimal {
	return decimal.NewFromBigInt(transfer.RawValue, -svc.TokenDecimals)
}

// matchTransfer picks the first pending invoice whose pay amount equals the
// transfer amount. Both sides are compared in smallest units: the invoice's
// pay amount is shifted into the token's base unit domain and compared as an
// exact integer against the raw transfer value, so no floating point is ever
// involved. Ties cannot happen while the uniqueness contract holds; if the
// store were ever corrupted, first in store order wins.
func matchTransfer(pending []models.Invoice, tokenDecimals int32, rawValue *big.Int) *models.Invoice {
	rawAmount := decimal.NewFromBigInt(rawValue, 0)
	for i := range pending {
		if pending[i].PayAmount.Shift(tokenDecimals).Equal(rawAmount) {
			return &pending[i]
		}
	}
	return nil
}
