package models

import (
	"time"
)

// ProcessedTransfer : Deduplication ledger entry
//
// One row per on-chain transaction the reconciliation loop has already acted
// on. The feed may re-report a transfer for as long as its redelivery lag;
// rows older than the retention window are pruned, so the window must exceed
// that lag.
type ProcessedTransfer struct {
	TxID   string    `json:"tx_id" bun:"tx_id,pk"`
	SeenAt time.Time `json:"seen_at" bun:",nullzero,notnull,default:current_timestamp"`
}
