package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
//
// A payment request carrying a uniquely tagged pay amount. PayAmount is
// RequestedAmount plus Tag and must be unique among all pending invoices,
// which is what lets the reconciliation loop match an incoming transfer to
// exactly one invoice without a payer-supplied reference.
type Invoice struct {
	ID              int64           `json:"-" bun:",pk,autoincrement"`
	PublicID        string          `json:"id" bun:"public_id,notnull,unique"`
	RequestedAmount decimal.Decimal `json:"requested_amount" bun:"requested_amount,type:numeric(27,3),notnull"`
	Tag             decimal.Decimal `json:"tag" bun:"tag,type:numeric(27,3),notnull"`
	PayAmount       decimal.Decimal `json:"pay_amount" bun:"pay_amount,type:numeric(27,3),notnull"`
	ToAddress       string          `json:"to_address" bun:",notnull"`
	State           string          `json:"state" bun:",notnull,default:'pending'"`
	TxHash          string          `json:"tx_hash,omitempty" bun:",nullzero"`
	CreatedAt       time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt       bun.NullTime    `json:"updated_at"`
	ConfirmedAt     bun.NullTime    `json:"confirmed_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
