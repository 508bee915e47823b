package service

import (
	"context"

	"github.com/stablegate/stablegate.go/chain"
	"github.com/stablegate/stablegate.go/explorer"
	"github.com/ziflex/lecho/v3"
)

// TransferFeed is the external data source reporting incoming token
// transfers to the gateway address, newest first.
type TransferFeed interface {
	IncomingTransfers(ctx context.Context, address string, limit int) ([]explorer.TokenTransfer, error)
}

type GatewayService struct {
	Config        *Config
	Logger        *lecho.Logger
	Invoices      InvoiceStore
	Ledger        TransferLedger
	ChainClient   chain.TokenClient
	FeedClient    TransferFeed
	TokenDecimals int32
	InvoicePubSub *Pubsub
}
