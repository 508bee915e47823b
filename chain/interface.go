package chain

import (
	"context"
	"math/big"
)

// TokenClient is the gateway's view of the blockchain node. It is only used
// for the token metadata read at startup, balance reads, and outbound
// transfers; incoming transfers come from the explorer feed instead.
type TokenClient interface {
	GetDecimals(ctx context.Context) (int32, error)
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	Transfer(ctx context.Context, toAddress string, amountBase *big.Int) (txID string, err error)
}
