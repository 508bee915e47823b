package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/chain"
)

// SendPayout submits a merchant-initiated outbound token transfer. Fire and
// forget: the transaction id is returned to the caller but not tracked. The
// amount must be representable exactly in the token's smallest unit.
func (svc *GatewayService) SendPayout(ctx context.Context, toAddress string, amount decimal.Decimal) (string, error) {
	if !chain.IsValidAddress(toAddress) {
		return "", fmt.Errorf("invalid destination address %q", toAddress)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("payout amount must be positive, got %s", amount)
	}
	amountBase := amount.Shift(svc.TokenDecimals)
	if !amountBase.IsInteger() {
		return "", fmt.Errorf("payout amount %s is below the token's smallest unit", amount)
	}

	txID, err := svc.ChainClient.Transfer(ctx, toAddress, amountBase.BigInt())
	if err != nil {
		return "", err
	}
	svc.Logger.Infof("Submitted payout to:%s amount:%s tx:%s", toAddress, amount, txID)
	return txID, nil
}

// GatewayBalance reads the token balance of the receiving address.
func (svc *GatewayService) GatewayBalance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := svc.ChainClient.GetBalance(ctx, svc.Config.ReceivingAddress)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(balance, -svc.TokenDecimals), nil
}
