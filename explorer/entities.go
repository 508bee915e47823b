package explorer

import (
	"math/big"
	"time"
)

// TokenTransfer is one incoming token transfer as reported by the explorer.
// The feed is reverse-chronological and must be treated as possibly stale,
// reordered and repeating previously seen entries.
type TokenTransfer struct {
	TxID      string
	From      string
	To        string
	RawValue  *big.Int // token smallest units
	Timestamp time.Time
}
