package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- the last line of defense for the pay amount uniqueness contract:
			-- the tag allocator reads pending tags and then inserts, which races
			-- against concurrent invoice creations. One of the two inserts must
			-- fail closed here.
				CREATE UNIQUE INDEX IF NOT EXISTS invoices_pending_pay_amount_key
				ON invoices (pay_amount)
				WHERE state = 'pending';

			-- retention pruning of the dedup ledger scans by first-seen time
				CREATE INDEX IF NOT EXISTS processed_transfers_seen_at_idx
				ON processed_transfers (seen_at);
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
