package service

import (
	"github.com/shopspring/decimal"
)

// NextTag returns the smallest tag on the grid {step, 2*step, ..., max} that
// is not in used, or ErrCapacityExhausted when every slot is taken. Picking
// the minimal free offset keeps the pay amount as close to the requested
// amount as possible.
func NextTag(step, max decimal.Decimal, used []decimal.Decimal) (decimal.Decimal, error) {
	inUse := make(map[string]struct{}, len(used))
	for _, tag := range used {
		inUse[tag.String()] = struct{}{}
	}
	for tag := step; tag.LessThanOrEqual(max); tag = tag.Add(step) {
		if _, taken := inUse[tag.String()]; !taken {
			return tag, nil
		}
	}
	return decimal.Zero, ErrCapacityExhausted
}
