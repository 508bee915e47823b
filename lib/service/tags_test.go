package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestNextTagReturnsSmallestFreeSlot(t *testing.T) {
	step := dec(t, "0.001")
	max := dec(t, "0.099")

	tag, err := NextTag(step, max, []decimal.Decimal{dec(t, "0.001"), dec(t, "0.002")})
	require.NoError(t, err)
	assert.True(t, dec(t, "0.003").Equal(tag))
}

func TestNextTagStartsAtStep(t *testing.T) {
	tag, err := NextTag(dec(t, "0.001"), dec(t, "0.099"), nil)
	require.NoError(t, err)
	assert.True(t, dec(t, "0.001").Equal(tag))
}

func TestNextTagFillsGaps(t *testing.T) {
	used := []decimal.Decimal{dec(t, "0.001"), dec(t, "0.003"), dec(t, "0.004")}

	tag, err := NextTag(dec(t, "0.001"), dec(t, "0.099"), used)
	require.NoError(t, err)
	assert.True(t, dec(t, "0.002").Equal(tag))
}

func TestNextTagCapacityExhausted(t *testing.T) {
	used := []decimal.Decimal{dec(t, "0.001"), dec(t, "0.002"), dec(t, "0.003")}

	_, err := NextTag(dec(t, "0.001"), dec(t, "0.003"), used)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestNextTagIgnoresTagsOffTheGrid(t *testing.T) {
	// a used tag recorded with a different string form still counts
	used := []decimal.Decimal{decimal.New(1, -3)} // 0.001

	tag, err := NextTag(dec(t, "0.001"), dec(t, "0.099"), used)
	require.NoError(t, err)
	assert.True(t, dec(t, "0.002").Equal(tag))
}

func TestNextTagNoFloatDrift(t *testing.T) {
	// 99 exact additions of 0.001 must land exactly on 0.099
	used := make([]decimal.Decimal, 0, 98)
	tag := dec(t, "0.001")
	for i := 0; i < 98; i++ {
		used = append(used, tag)
		tag = tag.Add(dec(t, "0.001"))
	}

	last, err := NextTag(dec(t, "0.001"), dec(t, "0.099"), used)
	require.NoError(t, err)
	assert.Equal(t, "0.099", last.String())

	used = append(used, last)
	_, err = NextTag(dec(t, "0.001"), dec(t, "0.099"), used)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}
