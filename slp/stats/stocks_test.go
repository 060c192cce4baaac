package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaesho/slp-dissect/slp"
)

func stocksFor(all []Stock, idx int) []Stock {
	var out []Stock
	for _, s := range all {
		if s.PlayerIndex == idx {
			out = append(out, s)
		}
	}
	return out
}

func TestStockOpensOnFirstLivingFrame(t *testing.T) {
	c := NewStockComputer()
	run(c, testSettings(), []*slp.Frame{
		newFrame(0, post(0, 0, stateWait, 0, 4), post(0, 1, stateWait, 0, 4)),
	})

	stocks := c.Stocks()
	require.Len(t, stocks, 2)
	assert.Equal(t, int32(0), stocks[0].StartFrame)
	assert.Equal(t, uint8(4), stocks[0].Count)
	assert.Nil(t, stocks[0].EndFrame)
	assert.Nil(t, stocks[0].DeathAnimation)
}

func TestStockClosesOnDeathFrame(t *testing.T) {
	c := NewStockComputer()
	run(c, testSettings(), []*slp.Frame{
		newFrame(0, post(0, 0, stateWait, 0, 4), post(0, 1, stateWait, 0, 4)),
		newFrame(1, post(1, 0, stateWait, 85.2, 4), post(1, 1, stateWait, 0, 4)),
		// Player 0 dies: the stock counter drops and the game has already
		// zeroed the percent, so the record closes with the prior frame's.
		newFrame(2, post(2, 0, 0x004, 0, 3), post(2, 1, stateWait, 0, 4)),
		// Still inside the dead range while falling off screen; no new stock.
		newFrame(3, post(3, 0, 0x002, 0, 3), post(3, 1, stateWait, 0, 4)),
		newFrame(4, post(4, 0, stateWait, 0, 3), post(4, 1, stateWait, 0, 4)),
	})

	p0 := stocksFor(c.Stocks(), 0)
	require.Len(t, p0, 2)

	first := p0[0]
	require.NotNil(t, first.EndFrame)
	assert.Equal(t, int32(2), *first.EndFrame)
	require.NotNil(t, first.EndPercent)
	assert.Equal(t, float32(85.2), *first.EndPercent)
	require.NotNil(t, first.DeathAnimation)
	assert.Equal(t, uint16(0x004), *first.DeathAnimation)
	assert.Equal(t, uint8(4), first.Count)

	second := p0[1]
	assert.Equal(t, int32(4), second.StartFrame, "new stock opens when the state leaves the dead range")
	assert.Equal(t, uint8(3), second.Count)
	assert.Nil(t, second.EndFrame)
}

func TestStockFetchIsIdempotent(t *testing.T) {
	c := NewStockComputer()
	run(c, testSettings(), []*slp.Frame{
		newFrame(0, post(0, 0, stateWait, 0, 4), post(0, 1, stateWait, 0, 4)),
	})

	a := c.Fetch().([]Stock)
	b := c.Fetch().([]Stock)
	assert.Equal(t, a, b)

	// Mutating a fetched copy must not corrupt the computer's state.
	a[0].Count = 0
	assert.Equal(t, uint8(4), c.Stocks()[0].Count)
}
