package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaesho/slp-dissect/slp"
)

func stateFrames(states ...uint16) []*slp.Frame {
	frames := make([]*slp.Frame, len(states))
	for i, state := range states {
		n := int32(i)
		frames[i] = newFrame(n,
			post(n, 0, state, 0, 4),
			post(n, 1, stateWait, 0, 4),
		)
	}
	return frames
}

func runActions(t *testing.T, frames []*slp.Frame) ActionCounts {
	t.Helper()
	c := NewActionsComputer()
	run(c, testSettings(), frames)
	counts := c.Counts()
	require.Len(t, counts, 2)
	return counts[0]
}

func TestActionsCountStateEntries(t *testing.T) {
	counts := runActions(t, stateFrames(
		stateWait,
		stateAirDodge,
		stateAirDodge, // staying in the state is not a new entry
		stateWait,
		stateAirDodge,
		stateSpotDodge,
		stateRollForward,
		stateRollBackward,
		stateCliffCatch,
		stateGrab,
	))

	assert.Equal(t, 2, counts.AirDodgeCount)
	assert.Equal(t, 1, counts.SpotDodgeCount)
	assert.Equal(t, 2, counts.RollCount)
	assert.Equal(t, 1, counts.LedgegrabCount)
	assert.Equal(t, 1, counts.GrabCount)
	assert.Equal(t, 2, counts.StateEntries[stateAirDodge])
}

func TestActionsDashDance(t *testing.T) {
	counts := runActions(t, stateFrames(
		stateWait,
		stateDash,
		stateTurn,
		stateDash, // dash out of a turn out of a dash: one dash dance
		stateTurn,
		stateDash, // and again
		stateWait,
		stateTurn,
		stateDash, // turn did not come out of a dash: not a dash dance
	))
	assert.Equal(t, 2, counts.DashDanceCount)
}
