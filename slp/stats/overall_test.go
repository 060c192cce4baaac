package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaesho/slp-dissect/slp"
)

func TestComputeOverall(t *testing.T) {
	end1 := int32(100)
	conversions := []Conversion{
		{
			AttackerIndex: 0, DefenderIndex: 1,
			StartFrame: 10, EndFrame: &end1,
			Moves: []Move{
				{PlayerIndex: 0, MoveID: 17, HitCount: 1, Damage: 12},
				{PlayerIndex: 0, MoveID: 14, HitCount: 2, Damage: 18},
			},
			DidKill:     true,
			OpeningType: OpeningNeutralWin,
		},
		{
			AttackerIndex: 0, DefenderIndex: 1,
			StartFrame:  200,
			Moves:       []Move{{PlayerIndex: 0, MoveID: 20, HitCount: 1, Damage: 10}},
			OpeningType: OpeningCounterAttack,
		},
		{
			AttackerIndex: 1, DefenderIndex: 0,
			StartFrame:  150,
			Moves:       []Move{{PlayerIndex: 1, MoveID: 2, HitCount: 1, Damage: 3}},
			OpeningType: OpeningNeutralWin,
		},
	}
	inputs := []PlayerInputs{
		{PlayerIndex: 0, Digital: 300, Total: 720},
		{PlayerIndex: 1, Digital: 150, Total: 360},
	}
	// Exactly two in-game minutes.
	lastFrame := slp.FirstPlayableFrame + 2*framesPerMinute

	overall := ComputeOverall(testSettings(), conversions, inputs, lastFrame)
	require.Len(t, overall, 2)

	p0 := overall[0]
	assert.Equal(t, 0, p0.PlayerIndex)
	assert.Equal(t, float32(40), p0.TotalDamage)
	assert.Equal(t, 1, p0.KillCount)
	assert.Equal(t, 2, p0.ConversionCount)
	assert.Equal(t, 1, p0.NeutralWinCount)
	assert.Equal(t, 1, p0.CounterAttackCount)

	require.NotNil(t, p0.SuccessfulConversions.Ratio)
	assert.InDelta(t, 0.5, *p0.SuccessfulConversions.Ratio, 1e-9,
		"one of two conversions had more than one move")
	require.NotNil(t, p0.OpeningsPerKill.Ratio)
	assert.InDelta(t, 2.0, *p0.OpeningsPerKill.Ratio, 1e-9)
	require.NotNil(t, p0.DamagePerOpening.Ratio)
	assert.InDelta(t, 20.0, *p0.DamagePerOpening.Ratio, 1e-9)
	require.NotNil(t, p0.InputsPerMinute.Ratio)
	assert.InDelta(t, 360.0, *p0.InputsPerMinute.Ratio, 1e-9)
	require.NotNil(t, p0.DigitalInputsPerMinute.Ratio)
	assert.InDelta(t, 150.0, *p0.DigitalInputsPerMinute.Ratio, 1e-9)

	p1 := overall[1]
	assert.Equal(t, 0, p1.KillCount)
	assert.Nil(t, p1.OpeningsPerKill.Ratio, "no kills means no ratio, not zero")
	assert.Equal(t, float32(3), p1.TotalDamage)
}
