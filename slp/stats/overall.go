package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// framesPerMinute at Melee's fixed 60 fps simulation rate.
const framesPerMinute = 3600

// Overall summarizes one player's game from the raw collections. These are
// derived after the fact rather than tracked per frame, since they need
// totals that only exist once conversions and inputs are complete.
type Overall struct {
	PlayerIndex            int     `json:"playerIndex"`
	TotalDamage            float32 `json:"totalDamage"`
	KillCount              int     `json:"killCount"`
	ConversionCount        int     `json:"conversionCount"`
	NeutralWinCount        int     `json:"neutralWinCount"`
	CounterAttackCount     int     `json:"counterAttackCount"`
	SuccessfulConversions  Ratio   `json:"successfulConversions"`
	OpeningsPerKill        Ratio   `json:"openingsPerKill"`
	DamagePerOpening       Ratio   `json:"damagePerOpening"`
	InputsPerMinute        Ratio   `json:"inputsPerMinute"`
	DigitalInputsPerMinute Ratio   `json:"digitalInputsPerMinute"`
}

// ComputeOverall derives per-player summary stats once the collections are
// complete. A successful conversion is one that dealt more than one hit.
func ComputeOverall(settings *slp.GameStart, conversions []Conversion, inputs []PlayerInputs, lastFrame int32) []Overall {
	gameMinutes := float64(lastFrame-slp.FirstPlayableFrame) / framesPerMinute

	inputsByPlayer := make(map[int]PlayerInputs, len(inputs))
	for _, in := range inputs {
		inputsByPlayer[in.PlayerIndex] = in
	}

	var out []Overall
	for _, idx := range settings.ActivePlayers() {
		o := Overall{PlayerIndex: idx}
		successful := 0
		for _, conv := range conversions {
			if conv.AttackerIndex != idx {
				continue
			}
			o.ConversionCount++
			for _, mv := range conv.Moves {
				o.TotalDamage += mv.Damage
			}
			if conv.DidKill {
				o.KillCount++
			}
			if len(conv.Moves) > 1 {
				successful++
			}
			switch conv.OpeningType {
			case OpeningNeutralWin:
				o.NeutralWinCount++
			case OpeningCounterAttack:
				o.CounterAttackCount++
			}
		}
		o.SuccessfulConversions = makeRatio(float64(successful), float64(o.ConversionCount))
		o.OpeningsPerKill = makeRatio(float64(o.ConversionCount), float64(o.KillCount))
		o.DamagePerOpening = makeRatio(float64(o.TotalDamage), float64(o.ConversionCount))

		in := inputsByPlayer[idx]
		if gameMinutes > 0 {
			o.InputsPerMinute = makeRatio(float64(in.Total), gameMinutes)
			o.DigitalInputsPerMinute = makeRatio(float64(in.Digital), gameMinutes)
		}
		out = append(out, o)
	}
	return out
}
