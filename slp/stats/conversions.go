package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// Move is one landed attack inside a conversion or combo. Consecutive hits
// of the same attack animation collapse into one entry with HitCount > 1.
type Move struct {
	PlayerIndex int     `json:"playerIndex"`
	Frame       int32   `json:"frame"`
	MoveID      uint8   `json:"moveId"`
	HitCount    int     `json:"hitCount"`
	Damage      float32 `json:"damage"`
}

// Opening classifications for conversions.
const (
	OpeningNeutralWin    = "neutral-win"
	OpeningCounterAttack = "counter-attack"
	OpeningTrade         = "trade"
)

// Conversion is a span of consecutive offense by one attacker against one
// defender, ended by a reset window of hitless frames or a stock loss.
type Conversion struct {
	AttackerIndex  int      `json:"attackerIndex"`
	DefenderIndex  int      `json:"defenderIndex"`
	StartFrame     int32    `json:"startFrame"`
	EndFrame       *int32   `json:"endFrame"`
	StartPercent   float32  `json:"startPercent"`
	CurrentPercent float32  `json:"currentPercent"`
	EndPercent     *float32 `json:"endPercent"`
	Moves          []Move   `json:"moves"`
	DidKill        bool     `json:"didKill"`
	// OpeningType records how the conversion began: a neutral win, a
	// counter-attack out of the opponent's offense, or a trade.
	OpeningType string `json:"openingType"`
}

type conversionState struct {
	open             *Conversion
	resetCounter     int
	lastHitAnimation *uint16
}

// ConversionComputer tracks directed attacker→defender conversions for
// singles games.
type ConversionComputer struct {
	pairings    []pairing
	state       map[pairing]*conversionState
	conversions []*Conversion
}

func NewConversionComputer() *ConversionComputer {
	return &ConversionComputer{}
}

func (c *ConversionComputer) Setup(settings *slp.GameStart) {
	c.pairings = singlesPairings(settings)
	c.state = make(map[pairing]*conversionState, len(c.pairings))
	for _, p := range c.pairings {
		c.state[p] = &conversionState{}
	}
	c.conversions = nil
}

func (c *ConversionComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	for _, p := range c.pairings {
		c.processPairing(p, frame, all)
	}
}

func (c *ConversionComputer) processPairing(p pairing, frame *slp.Frame, all FrameHistory) {
	st := c.state[p]
	defender := postFor(frame, p.defender)
	attacker := postFor(frame, p.attacker)
	if defender == nil || attacker == nil {
		return
	}
	prevDefender := prevPostFor(all, frame.Number, p.defender)

	if inPunishState(defender) {
		st.resetCounter = 0
		if dmg := damageTaken(defender, prevDefender); dmg > 0 {
			if st.open == nil {
				start := defender.Percent - dmg
				st.open = &Conversion{
					AttackerIndex: p.attacker,
					DefenderIndex: p.defender,
					StartFrame:    frame.Number,
					StartPercent:  start,
					OpeningType:   c.classifyOpening(p, frame.Number),
				}
				c.conversions = append(c.conversions, st.open)
			}
			c.trackMove(st, p, frame.Number, attacker, dmg)
		}
		if st.open != nil {
			st.open.CurrentPercent = defender.Percent
		}
	} else {
		st.lastHitAnimation = nil
		if st.open != nil {
			st.resetCounter++
			if st.resetCounter > punishResetFrames {
				c.close(st, frame.Number, defender.Percent, false)
			}
		}
	}

	if st.open != nil && didLoseStock(defender, prevDefender) {
		st.open.CurrentPercent = defender.Percent
		c.close(st, frame.Number, defender.Percent, true)
	}
}

// trackMove collapses multi-hit attacks: a hit with the same attacker
// animation and attack id as the previous one extends the last move.
func (c *ConversionComputer) trackMove(st *conversionState, p pairing, frameNumber int32, attacker *slp.PostFrame, dmg float32) {
	moves := st.open.Moves
	sameAnimation := st.lastHitAnimation != nil && *st.lastHitAnimation == attacker.ActionStateID
	if sameAnimation && len(moves) > 0 && moves[len(moves)-1].MoveID == attacker.LastHittingAttackID {
		moves[len(moves)-1].HitCount++
		moves[len(moves)-1].Damage += dmg
	} else {
		st.open.Moves = append(moves, Move{
			PlayerIndex: p.attacker,
			Frame:       frameNumber,
			MoveID:      attacker.LastHittingAttackID,
			HitCount:    1,
			Damage:      dmg,
		})
	}
	animation := attacker.ActionStateID
	st.lastHitAnimation = &animation
}

// classifyOpening looks at the reverse pairing when a conversion opens: if
// the attacker was being converted on, this is a counter-attack; if both
// opened on the same frame, a trade.
func (c *ConversionComputer) classifyOpening(p pairing, frameNumber int32) string {
	reverse := c.state[pairing{attacker: p.defender, defender: p.attacker}]
	if reverse == nil || reverse.open == nil {
		return OpeningNeutralWin
	}
	if reverse.open.StartFrame == frameNumber {
		return OpeningTrade
	}
	return OpeningCounterAttack
}

func (c *ConversionComputer) close(st *conversionState, frameNumber int32, percent float32, killed bool) {
	end := frameNumber
	endPercent := percent
	st.open.EndFrame = &end
	st.open.EndPercent = &endPercent
	st.open.DidKill = killed
	st.open = nil
	st.resetCounter = 0
	st.lastHitAnimation = nil
}

// Conversions returns the accumulated conversions in opening order.
func (c *ConversionComputer) Conversions() []Conversion {
	out := make([]Conversion, len(c.conversions))
	for i, conv := range c.conversions {
		out[i] = *conv
		out[i].Moves = append([]Move(nil), conv.Moves...)
	}
	return out
}

func (c *ConversionComputer) Fetch() any {
	return c.Conversions()
}
