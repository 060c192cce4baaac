package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// Combo is a string of hits against one defender while they stay in hitstun
// or within the reset window. Unlike a conversion, a combo is keyed by
// defender only: any player's hits extend it, attributed per move.
type Combo struct {
	DefenderIndex  int      `json:"defenderIndex"`
	StartFrame     int32    `json:"startFrame"`
	EndFrame       *int32   `json:"endFrame"`
	StartPercent   float32  `json:"startPercent"`
	CurrentPercent float32  `json:"currentPercent"`
	EndPercent     *float32 `json:"endPercent"`
	Moves          []Move   `json:"moves"`
	DidKill        bool     `json:"didKill"`
}

type comboState struct {
	open             *Combo
	resetCounter     int
	lastHitAnimation *uint16
}

// ComboComputer tracks combo strings per defender.
type ComboComputer struct {
	players []int
	state   map[int]*comboState
	combos  []*Combo
}

func NewComboComputer() *ComboComputer {
	return &ComboComputer{}
}

func (c *ComboComputer) Setup(settings *slp.GameStart) {
	c.players = settings.ActivePlayers()
	c.state = make(map[int]*comboState, len(c.players))
	for _, idx := range c.players {
		c.state[idx] = &comboState{}
	}
	c.combos = nil
}

func (c *ComboComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	for _, idx := range c.players {
		c.processDefender(idx, frame, all)
	}
}

func (c *ComboComputer) processDefender(idx int, frame *slp.Frame, all FrameHistory) {
	st := c.state[idx]
	defender := postFor(frame, idx)
	if defender == nil {
		return
	}
	prev := prevPostFor(all, frame.Number, idx)

	if inPunishState(defender) {
		st.resetCounter = 0
		if dmg := damageTaken(defender, prev); dmg > 0 {
			attackerIdx := int(defender.LastHitBy)
			attacker := postFor(frame, attackerIdx)
			if st.open == nil {
				st.open = &Combo{
					DefenderIndex: idx,
					StartFrame:    frame.Number,
					StartPercent:  defender.Percent - dmg,
				}
				c.combos = append(c.combos, st.open)
			}
			c.trackMove(st, attackerIdx, attacker, frame.Number, dmg)
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

	if st.open != nil && didLoseStock(defender, prev) {
		st.open.CurrentPercent = defender.Percent
		c.close(st, frame.Number, defender.Percent, true)
	}
}

func (c *ComboComputer) trackMove(st *comboState, attackerIdx int, attacker *slp.PostFrame, frameNumber int32, dmg float32) {
	moveID := uint8(0)
	var animation *uint16
	if attacker != nil {
		moveID = attacker.LastHittingAttackID
		a := attacker.ActionStateID
		animation = &a
	}
	moves := st.open.Moves
	sameAnimation := st.lastHitAnimation != nil && animation != nil && *st.lastHitAnimation == *animation
	if sameAnimation && len(moves) > 0 && moves[len(moves)-1].MoveID == moveID && moves[len(moves)-1].PlayerIndex == attackerIdx {
		moves[len(moves)-1].HitCount++
		moves[len(moves)-1].Damage += dmg
	} else {
		st.open.Moves = append(moves, Move{
			PlayerIndex: attackerIdx,
			Frame:       frameNumber,
			MoveID:      moveID,
			HitCount:    1,
			Damage:      dmg,
		})
	}
	st.lastHitAnimation = animation
}

func (c *ComboComputer) close(st *comboState, frameNumber int32, percent float32, killed bool) {
	end := frameNumber
	endPercent := percent
	st.open.EndFrame = &end
	st.open.EndPercent = &endPercent
	st.open.DidKill = killed
	st.open = nil
	st.resetCounter = 0
	st.lastHitAnimation = nil
}

// Combos returns the accumulated combos in opening order.
func (c *ComboComputer) Combos() []Combo {
	out := make([]Combo, len(c.combos))
	for i, combo := range c.combos {
		out[i] = *combo
		out[i].Moves = append([]Move(nil), combo.Moves...)
	}
	return out
}

func (c *ComboComputer) Fetch() any {
	return c.Combos()
}
