package stats

import (
	"errors"

	"github.com/zaesho/slp-dissect/slp"
)

// ErrNoSettings is returned when stats are requested for a stream that never
// produced a stable game start.
var ErrNoSettings = errors.New("stats: no game settings available")

// Melee action state IDs and ranges used by the computers.
const (
	stateDeadRangeEnd uint16 = 0x00a // 0x000-0x00a: dead / being KO'd
	stateDamageStart  uint16 = 0x04b
	stateDamageEnd    uint16 = 0x05b
	stateGrabbedStart uint16 = 0x0df
	stateGrabbedEnd   uint16 = 0x0e8
	stateCmdGrabStart uint16 = 0x10d
	stateCmdGrabEnd   uint16 = 0x118
	stateTurn         uint16 = 0x012
	stateDash         uint16 = 0x014
	stateGrab         uint16 = 0x0d4
	stateRollForward  uint16 = 0x0e9
	stateRollBackward uint16 = 0x0ea
	stateSpotDodge    uint16 = 0x0eb
	stateAirDodge     uint16 = 0x0ec
	stateCliffCatch   uint16 = 0x0fc
)

// hitstun lives in state bit flags byte 4, bit 0x02.
const hitstunFlagByte, hitstunFlagMask = 3, uint8(0x02)

// punishResetFrames is how many consecutive frames out of a punish state end
// a conversion or combo string.
const punishResetFrames = 45

func isDead(state uint16) bool {
	return state <= stateDeadRangeEnd
}

func isDamaged(state uint16) bool {
	return state >= stateDamageStart && state <= stateDamageEnd
}

func isGrabbed(state uint16) bool {
	return state >= stateGrabbedStart && state <= stateGrabbedEnd
}

func isCommandGrabbed(state uint16) bool {
	return state >= stateCmdGrabStart && state <= stateCmdGrabEnd
}

func isInHitstun(post *slp.PostFrame) bool {
	if post.StateFlags == nil {
		return false
	}
	return post.StateFlags[hitstunFlagByte]&hitstunFlagMask != 0
}

// inPunishState reports whether the defender is still being actioned on by
// the attacker: taking damage, held, or riding out hitstun.
func inPunishState(post *slp.PostFrame) bool {
	return isDamaged(post.ActionStateID) ||
		isGrabbed(post.ActionStateID) ||
		isCommandGrabbed(post.ActionStateID) ||
		isInHitstun(post)
}

func didLoseStock(cur, prev *slp.PostFrame) bool {
	if cur == nil || prev == nil {
		return false
	}
	return prev.StocksRemaining > cur.StocksRemaining
}

func damageTaken(cur, prev *slp.PostFrame) float32 {
	if cur == nil || prev == nil {
		return 0
	}
	if d := cur.Percent - prev.Percent; d > 0 {
		return d
	}
	return 0
}

func postFor(frame *slp.Frame, index int) *slp.PostFrame {
	if frame == nil || index < 0 || index >= slp.MaxPlayers {
		return nil
	}
	return frame.Players[index].Post
}

func prevPostFor(all FrameHistory, frameNumber int32, index int) *slp.PostFrame {
	return postFor(all[frameNumber-1], index)
}

// pairing is a directed attacker→defender slot pairing.
type pairing struct {
	attacker int
	defender int
}

// singlesPairings derives both directed pairings from a two-player game.
// Games with more players produce no pairings; the pair-based computers
// (conversions) only run for singles.
func singlesPairings(settings *slp.GameStart) []pairing {
	active := settings.ActivePlayers()
	if len(active) != 2 {
		return nil
	}
	return []pairing{
		{attacker: active[0], defender: active[1]},
		{attacker: active[1], defender: active[0]},
	}
}

// Ratio is a count over a total; Ratio is nil when the total is zero so an
// absent denominator is never confused with a real 0.
type Ratio struct {
	Count float64  `json:"count"`
	Total float64  `json:"total"`
	Ratio *float64 `json:"ratio"`
}

func makeRatio(count, total float64) Ratio {
	r := Ratio{Count: count, Total: total}
	if total != 0 {
		v := count / total
		r.Ratio = &v
	}
	return r
}
