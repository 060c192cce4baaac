package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// ActionCounts tallies discrete action-state entries per player. An entry is
// counted on the frame the state changes, once per visit.
type ActionCounts struct {
	PlayerIndex    int            `json:"playerIndex"`
	AirDodgeCount  int            `json:"airDodgeCount"`
	SpotDodgeCount int            `json:"spotDodgeCount"`
	RollCount      int            `json:"rollCount"`
	DashDanceCount int            `json:"dashDanceCount"`
	LedgegrabCount int            `json:"ledgegrabCount"`
	GrabCount      int            `json:"grabCount"`
	StateEntries   map[uint16]int `json:"stateEntries"`
}

// ActionsComputer counts action-state entries from finalized post-frames.
type ActionsComputer struct {
	players []int
	counts  map[int]*ActionCounts
	order   []int
}

func NewActionsComputer() *ActionsComputer {
	return &ActionsComputer{}
}

func (c *ActionsComputer) Setup(settings *slp.GameStart) {
	c.players = settings.ActivePlayers()
	c.counts = make(map[int]*ActionCounts, len(c.players))
	c.order = c.players
	for _, idx := range c.players {
		c.counts[idx] = &ActionCounts{
			PlayerIndex:  idx,
			StateEntries: make(map[uint16]int),
		}
	}
}

func (c *ActionsComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	for _, idx := range c.players {
		post := postFor(frame, idx)
		prev := prevPostFor(all, frame.Number, idx)
		if post == nil || prev == nil {
			continue
		}
		if post.ActionStateID == prev.ActionStateID {
			continue
		}
		counts := c.counts[idx]
		counts.StateEntries[post.ActionStateID]++
		switch post.ActionStateID {
		case stateAirDodge:
			counts.AirDodgeCount++
		case stateSpotDodge:
			counts.SpotDodgeCount++
		case stateRollForward, stateRollBackward:
			counts.RollCount++
		case stateCliffCatch:
			counts.LedgegrabCount++
		case stateGrab:
			counts.GrabCount++
		case stateDash:
			// A dash out of a turn that itself came out of a dash is the
			// second half of a dash dance.
			if prev.ActionStateID == stateTurn {
				if before := postFor(all[frame.Number-2], idx); before != nil && before.ActionStateID == stateDash {
					counts.DashDanceCount++
				}
			}
		}
	}
}

// Counts returns per-player action tallies in slot order.
func (c *ActionsComputer) Counts() []ActionCounts {
	out := make([]ActionCounts, 0, len(c.order))
	for _, idx := range c.order {
		counts := *c.counts[idx]
		entries := make(map[uint16]int, len(counts.StateEntries))
		for k, v := range counts.StateEntries {
			entries[k] = v
		}
		counts.StateEntries = entries
		out = append(out, counts)
	}
	return out
}

func (c *ActionsComputer) Fetch() any {
	return c.Counts()
}
