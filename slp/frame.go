package slp

// Frame number constants. The stream begins counting before the match is
// playable; in-game time starts at frame -39 and hits 0 when "GO" ends.
const (
	FirstFrame         int32 = -123
	FirstPlayableFrame int32 = -39
)

// MaxPlayers is the number of player slots in one game.
const MaxPlayers = 4

// PlayerFrame pairs the pre- and post-frame updates for one character slot
// on one frame. Either half may be nil until its command arrives.
type PlayerFrame struct {
	Pre  *PreFrame  `json:"pre,omitempty"`
	Post *PostFrame `json:"post,omitempty"`
}

// Frame is the assembled state of one simulation tick: the frame-start
// record, leader and follower updates per slot, item updates, and
// stage-specific events, in arrival order.
type Frame struct {
	Number    int32                   `json:"frame"`
	Start     *FrameStart             `json:"start,omitempty"`
	Players   [MaxPlayers]PlayerFrame `json:"players"`
	Followers [MaxPlayers]PlayerFrame `json:"followers"`
	Items     []ItemUpdate            `json:"items,omitempty"`
	Stage     []Event                 `json:"stageEvents,omitempty"`

	finalized bool
}

// Finalized reports whether the stream has confirmed that no rollback
// correction for this frame will arrive.
func (f *Frame) Finalized() bool {
	return f.finalized
}

// Player returns the leader or follower entry for a slot.
func (f *Frame) Player(index int, follower bool) *PlayerFrame {
	if index < 0 || index >= MaxPlayers {
		return nil
	}
	if follower {
		return &f.Followers[index]
	}
	return &f.Players[index]
}

// entryCount is the number of populated sub-records, used for rollback
// diagnostics when a frame version is superseded.
func (f *Frame) entryCount() int {
	n := 0
	if f.Start != nil {
		n++
	}
	for i := range f.Players {
		if f.Players[i].Pre != nil {
			n++
		}
		if f.Players[i].Post != nil {
			n++
		}
		if f.Followers[i].Pre != nil {
			n++
		}
		if f.Followers[i].Post != nil {
			n++
		}
	}
	return n + len(f.Items) + len(f.Stage)
}

// RollbackStats records superseded frame versions observed during netplay
// resimulation. Stale data is never exposed as current; only these counters
// survive.
type RollbackStats struct {
	// CountByFrame maps a frame number to how many times data for it was
	// superseded before finalization.
	CountByFrame map[int32]int `json:"countByFrame,omitempty"`
	// Lengths holds the populated-entry count of each superseded version, in
	// the order the supersessions happened.
	Lengths []int `json:"lengths,omitempty"`
}

func (r *RollbackStats) record(frame *Frame) {
	if r.CountByFrame == nil {
		r.CountByFrame = make(map[int32]int)
	}
	r.CountByFrame[frame.Number]++
	r.Lengths = append(r.Lengths, frame.entryCount())
}

// Total returns the overall number of supersessions.
func (r *RollbackStats) Total() int {
	n := 0
	for _, c := range r.CountByFrame {
		n += c
	}
	return n
}
