// Package stats derives gameplay analytics (stocks, conversions, combos,
// actions, inputs, stadium events) from finalized replay frames.
package stats

import (
	"github.com/zaesho/slp-dissect/slp"
)

// FrameHistory is every frame seen so far in one game, keyed by number.
type FrameHistory = map[int32]*slp.Frame

// Computer is one independent stat accumulator. The coordinator calls Setup
// when a game's settings become stable, ProcessFrame once per finalized
// frame in order, and Fetch at any time for the results accumulated so far.
// Fetch must be idempotent between ProcessFrame calls.
type Computer interface {
	Setup(settings *slp.GameStart)
	ProcessFrame(frame *slp.Frame, all FrameHistory)
	Fetch() any
}

// Stats feeds finalized frames to an ordered collection of computers. One
// instance serves one game at a time; Setup resets everything for the next.
type Stats struct {
	computers []Computer
	settings  *slp.GameStart
	frames    FrameHistory
	lastFrame int32
	haveFrame bool
}

// New returns a coordinator over the given computers. They run in the order
// given, once per finalized frame.
func New(computers ...Computer) *Stats {
	return &Stats{computers: computers}
}

// Setup resets all computers for a new game.
func (s *Stats) Setup(settings *slp.GameStart) {
	s.settings = settings
	s.frames = make(FrameHistory)
	s.haveFrame = false
	for _, c := range s.computers {
		c.Setup(settings)
	}
}

// ProcessFrame records a finalized frame and dispatches it to every
// computer, in registration order.
func (s *Stats) ProcessFrame(frame *slp.Frame) {
	if s.frames == nil {
		return // settings never stabilized; nothing to attribute stats to
	}
	s.frames[frame.Number] = frame
	s.lastFrame = frame.Number
	s.haveFrame = true
	for _, c := range s.computers {
		c.ProcessFrame(frame, s.frames)
	}
}

// LastFrame returns the latest processed frame number.
func (s *Stats) LastFrame() (int32, bool) {
	return s.lastFrame, s.haveFrame
}

// Result is the full analytics output for one game.
type Result struct {
	Stage        uint16           `json:"stage"`
	StageName    string           `json:"stageName"`
	LastFrame    int32            `json:"lastFrame"`
	Complete     bool             `json:"complete"`
	Placements   []slp.Placement  `json:"placements,omitempty"`
	Stocks       []Stock          `json:"stocks"`
	Conversions  []Conversion     `json:"conversions"`
	Combos       []Combo          `json:"combos"`
	Actions      []ActionCounts   `json:"actions"`
	Inputs       []PlayerInputs   `json:"inputs"`
	Overall      []Overall        `json:"overall"`
	TargetBreaks []TargetBreak    `json:"targetBreaks,omitempty"`
	HomeRun      *HomeRunDistance `json:"homeRun,omitempty"`
}

// Compute runs the default computer set over a decoded game. Games that
// never ended yield Complete=false; their numbers are partial, not final.
// Mode-specific computers only run for their game mode.
func Compute(game *slp.Game) (*Result, error) {
	if game.Settings == nil {
		return nil, ErrNoSettings
	}

	stocks := NewStockComputer()
	conversions := NewConversionComputer()
	combos := NewComboComputer()
	actions := NewActionsComputer()
	inputs := NewInputsComputer()
	computers := []Computer{stocks, conversions, combos, actions, inputs}

	var targets *TargetBreakComputer
	var homeRun *HomeRunComputer
	switch game.Settings.GameMode {
	case slp.ModeTargetTest:
		targets = NewTargetBreakComputer()
		computers = append(computers, targets)
	case slp.ModeHomeRunContest:
		homeRun = NewHomeRunComputer()
		computers = append(computers, homeRun)
	}

	coordinator := New(computers...)
	coordinator.Setup(game.Settings)
	for _, frame := range game.Frames {
		coordinator.ProcessFrame(frame)
	}

	result := &Result{
		Stage:       game.Settings.StageID,
		StageName:   slp.StageName(game.Settings.StageID),
		Complete:    game.Complete(),
		Placements:  game.Placements,
		Stocks:      stocks.Stocks(),
		Conversions: conversions.Conversions(),
		Combos:      combos.Combos(),
		Actions:     actions.Counts(),
		Inputs:      inputs.Inputs(),
	}
	if last, ok := coordinator.LastFrame(); ok {
		result.LastFrame = last
	}
	result.Overall = ComputeOverall(game.Settings, result.Conversions, result.Inputs, result.LastFrame)
	if targets != nil {
		result.TargetBreaks = targets.Breaks()
	}
	if homeRun != nil {
		result.HomeRun = homeRun.Distance()
	}
	return result, nil
}
