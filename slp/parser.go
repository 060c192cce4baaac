package slp

import (
	"sort"

	"github.com/blang/semver/v4"
	"github.com/rs/zerolog/log"
)

// ParserState tracks the reconstructor's lifecycle.
type ParserState int

const (
	StateAwaitingSettings ParserState = iota
	StateLive
	StateEnded
)

// Placement is one player's final ranking, 0 = first place. Tied players
// share a position.
type Placement struct {
	PlayerIndex int `json:"playerIndex"`
	Position    int `json:"position"`
}

// Parser folds decoded commands into ordered Frame entries, tracking
// finalization and rollback. Wire its HandleEvent to a Stream's OnEvent.
//
// Frames may be corrected by rollback until finalized; consumers that need
// stable data (the stats pipeline) must hang off OnFrameFinalized, which
// fires exactly once per frame, in ascending order.
type Parser struct {
	// OnSettings fires once, when settings become stable (first post-frame
	// after game start).
	OnSettings func(settings *GameStart)
	// OnFrameLive fires when a frame number is first seen. The frame may
	// still change until finalized.
	OnFrameLive func(frame *Frame)
	// OnFrameFinalized fires once per frame, in order, with the complete
	// merged entry.
	OnFrameFinalized func(frame *Frame)
	// OnGameEnd fires when the game-end command arrives, after all remaining
	// frames have been finalized.
	OnGameEnd func(end *GameEnd, placements []Placement)

	state          ParserState
	settings       *GameStart
	settingsStable bool
	eagerFinalize  bool

	frames         map[int32]*Frame
	latestFrame    int32
	haveFrames     bool
	nextToFinalize int32

	end        *GameEnd
	placements []Placement
	rollbacks  RollbackStats
}

// NewParser returns a Parser in the awaiting-settings state.
func NewParser() *Parser {
	return &Parser{frames: make(map[int32]*Frame)}
}

// State returns the current lifecycle state.
func (p *Parser) State() ParserState { return p.state }

// Settings returns the game settings, or nil before game start. Callers that
// need character data settled should wait for OnSettings.
func (p *Parser) Settings() *GameStart { return p.settings }

// SettingsStable reports whether the first post-frame has confirmed the
// settings.
func (p *Parser) SettingsStable() bool { return p.settingsStable }

// End returns the game-end record, or nil while the game is running.
func (p *Parser) End() *GameEnd { return p.end }

// Placements returns the final rankings, or nil while the game is running.
func (p *Parser) Placements() []Placement { return p.placements }

// Rollbacks returns diagnostics about superseded frame versions.
func (p *Parser) Rollbacks() *RollbackStats { return &p.rollbacks }

// LatestFrame returns the highest frame number seen and whether any frame
// has been seen at all.
func (p *Parser) LatestFrame() (int32, bool) { return p.latestFrame, p.haveFrames }

// FrameByNumber returns the frame entry for a number, or nil.
func (p *Parser) FrameByNumber(n int32) *Frame { return p.frames[n] }

// FrameHistory exposes every frame seen so far, keyed by frame number.
func (p *Parser) FrameHistory() map[int32]*Frame { return p.frames }

// FinalizedFrames returns the finalized frames in ascending order.
func (p *Parser) FinalizedFrames() []*Frame {
	var out []*Frame
	if !p.haveFrames {
		return out
	}
	for n := p.firstFrame(); n < p.nextToFinalize; n++ {
		if fr := p.frames[n]; fr != nil {
			out = append(out, fr)
		}
	}
	return out
}

func (p *Parser) firstFrame() int32 {
	first := p.latestFrame
	for n := range p.frames {
		if n < first {
			first = n
		}
	}
	return first
}

// HandleEvent merges one decoded command into the frame collection.
func (p *Parser) HandleEvent(ev Event) error {
	switch rec := ev.Payload.(type) {
	case PayloadSizes:
		// Size table is demuxer state; nothing to merge.
	case *GameStart:
		p.handleGameStart(rec)
	case *FrameStart:
		p.handleFrameStart(rec)
	case *PreFrame:
		p.handlePreFrame(rec)
	case *PostFrame:
		p.handlePostFrame(rec)
	case *ItemUpdate:
		fr := p.frameFor(rec.FrameNumber)
		fr.Items = append(fr.Items, *rec)
	case *FODPlatform:
		fr := p.frameFor(rec.FrameNumber)
		fr.Stage = append(fr.Stage, ev)
	case *Whispy:
		fr := p.frameFor(rec.FrameNumber)
		fr.Stage = append(fr.Stage, ev)
	case *StadiumTransformation:
		fr := p.frameFor(rec.FrameNumber)
		fr.Stage = append(fr.Stage, ev)
	case *FrameBookend:
		p.handleBookend(rec)
	case *GameEnd:
		p.handleGameEnd(rec)
	}
	return nil
}

func (p *Parser) handleGameStart(settings *GameStart) {
	p.settings = settings
	p.state = StateLive
	p.eagerFinalize = settings.SlpVersion.LT(semver.Version{Major: 3})
	log.Debug().
		Str("slpVersion", settings.SlpVersion.String()).
		Uint16("stage", settings.StageID).
		Msg("game start")
}

func (p *Parser) frameFor(n int32) *Frame {
	if fr, ok := p.frames[n]; ok {
		return fr
	}
	fr := &Frame{Number: n}
	p.frames[n] = fr
	if !p.haveFrames {
		p.haveFrames = true
		p.latestFrame = n
		p.nextToFinalize = n
	}
	if n > p.latestFrame {
		if p.eagerFinalize {
			// Pre-3.0 streams have no bookends; a new frame means the
			// previous one cannot be corrected anymore.
			p.finalizeThrough(n - 1)
		}
		p.latestFrame = n
	}
	if p.OnFrameLive != nil {
		p.OnFrameLive(fr)
	}
	return fr
}

// supersede resets a live frame that is being re-delivered by rollback
// resimulation, retaining only diagnostics about the dropped version.
func (p *Parser) supersede(fr *Frame) {
	p.rollbacks.record(fr)
	log.Debug().Int32("frame", fr.Number).Msg("rollback: superseding frame version")
	*fr = Frame{Number: fr.Number}
}

func (p *Parser) handleFrameStart(rec *FrameStart) {
	fr := p.frameFor(rec.FrameNumber)
	if fr.Start != nil {
		p.supersede(fr)
	}
	fr.Start = rec
}

func (p *Parser) handlePreFrame(rec *PreFrame) {
	fr := p.frameFor(rec.FrameNumber)
	slot := fr.Player(rec.PlayerIndex, rec.IsFollower)
	if slot.Pre != nil {
		// No frame-start command preceded this re-delivery (pre-2.2
		// streams); the pre-frame itself marks the new version.
		p.supersede(fr)
		slot = fr.Player(rec.PlayerIndex, rec.IsFollower)
	}
	slot.Pre = rec
}

func (p *Parser) handlePostFrame(rec *PostFrame) {
	fr := p.frameFor(rec.FrameNumber)
	fr.Player(rec.PlayerIndex, rec.IsFollower).Post = rec
	if !p.settingsStable && p.settings != nil {
		p.stabilizeSettings(rec.FrameNumber)
	}
}

// stabilizeSettings confirms the settings once the first post-frame arrives.
// Character data at game start can be provisional (Zelda/Sheik share a
// select-screen slot in older format versions), so the in-game internal
// character from the first post-frames is recorded alongside.
func (p *Parser) stabilizeSettings(frame int32) {
	p.settingsStable = true
	fr := p.frames[frame]
	if fr != nil {
		for i := range p.settings.Players {
			if post := fr.Players[i].Post; post != nil {
				ic := post.InternalCharacterID
				p.settings.Players[i].InternalCharacterID = &ic
			}
		}
	}
	if p.OnSettings != nil {
		p.OnSettings(p.settings)
	}
}

func (p *Parser) handleBookend(rec *FrameBookend) {
	p.frameFor(rec.FrameNumber) // a bookend alone still marks the frame live
	latest := rec.FrameNumber
	if rec.LatestFinalizedFrame != nil && *rec.LatestFinalizedFrame >= FirstFrame {
		latest = *rec.LatestFinalizedFrame
	}
	p.finalizeThrough(latest)
}

func (p *Parser) finalizeThrough(latest int32) {
	if !p.haveFrames {
		return
	}
	for n := p.nextToFinalize; n <= latest; n++ {
		fr := p.frames[n]
		if fr == nil {
			return // gap; cannot finalize past it
		}
		fr.finalized = true
		p.nextToFinalize = n + 1
		if p.OnFrameFinalized != nil {
			p.OnFrameFinalized(fr)
		}
	}
}

func (p *Parser) handleGameEnd(rec *GameEnd) {
	if p.haveFrames {
		p.finalizeThrough(p.latestFrame)
	}
	p.end = rec
	p.state = StateEnded
	p.placements = p.computePlacements(rec)
	log.Debug().Uint8("method", uint8(rec.Method)).Msg("game end")
	if p.OnGameEnd != nil {
		p.OnGameEnd(rec, p.placements)
	}
}

// computePlacements resolves final rankings. Explicit placements are used
// when the format supplies them; a no-contest loses for the quitter; a clock
// expiry is ranked from the final frame's stocks and percent, since the
// format carries no explicit result for that end method.
func (p *Parser) computePlacements(end *GameEnd) []Placement {
	if p.settings == nil {
		return nil
	}
	active := p.settings.ActivePlayers()

	if end.Placements != nil {
		var out []Placement
		for _, idx := range active {
			if pos := end.Placements[idx]; pos >= 0 {
				out = append(out, Placement{PlayerIndex: idx, Position: int(pos)})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	if end.Method == EndNoContest && end.LRASInitiator != nil && len(active) == 2 {
		quitter := int(*end.LRASInitiator)
		for _, idx := range active {
			if idx != quitter {
				return []Placement{
					{PlayerIndex: idx, Position: 0},
					{PlayerIndex: quitter, Position: 1},
				}
			}
		}
		return nil
	}

	return p.placementsFromFinalFrame(active)
}

func (p *Parser) placementsFromFinalFrame(active []int) []Placement {
	if !p.haveFrames {
		return nil
	}
	var last *Frame
	for n := p.nextToFinalize - 1; n >= p.firstFrame(); n-- {
		if fr := p.frames[n]; fr != nil {
			last = fr
			break
		}
	}
	if last == nil {
		return nil
	}

	type standing struct {
		index   int
		stocks  uint8
		percent float32
	}
	var ranked []standing
	for _, idx := range active {
		post := last.Players[idx].Post
		if post == nil {
			return nil
		}
		ranked = append(ranked, standing{idx, post.StocksRemaining, post.Percent})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].stocks != ranked[j].stocks {
			return ranked[i].stocks > ranked[j].stocks
		}
		return ranked[i].percent < ranked[j].percent
	})

	out := make([]Placement, 0, len(ranked))
	pos := 0
	for i, s := range ranked {
		if i > 0 && (s.stocks != ranked[i-1].stocks || s.percent != ranked[i-1].percent) {
			pos = i
		}
		out = append(out, Placement{PlayerIndex: s.index, Position: pos})
	}
	return out
}
