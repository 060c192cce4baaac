package slp

import (
	"bytes"
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStream(t *testing.T, parser *Parser, raw []byte) {
	t.Helper()
	stream := NewStream(OnEvent(parser.HandleEvent))
	_, err := stream.Write(raw)
	require.NoError(t, err)
}

func TestParserSettingsStabilizeOnFirstPostFrame(t *testing.T) {
	parser := NewParser()
	events := 0
	parser.OnSettings = func(settings *GameStart) { events++ }
	stream := NewStream(OnEvent(parser.HandleEvent))

	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	_, err := stream.Write(b.Bytes())
	require.NoError(t, err)

	assert.Equal(t, StateLive, parser.State())
	assert.False(t, parser.SettingsStable(), "settings are provisional until the first post-frame")
	assert.Equal(t, 0, events)

	_, err = stream.Write(wholeFrame(FirstFrame, [2]uint8{4, 4}, [2]float32{0, 0}))
	require.NoError(t, err)
	assert.True(t, parser.SettingsStable())
	assert.Equal(t, 1, events)

	_, err = stream.Write(wholeFrame(FirstFrame+1, [2]uint8{4, 4}, [2]float32{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, 1, events, "settings stabilize exactly once")

	ic := parser.Settings().Players[0].InternalCharacterID
	require.NotNil(t, ic)
	assert.Equal(t, uint8(1), *ic, "in-game character recorded from the first post-frame")
}

func TestParserFinalizesInOrder(t *testing.T) {
	parser := NewParser()
	var finalized []int32
	parser.OnFrameFinalized = func(fr *Frame) {
		assert.True(t, fr.Finalized())
		finalized = append(finalized, fr.Number)
	}

	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	for n := FirstFrame; n < FirstFrame+4; n++ {
		b.Write(wholeFrame(n, [2]uint8{4, 4}, [2]float32{0, 0}))
	}
	runStream(t, parser, b.Bytes())

	assert.Equal(t, []int32{FirstFrame, FirstFrame + 1, FirstFrame + 2, FirstFrame + 3}, finalized)
	assert.Len(t, parser.FinalizedFrames(), 4)
}

func TestParserBookendLagsBehindCurrentFrame(t *testing.T) {
	// Online games finalize a few frames behind the one being played; frames
	// newer than the finalization point stay open.
	parser := NewParser()
	var finalized []int32
	parser.OnFrameFinalized = func(fr *Frame) { finalized = append(finalized, fr.Number) }

	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	for n := FirstFrame; n < FirstFrame+3; n++ {
		b.Write(command(CmdFrameStart, frameStartPayload(n)))
		b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
		b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 0)))
		b.Write(command(CmdFrameBookend, bookendPayload(n, FirstFrame)))
	}
	runStream(t, parser, b.Bytes())

	assert.Equal(t, []int32{FirstFrame}, finalized)
	assert.False(t, parser.FrameByNumber(FirstFrame+2).Finalized())
}

func TestParserRollbackSupersedesFrame(t *testing.T) {
	parser := NewParser()
	var finalized []int32
	parser.OnFrameFinalized = func(fr *Frame) { finalized = append(finalized, fr.Number) }

	n := FirstFrame
	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	// First delivery of the frame, later invalidated by resimulation.
	b.Write(command(CmdFrameStart, frameStartPayload(n)))
	b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 10)))
	// The frame arrives again: rollback. Only this version survives.
	b.Write(command(CmdFrameStart, frameStartPayload(n)))
	b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 0)))
	b.Write(command(CmdFrameBookend, bookendPayload(n, n)))
	runStream(t, parser, b.Bytes())

	assert.Equal(t, []int32{n}, finalized, "a rolled-back frame still finalizes exactly once")

	fr := parser.FrameByNumber(n)
	require.NotNil(t, fr)
	require.NotNil(t, fr.Players[0].Post)
	assert.Equal(t, float32(0), fr.Players[0].Post.Percent, "superseded data must not leak through")

	assert.Equal(t, 1, parser.Rollbacks().Total())
	assert.Equal(t, 1, parser.Rollbacks().CountByFrame[n])
	require.Len(t, parser.Rollbacks().Lengths, 1)
	assert.Equal(t, 3, parser.Rollbacks().Lengths[0], "dropped version had start, pre, and post")
}

func TestParserRollbackWithoutFrameStart(t *testing.T) {
	// Pre-2.2 streams have no frame-start command; a duplicate pre-frame for
	// an occupied slot marks the new version.
	parser := NewParser()

	n := FirstFrame
	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(semver.Version{Major: 3, Minor: 0, Patch: 0})))
	b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 55)))
	b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 12)))
	runStream(t, parser, b.Bytes())

	assert.Equal(t, 1, parser.Rollbacks().Total())
	assert.Equal(t, float32(12), parser.FrameByNumber(n).Players[0].Post.Percent)
}

func TestParserEagerFinalizationPreRollbackVersions(t *testing.T) {
	// Streams older than 3.0 cannot roll back; a frame is final as soon as
	// the next one begins.
	parser := NewParser()
	var finalized []int32
	parser.OnFrameFinalized = func(fr *Frame) { finalized = append(finalized, fr.Number) }

	stream := NewStream(OnEvent(parser.HandleEvent))
	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(semver.Version{Major: 2, Minor: 0, Patch: 0})))
	for n := FirstFrame; n < FirstFrame+3; n++ {
		b.Write(command(CmdPreFrame, preFramePayload(n, 0)))
		b.Write(command(CmdPostFrame, postFramePayload(n, 0, 4, 0)))
	}
	_, err := stream.Write(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []int32{FirstFrame, FirstFrame + 1}, finalized)

	_, err = stream.Write(command(CmdGameEnd, gameEndPayload(EndGame, -1)))
	require.NoError(t, err)
	assert.Equal(t, []int32{FirstFrame, FirstFrame + 1, FirstFrame + 2}, finalized,
		"game end finalizes the trailing frame")
}

func TestParserGameEndFinalizesRemainder(t *testing.T) {
	parser := NewParser()
	var finalized []int32
	parser.OnFrameFinalized = func(fr *Frame) { finalized = append(finalized, fr.Number) }
	ended := false
	parser.OnGameEnd = func(end *GameEnd, placements []Placement) {
		ended = true
		assert.Len(t, finalized, 2, "remaining frames finalize before the end callback")
	}

	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	b.Write(command(CmdFrameStart, frameStartPayload(FirstFrame)))
	b.Write(command(CmdPostFrame, postFramePayload(FirstFrame, 0, 4, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(FirstFrame, 1, 4, 0)))
	b.Write(command(CmdFrameStart, frameStartPayload(FirstFrame+1)))
	b.Write(command(CmdPostFrame, postFramePayload(FirstFrame+1, 0, 4, 0)))
	b.Write(command(CmdPostFrame, postFramePayload(FirstFrame+1, 1, 4, 0)))
	b.Write(command(CmdGameEnd, gameEndPayload(EndGame, -1)))
	runStream(t, parser, b.Bytes())

	assert.True(t, ended)
	assert.Equal(t, StateEnded, parser.State())
	require.NotNil(t, parser.End())
	assert.Equal(t, EndGame, parser.End().Method)
}

func placementsStream(stocks [2]uint8, percents [2]float32, end testPayload) []byte {
	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(testVersion)))
	b.Write(wholeFrame(FirstFrame, [2]uint8{4, 4}, [2]float32{0, 0}))
	b.Write(wholeFrame(FirstFrame+1, stocks, percents))
	b.Write(command(CmdGameEnd, end))
	return b.Bytes()
}

func TestParserPlacementsFromTimeout(t *testing.T) {
	parser := NewParser()
	runStream(t, parser, placementsStream(
		[2]uint8{2, 2}, [2]float32{40.2, 60.5},
		gameEndPayload(EndTime, -1),
	))

	require.Len(t, parser.Placements(), 2)
	assert.Equal(t, Placement{PlayerIndex: 0, Position: 0}, parser.Placements()[0],
		"equal stocks rank by lower percent")
	assert.Equal(t, Placement{PlayerIndex: 1, Position: 1}, parser.Placements()[1])
}

func TestParserPlacementsStocksBeatPercent(t *testing.T) {
	parser := NewParser()
	runStream(t, parser, placementsStream(
		[2]uint8{1, 3}, [2]float32{0, 140},
		gameEndPayload(EndTime, -1),
	))

	require.Len(t, parser.Placements(), 2)
	assert.Equal(t, Placement{PlayerIndex: 1, Position: 0}, parser.Placements()[0])
}

func TestParserPlacementsTieSharesPosition(t *testing.T) {
	parser := NewParser()
	runStream(t, parser, placementsStream(
		[2]uint8{2, 2}, [2]float32{50, 50},
		gameEndPayload(EndTime, -1),
	))

	require.Len(t, parser.Placements(), 2)
	assert.Equal(t, 0, parser.Placements()[0].Position)
	assert.Equal(t, 0, parser.Placements()[1].Position)
}

func TestParserNoContestLosesForQuitter(t *testing.T) {
	parser := NewParser()
	runStream(t, parser, placementsStream(
		[2]uint8{4, 4}, [2]float32{0, 0},
		gameEndPayload(EndNoContest, 1),
	))

	require.Len(t, parser.Placements(), 2)
	assert.Equal(t, Placement{PlayerIndex: 0, Position: 0}, parser.Placements()[0])
	assert.Equal(t, Placement{PlayerIndex: 1, Position: 1}, parser.Placements()[1])
}

func TestParserExplicitPlacementsWin(t *testing.T) {
	end := gameEndPayload(EndResolved, -1)
	end.u8(2, 1) // player 0 placed second
	end.u8(3, 0) // player 1 placed first

	parser := NewParser()
	runStream(t, parser, placementsStream([2]uint8{1, 1}, [2]float32{0, 120}, end))

	require.Len(t, parser.Placements(), 2)
	assert.Contains(t, parser.Placements(), Placement{PlayerIndex: 1, Position: 0},
		"explicit placements beat the stocks-and-percent heuristic")
	assert.Contains(t, parser.Placements(), Placement{PlayerIndex: 0, Position: 1})
}
