package slp

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/blang/semver/v4"
)

// Payload sizes used by the synthetic streams below. They match a v3.16-era
// replay: every optional field present.
const (
	testGameStartSize  = 760
	testPreFrameSize   = 63
	testPostFrameSize  = 80
	testItemSize       = 44
	testFrameStartSize = 12
	testBookendSize    = 8
	testGameEndSize    = 6
)

// testPayload is a fixed-size big-endian payload under construction.
type testPayload []byte

func newPayload(n int) testPayload { return make(testPayload, n) }

func (p testPayload) u8(off int, v uint8)  { p[off] = v }
func (p testPayload) u16(off int, v uint16) {
	binary.BigEndian.PutUint16(p[off:], v)
}
func (p testPayload) u32(off int, v uint32) {
	binary.BigEndian.PutUint32(p[off:], v)
}
func (p testPayload) i32(off int, v int32) {
	binary.BigEndian.PutUint32(p[off:], uint32(v))
}
func (p testPayload) f32(off int, v float32) {
	binary.BigEndian.PutUint32(p[off:], math.Float32bits(v))
}
func (p testPayload) str(off int, s string) { copy(p[off:], s) }

func command(cmd Command, payload []byte) []byte {
	return append([]byte{byte(cmd)}, payload...)
}

type sizeEntry struct {
	cmd  Command
	size uint16
}

var defaultSizeEntries = []sizeEntry{
	{CmdGameStart, testGameStartSize},
	{CmdPreFrame, testPreFrameSize},
	{CmdPostFrame, testPostFrameSize},
	{CmdItemUpdate, testItemSize},
	{CmdFrameStart, testFrameStartSize},
	{CmdFrameBookend, testBookendSize},
	{CmdGameEnd, testGameEndSize},
}

// sizesCommand builds a complete MessageSizes command, optionally announcing
// extra opcodes beyond the defaults.
func sizesCommand(extra ...sizeEntry) []byte {
	return sizesCommandFor(append(append([]sizeEntry(nil), defaultSizeEntries...), extra...))
}

func sizesCommandFor(entries []sizeEntry) []byte {
	payload := newPayload(1 + 3*len(entries))
	payload.u8(0, uint8(len(payload)))
	for i, e := range entries {
		payload.u8(1+3*i, uint8(e.cmd))
		payload.u16(2+3*i, e.size)
	}
	return command(CmdMessageSizes, payload)
}

// gameStartPayload builds a two-player online game start block: Fox dittos on
// Battlefield with four stocks, connect codes, and a ranked match id.
func gameStartPayload(version semver.Version) testPayload {
	p := newPayload(testGameStartSize)
	p.u8(0, uint8(version.Major))
	p.u8(1, uint8(version.Minor))
	p.u8(2, uint8(version.Patch))
	p.u8(4, ModeOnline)
	p.u16(18, 31) // Battlefield
	p.u32(20, 480)
	for i := 0; i < 4; i++ {
		base := 100 + 36*i
		if i < 2 {
			p.u8(base, 2) // Fox
			p.u8(base+1, uint8(PlayerHuman))
			p.u8(base+2, 4)
		} else {
			p.u8(base+1, uint8(PlayerEmpty))
		}
	}
	p.u32(316, 0x12345678)
	p.str(420, "Player One")
	p.str(451, "Player Two")
	p.str(544, "ABC#123")
	p.str(554, "XYZ#456")
	p.str(701, "mode.ranked-2024-08-27-abc123")
	p.u32(752, 1)
	return p
}

func preFramePayload(frame int32, idx int) testPayload {
	p := newPayload(testPreFrameSize)
	p.i32(0, frame)
	p.u8(4, uint8(idx))
	return p
}

func postFramePayload(frame int32, idx int, stocks uint8, percent float32) testPayload {
	p := newPayload(testPostFrameSize)
	p.i32(0, frame)
	p.u8(4, uint8(idx))
	p.u8(6, 1)     // Fox, internal ID
	p.u16(7, 0x0e) // Wait
	p.f32(21, percent)
	p.u8(32, stocks)
	return p
}

func frameStartPayload(frame int32) testPayload {
	p := newPayload(testFrameStartSize)
	p.i32(0, frame)
	p.u32(4, 0xcafe)
	return p
}

func bookendPayload(frame, latest int32) testPayload {
	p := newPayload(testBookendSize)
	p.i32(0, frame)
	p.i32(4, latest)
	return p
}

// gameEndPayload carries no explicit placements (all slots -1) unless the
// test overwrites them.
func gameEndPayload(method GameEndMethod, lras int8) testPayload {
	p := newPayload(testGameEndSize)
	p.u8(0, uint8(method))
	p.u8(1, uint8(lras))
	for i := 2; i < 6; i++ {
		p.u8(i, 0xff)
	}
	return p
}

// wholeFrame emits frame-start, both players' pre- and post-frames, and a
// bookend finalizing through the same frame.
func wholeFrame(n int32, stocks [2]uint8, percents [2]float32) []byte {
	var b bytes.Buffer
	b.Write(command(CmdFrameStart, frameStartPayload(n)))
	for idx := 0; idx < 2; idx++ {
		b.Write(command(CmdPreFrame, preFramePayload(n, idx)))
	}
	for idx := 0; idx < 2; idx++ {
		b.Write(command(CmdPostFrame, postFramePayload(n, idx, stocks[idx], percents[idx])))
	}
	b.Write(command(CmdFrameBookend, bookendPayload(n, n)))
	return b.Bytes()
}

// completeGameStream is a minimal whole game: three frames, player 1 down a
// stock at the end, resolved by a regular game-end.
func completeGameStream(version semver.Version) []byte {
	var b bytes.Buffer
	b.Write(sizesCommand())
	b.Write(command(CmdGameStart, gameStartPayload(version)))
	b.Write(wholeFrame(FirstFrame, [2]uint8{4, 4}, [2]float32{0, 0}))
	b.Write(wholeFrame(FirstFrame+1, [2]uint8{4, 4}, [2]float32{0, 52.5}))
	b.Write(wholeFrame(FirstFrame+2, [2]uint8{4, 3}, [2]float32{12, 0}))
	b.Write(command(CmdGameEnd, gameEndPayload(EndGame, -1)))
	return b.Bytes()
}
