package slp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic identifies a zstandard frame; archived replays are often stored
// as .slp.zst.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// rawHeader is the first byte of a UBJSON container produced by the desktop
// app; the command stream starts 15 bytes in, past the "raw" element key.
const (
	rawHeaderByte   = '{'
	rawHeaderOffset = 15
)

// Game is a fully decoded replay.
type Game struct {
	Settings   *GameStart      `json:"settings"`
	Frames     []*Frame        `json:"frames"`
	End        *GameEnd        `json:"end,omitempty"`
	Placements []Placement     `json:"placements,omitempty"`
	Rollbacks  RollbackStats   `json:"rollbacks"`
	Sizes      PayloadSizes    `json:"-"`
	frameIndex map[int32]*Frame
}

// Frame returns the finalized frame entry for a number, or nil.
func (g *Game) Frame(n int32) *Frame {
	return g.frameIndex[n]
}

// Complete reports whether the stream carried a game-end command. Stats for
// an incomplete game should be treated as partial, never as final zeros.
func (g *Game) Complete() bool {
	return g.End != nil
}

// Decode feeds an entire byte source through a Stream into the given parser.
// The source may be a plain .slp command stream, a UBJSON container from the
// desktop app, or either of those inside a zstd frame.
func Decode(r io.Reader, parser *Parser) error {
	br := bufio.NewReaderSize(r, 64*1024)

	magic, err := br.Peek(4)
	if err == nil && bytes.Equal(magic, zstdMagic) {
		zr, zerr := zstd.NewReader(br)
		if zerr != nil {
			return fmt.Errorf("opening zstd stream: %w", zerr)
		}
		defer zr.Close()
		br = bufio.NewReaderSize(zr, 64*1024)
	}

	first, err := br.Peek(1)
	if err != nil {
		return fmt.Errorf("reading stream head: %w", err)
	}
	if first[0] == rawHeaderByte {
		if _, err := br.Discard(rawHeaderOffset); err != nil {
			return fmt.Errorf("skipping container header: %w", err)
		}
	}

	stream := NewStream(
		WithMode(ModeManual),
		OnEvent(parser.HandleEvent),
	)
	// The UBJSON container appends metadata after the raw element; stop once
	// the game has ended rather than scanning into it.
	if _, err := io.Copy(stream, &gameEndLimitedReader{br: br, parser: parser}); err != nil {
		return err
	}
	return nil
}

// gameEndLimitedReader stops the copy loop once the parser reaches the ended
// state, so trailing container metadata is not misread as commands.
type gameEndLimitedReader struct {
	br     *bufio.Reader
	parser *Parser
}

func (r *gameEndLimitedReader) Read(p []byte) (int, error) {
	if r.parser.State() == StateEnded {
		return 0, io.EOF
	}
	return r.br.Read(p)
}

// NewGame decodes a complete replay from r.
func NewGame(r io.Reader) (*Game, error) {
	parser := NewParser()
	game := &Game{frameIndex: make(map[int32]*Frame)}
	parser.OnFrameFinalized = func(fr *Frame) {
		game.Frames = append(game.Frames, fr)
		game.frameIndex[fr.Number] = fr
	}
	if err := Decode(r, parser); err != nil {
		return nil, err
	}
	if parser.Settings() == nil {
		return nil, fmt.Errorf("no game start found in stream")
	}
	game.Settings = parser.Settings()
	game.End = parser.End()
	game.Placements = parser.Placements()
	game.Rollbacks = *parser.Rollbacks()
	return game, nil
}

// NewGameAt decodes a replay from a random-access source, e.g. a file that
// is also being read elsewhere.
func NewGameAt(ra io.ReaderAt, size int64) (*Game, error) {
	return NewGame(io.NewSectionReader(ra, 0, size))
}

// ParseFile decodes the replay at path. Scoped acquisition of the handle
// stays here; the decode core never opens files itself.
func ParseFile(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	game, err := NewGame(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return game, nil
}
