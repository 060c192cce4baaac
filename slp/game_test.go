package slp

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameFromRawStream(t *testing.T) {
	game, err := NewGame(bytes.NewReader(completeGameStream(testVersion)))
	require.NoError(t, err)

	require.NotNil(t, game.Settings)
	assert.Equal(t, uint16(31), game.Settings.StageID)
	assert.True(t, game.Complete())
	assert.Len(t, game.Frames, 3)
	assert.Equal(t, 0, game.Rollbacks.Total())

	fr := game.Frame(FirstFrame + 2)
	require.NotNil(t, fr)
	require.NotNil(t, fr.Players[1].Post)
	assert.Equal(t, uint8(3), fr.Players[1].Post.StocksRemaining)

	require.Len(t, game.Placements, 2)
	assert.Equal(t, Placement{PlayerIndex: 0, Position: 0}, game.Placements[0])
}

func TestNewGameUBJSONContainer(t *testing.T) {
	// Desktop-app layout: 15-byte container prefix, then the raw command
	// stream, then metadata the decoder must not misread as commands.
	var b bytes.Buffer
	b.WriteByte('{')
	b.Write(bytes.Repeat([]byte{0xaa}, 14))
	b.Write(completeGameStream(testVersion))
	b.WriteString("U\x08metadata{U\x07startAtSU\x182024-08-27T12:00:00Z}}")

	game, err := NewGame(&b)
	require.NoError(t, err)
	assert.True(t, game.Complete())
	assert.Len(t, game.Frames, 3)
}

func TestNewGameZstdCompressed(t *testing.T) {
	var compressed bytes.Buffer
	enc, err := zstd.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = enc.Write(completeGameStream(testVersion))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	game, err := NewGame(&compressed)
	require.NoError(t, err)
	assert.True(t, game.Complete())
	assert.Len(t, game.Frames, 3)
}

func TestNewGameWithoutGameStart(t *testing.T) {
	_, err := NewGame(bytes.NewReader(sizesCommand()))
	require.Error(t, err)
}

func TestNewGameAt(t *testing.T) {
	raw := completeGameStream(testVersion)
	game, err := NewGameAt(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	assert.Len(t, game.Frames, 3)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.slp")
	require.NoError(t, os.WriteFile(path, completeGameStream(testVersion), 0o644))

	game, err := ParseFile(path)
	require.NoError(t, err)
	assert.True(t, game.Complete())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.slp"))
	require.Error(t, err)
}
