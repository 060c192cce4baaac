package slp

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// payload wraps one command's payload bytes with bounds-aware fixed-offset
// accessors. Reads past the delivered length return the zero value (plain
// accessors) or nil (pointer accessors); newer streams append fields, so a
// short payload just means an older format version.
type payload struct {
	buf []byte
}

func (p payload) has(off, n int) bool {
	return off >= 0 && off+n <= len(p.buf)
}

func (p payload) uint8(off int) uint8 {
	if !p.has(off, 1) {
		return 0
	}
	return p.buf[off]
}

func (p payload) int8(off int) int8 {
	return int8(p.uint8(off))
}

func (p payload) bool(off int) bool {
	return p.uint8(off) != 0
}

func (p payload) uint16(off int) uint16 {
	if !p.has(off, 2) {
		return 0
	}
	return binary.BigEndian.Uint16(p.buf[off : off+2])
}

func (p payload) uint32(off int) uint32 {
	if !p.has(off, 4) {
		return 0
	}
	return binary.BigEndian.Uint32(p.buf[off : off+4])
}

func (p payload) int32(off int) int32 {
	return int32(p.uint32(off))
}

func (p payload) float32(off int) float32 {
	if !p.has(off, 4) {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(p.buf[off : off+4]))
}

func (p payload) uint8Ptr(off int) *uint8 {
	if !p.has(off, 1) {
		return nil
	}
	v := p.buf[off]
	return &v
}

func (p payload) int8Ptr(off int) *int8 {
	if !p.has(off, 1) {
		return nil
	}
	v := int8(p.buf[off])
	return &v
}

func (p payload) boolPtr(off int) *bool {
	if !p.has(off, 1) {
		return nil
	}
	v := p.buf[off] != 0
	return &v
}

func (p payload) uint16Ptr(off int) *uint16 {
	if !p.has(off, 2) {
		return nil
	}
	v := binary.BigEndian.Uint16(p.buf[off : off+2])
	return &v
}

func (p payload) uint32Ptr(off int) *uint32 {
	if !p.has(off, 4) {
		return nil
	}
	v := binary.BigEndian.Uint32(p.buf[off : off+4])
	return &v
}

func (p payload) int32Ptr(off int) *int32 {
	if !p.has(off, 4) {
		return nil
	}
	v := int32(binary.BigEndian.Uint32(p.buf[off : off+4]))
	return &v
}

func (p payload) float32Ptr(off int) *float32 {
	if !p.has(off, 4) {
		return nil
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(p.buf[off : off+4]))
	return &v
}

// ascii reads a fixed-width NUL-padded ASCII field.
func (p payload) ascii(off, n int) string {
	if !p.has(off, n) {
		return ""
	}
	raw := p.buf[off : off+n]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// shiftJIS reads a fixed-width NUL-padded Shift-JIS field. Nametags, display
// names, and connect codes are stored this way by the game.
func (p payload) shiftJIS(off, n int) string {
	if !p.has(off, n) {
		return ""
	}
	raw := p.buf[off : off+n]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if len(raw) == 0 {
		return ""
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	// The game stores fullwidth forms; fold the common ones back to ASCII so
	// connect codes like "ＡＢＣ＃１２３" compare as "ABC#123".
	return foldFullwidth(string(decoded))
}

func foldFullwidth(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0xff01 && r <= 0xff5e: // fullwidth ASCII block
			r = r - 0xff01 + '!'
		case r == 0x3000: // ideographic space
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}
