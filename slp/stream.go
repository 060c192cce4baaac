package slp

import (
	"bytes"
	"errors"

	"github.com/rs/zerolog/log"
)

// networkHandshake is the out-of-band greeting a console relay prepends to
// its byte stream. It is not part of the command stream and is skipped.
var networkHandshake = []byte("HELO\x00")

// StreamMode selects how a Stream behaves once a game ends.
type StreamMode int

const (
	// ModeAuto keeps accepting data after a GameEnd command. Used by relays
	// that carry many games back to back.
	ModeAuto StreamMode = iota
	// ModeManual halts processing after a GameEnd command until Restart is
	// called. Used when decoding one discrete game at a time.
	ModeManual
)

// RawHandler receives the exact bytes of each complete command, opcode byte
// included, before decoding. File-capture consumers hang off this.
type RawHandler func(cmd Command, raw []byte)

// EventHandler receives each decoded command in stream order.
type EventHandler func(ev Event) error

// Stream splits an arbitrarily chunked byte sequence into Slippi commands.
// Incomplete trailing data is buffered across Write calls; a partial command
// never produces an event. All callbacks run synchronously inside Write.
type Stream struct {
	mode     StreamMode
	tolerant bool

	sizes PayloadSizes
	buf   []byte
	ended bool

	rawFn   RawHandler
	eventFn EventHandler
	stopFn  func() bool
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithMode sets the end-of-game behavior. The default is ModeAuto.
func WithMode(m StreamMode) StreamOption {
	return func(s *Stream) { s.mode = m }
}

// Tolerant makes malformed-payload failures non-fatal: the failing command is
// treated as if its payload length were 0 and scanning resumes at the next
// byte. If the true payload was non-empty this can desynchronize the scan; it
// is a resilience trade-off, not a guaranteed recovery. Structural errors
// still abort, tolerant or not.
func Tolerant() StreamOption {
	return func(s *Stream) { s.tolerant = true }
}

// OnRaw registers the raw-command callback.
func OnRaw(fn RawHandler) StreamOption {
	return func(s *Stream) { s.rawFn = fn }
}

// OnEvent registers the decoded-command callback.
func OnEvent(fn EventHandler) StreamOption {
	return func(s *Stream) { s.eventFn = fn }
}

// WithStop registers a predicate checked after each decoded command. Once it
// returns true, Write returns without consuming further buffered commands;
// the caller may resume with another Write (or Write(nil)).
func WithStop(fn func() bool) StreamOption {
	return func(s *Stream) { s.stopFn = fn }
}

// NewStream returns a Stream ready to accept bytes.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restart clears the payload size table and the end-of-game flag so a
// ModeManual stream can process the next game. Buffered bytes are kept.
func (s *Stream) Restart() {
	s.sizes = nil
	s.ended = false
}

// Sizes returns the payload size table announced by the current game, or nil
// before MessageSizes has been seen.
func (s *Stream) Sizes() PayloadSizes {
	return s.sizes
}

// Write feeds the next chunk of the byte stream. It implements io.Writer:
// every byte is accepted (buffered if incomplete), so n is always len(p)
// unless a decode error aborts processing.
func (s *Stream) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	if err := s.process(); err != nil {
		return len(p), err
	}
	return len(p), nil
}

func (s *Stream) process() error {
	data := s.buf
	pos := 0
	defer func() {
		// Keep the unconsumed suffix for the next Write.
		s.buf = append(s.buf[:0:0], data[pos:]...)
	}()

	for pos < len(data) {
		if s.ended && s.mode == ModeManual {
			return nil
		}
		rest := data[pos:]
		if len(rest) < len(networkHandshake) {
			if bytes.Equal(rest, networkHandshake[:len(rest)]) {
				return nil // possible partial handshake, wait for more data
			}
		} else if bytes.Equal(rest[:len(networkHandshake)], networkHandshake) {
			pos += len(networkHandshake)
			continue
		}
		cmd := Command(rest[0])

		var size int
		switch {
		case cmd == CmdMessageSizes:
			if len(rest) < 2 {
				return nil // need the self-describing length byte
			}
			size = int(rest[1])
		case s.sizes == nil:
			// No size table yet: only MessageSizes can be framed.
			pos++
			continue
		default:
			declared, known := s.sizes[cmd]
			if !known {
				log.Debug().Str("command", cmd.String()).Msg("skipping unknown command")
				pos++
				continue
			}
			size = int(declared)
		}

		if len(rest) < 1+size {
			return nil // incomplete command, wait for more data
		}
		raw := rest[:1+size]
		if s.rawFn != nil {
			s.rawFn(cmd, raw)
		}
		if err := s.emit(cmd, raw[1:]); err != nil {
			if !s.tolerant || errors.Is(err, ErrStructural) {
				return err
			}
			log.Warn().Err(err).Str("command", cmd.String()).Msg("tolerant mode: dropping command, resuming after opcode byte")
			pos++
			continue
		}
		pos += 1 + size

		if cmd == CmdGameEnd {
			s.ended = true
		}
		if s.stopFn != nil && s.stopFn() {
			return nil
		}
	}
	return nil
}

func (s *Stream) emit(cmd Command, body []byte) error {
	if cmd == CmdMessageSizes {
		sizes, err := decodePayloadSizes(body)
		if err != nil {
			return err
		}
		s.sizes = sizes
		if s.eventFn != nil {
			return s.eventFn(Event{Command: cmd, Payload: sizes})
		}
		return nil
	}
	record, err := decodeCommand(cmd, body)
	if err != nil {
		return err
	}
	if record == nil || s.eventFn == nil {
		return nil
	}
	return s.eventFn(Event{Command: cmd, Payload: record})
}
