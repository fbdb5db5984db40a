// Package input turns terminal bytes into thrust/start/quit events and
// folds thrust events into the single held-thrust flag read by the plane.
package input

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultKeyHold is how long the thrust key is considered "held" after its
// last repeat. Terminals send no key-up, only auto-repeat, and the first
// repeat typically arrives about 500ms after the press.
const DefaultKeyHold = 600 * time.Millisecond

// maxPending bounds a partial escape sequence carried between polls.
const maxPending = 32

// Source identifies the device an event came from.
type Source int

const (
	SourceKey Source = iota
	SourceMouse
	SourceTouch
)

func (s Source) String() string {
	switch s {
	case SourceKey:
		return "key"
	case SourceMouse:
		return "mouse"
	case SourceTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Kind is the type of an input event.
type Kind int

const (
	ThrustDown Kind = iota
	ThrustUp
	Start
	Quit
)

func (k Kind) String() string {
	switch k {
	case ThrustDown:
		return "thrust-down"
	case ThrustUp:
		return "thrust-up"
	case Start:
		return "start"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is a single edge from an input device.
type Event struct {
	Kind   Kind
	Source Source
}

// State is the thrust flag shared by every input source.
type State struct {
	ThrustHeld bool
}

// Apply folds an event into the state. Last writer wins across sources.
func (s *State) Apply(ev Event) {
	switch ev.Kind {
	case ThrustDown:
		s.ThrustHeld = true
	case ThrustUp:
		s.ThrustHeld = false
	}
}

// Stream delivers input bytes via a channel and tracks key hold state.
type Stream struct {
	ch      chan byte
	closed  bool
	keyHold time.Duration
	keyHeld bool
	lastKey time.Time
	pending []byte
	log     zerolog.Logger
}

// StreamOptions configures a Stream.
type StreamOptions struct {
	KeyHold time.Duration // 0 for DefaultKeyHold
	Logger  zerolog.Logger
}

// StartStream spawns a goroutine that reads from r and sends bytes to the
// stream. The goroutine exits when r fails or ctx is done; it may stay
// blocked in r.Read until the reader itself is closed.
func StartStream(ctx context.Context, r io.Reader, opts StreamOptions) *Stream {
	keyHold := opts.KeyHold
	if keyHold <= 0 {
		keyHold = DefaultKeyHold
	}
	s := &Stream{
		ch:      make(chan byte, 128),
		keyHold: keyHold,
		log:     opts.Logger,
	}
	go func() {
		defer close(s.ch)
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				select {
				case s.ch <- b:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

// Poll drains all available bytes (non-blocking) and returns the events
// they produce, in arrival order. A closed reader yields a single Quit.
func (s *Stream) Poll(now time.Time) []Event {
	buf := s.pending
	s.pending = nil

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				buf = append(buf, 0x04)
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	events := s.parse(buf, now)

	if s.keyHeld && now.Sub(s.lastKey) >= s.keyHold {
		s.keyHeld = false
		events = append(events, Event{Kind: ThrustUp, Source: SourceKey})
	}
	return events
}

// parse converts raw bytes into events. An unterminated escape sequence
// at the end of buf is kept for the next poll.
func (s *Stream) parse(buf []byte, now time.Time) []Event {
	var events []Event
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			n, ev, ok, complete := parseEscape(buf[i:])
			if !complete {
				if len(buf)-i <= maxPending {
					s.pending = append(s.pending[:0], buf[i:]...)
				} else {
					s.log.Debug().Int("bytes", len(buf)-i).Msg("dropped unterminated escape sequence")
				}
				return events
			}
			if ok {
				events = append(events, ev)
			}
			i += n - 1
			continue
		}

		switch b {
		case ' ':
			s.lastKey = now
			if !s.keyHeld {
				s.keyHeld = true
				events = append(events, Event{Kind: ThrustDown, Source: SourceKey})
			}
		case '\r', '\n', 'p', 'P':
			events = append(events, Event{Kind: Start, Source: SourceKey})
		case 'q', 'Q', 0x03, 0x04:
			events = append(events, Event{Kind: Quit, Source: SourceKey})
		}
	}
	return events
}

// parseEscape handles an escape sequence starting at seq[0] == ESC.
// Only SGR mouse reports (ESC [ < b ; x ; y M|m) produce events; a bare
// ESC or any other CSI sequence is consumed silently.
// n is the number of bytes consumed; complete is false when more bytes
// are needed to decide.
func parseEscape(seq []byte) (n int, ev Event, ok bool, complete bool) {
	if len(seq) < 2 {
		return 0, Event{}, false, false
	}
	if seq[1] != '[' {
		return 1, Event{}, false, true
	}
	if len(seq) < 3 {
		return 0, Event{}, false, false
	}
	if seq[2] != '<' {
		// Plain CSI: skip to the final byte.
		for j := 2; j < len(seq); j++ {
			if seq[j] >= 0x40 && seq[j] <= 0x7e {
				return j + 1, Event{}, false, true
			}
		}
		return 0, Event{}, false, false
	}

	for j := 3; j < len(seq); j++ {
		c := seq[j]
		if c != 'M' && c != 'm' {
			continue
		}
		button, valid := sgrButton(seq[3:j])
		// Left button only, no motion or wheel bits.
		if !valid || button&0b11100011 != 0 {
			return j + 1, Event{}, false, true
		}
		kind := ThrustDown
		if c == 'm' {
			kind = ThrustUp
		}
		return j + 1, Event{Kind: kind, Source: SourceMouse}, true, true
	}
	return 0, Event{}, false, false
}

// sgrButton extracts the button code from "b;x;y".
func sgrButton(params []byte) (int, bool) {
	end := len(params)
	for i, c := range params {
		if c == ';' {
			end = i
			break
		}
	}
	v, err := strconv.Atoi(string(params[:end]))
	if err != nil {
		return 0, false
	}
	return v, true
}
