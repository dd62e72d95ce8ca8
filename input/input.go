// Package input reads pen digitizers through the Linux event interface (evdev).
//
// A [Pen] keeps the last reported value of each button and axis. Every
// EV_SYN report completes a [State] snapshot, which [Pen.Poll] yields to the
// caller.
package input

import (
	"encoding/binary"
	"errors"
	"image"
	"io"
	"iter"
	"log/slog"
	"math/bits"
	"time"
)

// Errors
var (
	ErrNotSupported = errors.New("input: not supported")
)

// Event types, from <linux/input-event-codes.h>
const (
	EventSync     = 0x00 // EV_SYN
	EventKey      = 0x01 // EV_KEY
	EventAbsolute = 0x03 // EV_ABS
)

// Button codes
const (
	ButtonToolPen    = 320 // BTN_TOOL_PEN
	ButtonToolRubber = 321 // BTN_TOOL_RUBBER
	ButtonTouch      = 330 // BTN_TOUCH
)

// Absolute axis codes
const (
	AxisX        = 0x00 // ABS_X
	AxisY        = 0x01 // ABS_Y
	AxisPressure = 0x18 // ABS_PRESSURE
	AxisDistance = 0x19 // ABS_DISTANCE
	AxisTiltX    = 0x1a // ABS_TILT_X
	AxisTiltY    = 0x1b // ABS_TILT_Y
)

// DefaultPollTimeout is how long Poll waits for the next event.
const DefaultPollTimeout = 50 * time.Millisecond

// timevalSize is the size of struct timeval, two native words.
const timevalSize = 2 * bits.UintSize / 8

// EventSize is the size of struct input_event on this platform.
const EventSize = timevalSize + 2 + 2 + 4

// Event is a single input_event record.
type Event struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// ReadEvent reads one input_event record from r.
func ReadEvent(r io.Reader) (Event, error) {
	var b [EventSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Event{}, err
	}
	return DecodeEvent(b[:]), nil
}

// DecodeEvent decodes a record of EventSize bytes.
func DecodeEvent(b []byte) Event {
	_ = b[EventSize-1]
	var sec, usec int64
	if timevalSize == 16 {
		sec = int64(binary.NativeEndian.Uint64(b[0:]))
		usec = int64(binary.NativeEndian.Uint64(b[8:]))
	} else {
		sec = int64(int32(binary.NativeEndian.Uint32(b[0:])))
		usec = int64(int32(binary.NativeEndian.Uint32(b[4:])))
	}
	return Event{
		Time:  time.Unix(sec, usec*int64(time.Microsecond)),
		Type:  binary.NativeEndian.Uint16(b[timevalSize:]),
		Code:  binary.NativeEndian.Uint16(b[timevalSize+2:]),
		Value: int32(binary.NativeEndian.Uint32(b[timevalSize+4:])),
	}
}

// AppendEvent appends the binary form of e to b.
func AppendEvent(b []byte, e Event) []byte {
	var (
		sec  = e.Time.Unix()
		usec = int64(e.Time.Nanosecond()) / int64(time.Microsecond)
	)
	if timevalSize == 16 {
		b = binary.NativeEndian.AppendUint64(b, uint64(sec))
		b = binary.NativeEndian.AppendUint64(b, uint64(usec))
	} else {
		b = binary.NativeEndian.AppendUint32(b, uint32(sec))
		b = binary.NativeEndian.AppendUint32(b, uint32(usec))
	}
	b = binary.NativeEndian.AppendUint16(b, e.Type)
	b = binary.NativeEndian.AppendUint16(b, e.Code)
	return binary.NativeEndian.AppendUint32(b, uint32(e.Value))
}

// Axis is an absolute axis with its calibrated range.
type Axis struct {
	Min int32
	Max int32
	Raw int32
}

// Norm is the raw value scaled to [0, 1] over the axis range.
func (a Axis) Norm() float64 {
	if a.Max <= a.Min {
		return 0
	}
	return float64(a.Raw-a.Min) / float64(a.Max-a.Min)
}

// Button is the last reported key value: 0 released, 1 pressed, 2 repeating.
type Button int32

// Pressed reports if the button is down.
func (b Button) Pressed() bool {
	return b != 0
}

// State is a snapshot of the pen.
type State struct {
	Time     time.Time
	Pen      Button
	Eraser   Button
	Touching Button
	X        Axis
	Y        Axis
	Pressure Axis
	Distance Axis
	TiltX    Axis
	TiltY    Axis
}

// Point maps the digitizer position to screen coordinates. The digitizer is
// mounted rotated relative to the panel.
func (s State) Point(width, height int) image.Point {
	return image.Pt(
		int(float64(width)*s.Y.Norm()),
		int(float64(height)*(1-s.X.Norm())),
	)
}

// axis returns the axis reported under code, if it is tracked.
func (s *State) axis(code uint16) *Axis {
	switch code {
	case AxisX:
		return &s.X
	case AxisY:
		return &s.Y
	case AxisPressure:
		return &s.Pressure
	case AxisDistance:
		return &s.Distance
	case AxisTiltX:
		return &s.TiltX
	case AxisTiltY:
		return &s.TiltY
	default:
		return nil
	}
}

func (s *State) button(code uint16) *Button {
	switch code {
	case ButtonToolPen:
		return &s.Pen
	case ButtonToolRubber:
		return &s.Eraser
	case ButtonTouch:
		return &s.Touching
	default:
		return nil
	}
}

// WaitFunc blocks until an event can be read or the timeout expires.
type WaitFunc func(timeout time.Duration) (ready bool, err error)

// Pen is a pen digitizer.
type Pen struct {
	r      io.Reader
	wait   WaitFunc
	closer io.Closer
	state  State
}

// NewPen reads events from r. If wait is nil, r is assumed to always have
// data available. Axis ranges default to the reMarkable Wacom digitizer.
func NewPen(r io.Reader, wait WaitFunc) *Pen {
	return &Pen{
		r:    r,
		wait: wait,
		state: State{
			X:        Axis{Max: 20966},
			Y:        Axis{Max: 15725},
			Pressure: Axis{Max: 4095},
			Distance: Axis{Max: 255},
			TiltX:    Axis{Min: -9000, Max: 9000},
			TiltY:    Axis{Min: -9000, Max: 9000},
		},
	}
}

// State is the last known state of the pen.
func (p *Pen) State() State {
	return p.state
}

// Calibrate sets the range of an absolute axis.
func (p *Pen) Calibrate(code uint16, lo, hi int32) {
	if a := p.state.axis(code); a != nil {
		a.Min, a.Max = lo, hi
	}
}

// Apply updates the pen state with e and reports if e completed a snapshot.
func (p *Pen) Apply(e Event) bool {
	switch e.Type {
	case EventSync:
		p.state.Time = e.Time
		return true
	case EventKey:
		if b := p.state.button(e.Code); b != nil {
			*b = Button(e.Value)
		}
	case EventAbsolute:
		if a := p.state.axis(e.Code); a != nil {
			a.Raw = e.Value
		}
	}
	return false
}

// Poll yields a snapshot for every completed report. The sequence ends when
// no event arrives within timeout, after the first event stamped later than
// the start of the poll, or on a read error.
func (p *Pen) Poll(timeout time.Duration) iter.Seq[State] {
	return func(yield func(State) bool) {
		began := time.Now()
		for {
			if p.wait != nil {
				ready, err := p.wait(timeout)
				if err != nil {
					slog.Warn("input: poll failed", "error", err)
					return
				}
				if !ready {
					return
				}
			}

			e, err := ReadEvent(p.r)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Warn("input: read failed", "error", err)
				}
				return
			}
			if p.Apply(e) && !yield(p.state) {
				return
			}
			if e.Time.After(began) {
				return
			}
		}
	}
}

// Close the underlying device.
func (p *Pen) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
