package epd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"

	"github.com/BeatGlow/eink"
)

type testWrite struct {
	dc   gpio.Level
	data []byte
}

type testConn struct {
	dc     *gpiotest.Pin
	writes []testWrite
	err    error
}

func (c *testConn) String() string { return "test" }
func (c *testConn) Duplex() conn.Duplex { return conn.Half }
func (c *testConn) TxPackets([]spi.Packet) error { return errors.New("not implemented") }

func (c *testConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, testWrite{dc: c.dc.Read(), data: append([]byte(nil), w...)})
	return nil
}

// commands groups the recorded writes into commands and their arguments.
func (c *testConn) commands() (cmds []byte, args [][]byte) {
	for _, w := range c.writes {
		if w.dc == gpio.Low {
			cmds = append(cmds, w.data...)
			args = append(args, nil)
		} else if len(args) > 0 {
			args[len(args)-1] = append(args[len(args)-1], w.data...)
		}
	}
	return
}

func (c *testConn) reset() {
	c.writes = c.writes[:0]
}

func testPanel(t *testing.T, width, height int, batchSize uint) (*Panel, *testConn) {
	t.Helper()
	var (
		dc   = &gpiotest.Pin{N: "DC"}
		pins = Pins{
			Reset: &gpiotest.Pin{N: "RST"},
			DC:    dc,
			Busy:  &gpiotest.Pin{N: "BUSY", L: gpio.Low},
		}
		c      = &testConn{dc: dc}
		config = DefaultConfig
	)
	config.Width, config.Height = width, height
	config.BatchSize = batchSize
	p, err := New(c, pins, &config)
	if err != nil {
		t.Fatal(err)
	}
	return p, c
}

func TestNew(t *testing.T) {
	p, c := testPanel(t, 122, 250, 0)
	if w, h := p.Size(); w != 122 || h != 250 {
		t.Errorf("expected 122x250, got %dx%d", w, h)
	}

	cmds, args := c.commands()
	want := []byte{
		cmdSoftReset,
		cmdDriverOutput,
		cmdDataEntryMode,
		cmdBorderWaveform,
		cmdUpdateControl1,
		cmdTemperature,
		cmdRAMXRange,
		cmdRAMYRange,
		cmdRAMXCounter,
		cmdRAMYCounter,
	}
	if !bytes.Equal(cmds, want) {
		t.Fatalf("expected commands % x, got % x", want, cmds)
	}
	if v := args[1]; !bytes.Equal(v, []byte{249, 0, 0}) {
		t.Errorf("expected driver output 249 lines, got % x", v)
	}
	if v := args[6]; !bytes.Equal(v, []byte{0, 15}) {
		t.Errorf("expected X range 0..15, got % x", v)
	}
	if v := args[7]; !bytes.Equal(v, []byte{0, 0, 249, 0}) {
		t.Errorf("expected Y range 0..249, got % x", v)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	var (
		saved = DefaultConfig
		dc    = &gpiotest.Pin{N: "DC"}
		pins  = Pins{
			Reset: &gpiotest.Pin{N: "RST"},
			DC:    dc,
			Busy:  &gpiotest.Pin{N: "BUSY", L: gpio.Low},
		}
	)
	p, err := New(&testConn{dc: dc}, pins, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := p.Size(); w != saved.Width || h != saved.Height {
		t.Errorf("expected %dx%d, got %dx%d", saved.Width, saved.Height, w, h)
	}
	if DefaultConfig != saved {
		t.Errorf("expected DefaultConfig unchanged, got %+v", DefaultConfig)
	}
}

func TestNewInvalid(t *testing.T) {
	pin := &gpiotest.Pin{N: "PIN"}
	tests := []struct {
		name string
		pins Pins
		want error
	}{
		{"no reset", Pins{DC: pin, Busy: pin}, ErrResetPin},
		{"invalid reset", Pins{Reset: gpio.INVALID, DC: pin, Busy: pin}, ErrResetPin},
		{"no dc", Pins{Reset: pin, Busy: pin}, ErrDCPin},
		{"no busy", Pins{Reset: pin, DC: pin}, ErrBusyPin},
	}
	for _, test := range tests {
		t.Run(test.name, func(it *testing.T) {
			if _, err := New(&testConn{dc: pin}, test.pins, nil); !errors.Is(err, test.want) {
				it.Errorf("expected %v, got %v", test.want, err)
			}
		})
	}

	t.Run("size", func(it *testing.T) {
		config := DefaultConfig
		config.Width = 0
		if _, err := New(&testConn{dc: pin}, Pins{Reset: pin, DC: pin, Busy: pin}, &config); !errors.Is(err, ErrSize) {
			it.Errorf("expected ErrSize, got %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	p, c := testPanel(t, 32, 4, 0)
	c.reset()

	// Black pixels at x=9 and x=17 on row 1.
	p.WritePixel(9, 1, 0x00)
	p.WritePixel(17, 1, 0x00)
	p.WritePixel(18, 1, 0xff)

	if err := p.Refresh(eink.Rect(9, 1, 9, 2), eink.WaveformDU); err != nil {
		t.Fatal(err)
	}

	cmds, args := c.commands()
	want := []byte{
		cmdRAMXRange,
		cmdRAMYRange,
		cmdRAMXCounter,
		cmdRAMYCounter,
		cmdWriteBlackWhite,
		cmdUpdateControl2,
		cmdActivate,
	}
	if !bytes.Equal(cmds, want) {
		t.Fatalf("expected commands % x, got % x", want, cmds)
	}
	if v := args[0]; !bytes.Equal(v, []byte{1, 2}) {
		t.Errorf("expected X range 1..2, got % x", v)
	}
	if v := args[1]; !bytes.Equal(v, []byte{1, 0, 2, 0}) {
		t.Errorf("expected Y range 1..2, got % x", v)
	}
	if v := args[4]; !bytes.Equal(v, []byte{0xbf, 0xbf, 0xff, 0xff}) {
		t.Errorf("expected RAM data bf bf ff ff, got % x", v)
	}
	if v := args[5]; !bytes.Equal(v, []byte{updateSequenceFast}) {
		t.Errorf("expected fast update, got % x", v)
	}
}

func TestRefreshFull(t *testing.T) {
	for _, mode := range []eink.Waveform{eink.WaveformInit, eink.WaveformGC16} {
		t.Run(mode.String(), func(it *testing.T) {
			p, c := testPanel(it, 16, 16, 0)
			c.reset()
			if err := p.Refresh(eink.Rect(0, 0, 16, 16), mode); err != nil {
				it.Fatal(err)
			}
			_, args := c.commands()
			if v := args[5]; !bytes.Equal(v, []byte{updateSequenceFull}) {
				it.Errorf("expected full update, got % x", v)
			}
		})
	}
}

func TestRefreshEmpty(t *testing.T) {
	p, c := testPanel(t, 16, 16, 0)
	c.reset()
	if err := p.Refresh(eink.Rect(20, 20, 4, 4), eink.WaveformDU); err != nil {
		t.Fatal(err)
	}
	if len(c.writes) != 0 {
		t.Errorf("expected no writes for an off screen rectangle, got %d", len(c.writes))
	}
}

func TestRefreshBatched(t *testing.T) {
	p, c := testPanel(t, 64, 8, 16)
	c.reset()
	if err := p.Refresh(eink.Rect(0, 0, 64, 8), eink.WaveformDU); err != nil {
		t.Fatal(err)
	}
	var n int
	for _, w := range c.writes {
		if w.dc == gpio.High && len(w.data) > 16 {
			t.Errorf("expected writes of at most 16 bytes, got %d", len(w.data))
		}
		if w.dc == gpio.High && len(w.data) == 16 {
			n++
		}
	}
	if n != 4 {
		t.Errorf("expected 64 bytes of RAM data in 4 batches, got %d", n)
	}
}

func TestRefreshBusyTimeout(t *testing.T) {
	p, _ := testPanel(t, 16, 16, 0)
	p.busyTimeout = 10 * time.Millisecond
	p.pins.Busy.(*gpiotest.Pin).L = gpio.High
	if err := p.Refresh(eink.Rect(0, 0, 1, 1), eink.WaveformDU); !errors.Is(err, ErrBusyTimeout) {
		t.Errorf("expected ErrBusyTimeout, got %v", err)
	}
}

func TestRefreshError(t *testing.T) {
	p, c := testPanel(t, 16, 16, 0)
	c.err = errors.New("test")
	if err := p.Refresh(eink.Rect(0, 0, 1, 1), eink.WaveformDU); err == nil {
		t.Error("expected error")
	}
}

func TestValidSpeed(t *testing.T) {
	if !validSpeed(DefaultConfig.SpeedHz) {
		t.Errorf("default speed %d should be valid", DefaultConfig.SpeedHz)
	}
	if validSpeed(3_000_000) {
		t.Error("3MHz should not be valid")
	}
}
