// Package epd drives SPI e-paper panels with an SSD1680 class controller.
//
// The panel keeps a 1-bit copy of the screen. Pixels written through
// [Panel.WritePixel] are thresholded into that copy and sent to the controller
// RAM when a region is refreshed.
package epd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/pixel"
)

// Errors
var (
	ErrResetPin    = errors.New("epd: reset GPIO pin is invalid")
	ErrDCPin       = errors.New("epd: data/command (DC) GPIO pin is invalid")
	ErrBusyPin     = errors.New("epd: busy GPIO pin is invalid")
	ErrBusyTimeout = errors.New("epd: timeout waiting for controller")
	ErrSize        = errors.New("epd: invalid panel size")
)

// SSD1680 commands.
const (
	cmdDriverOutput     = 0x01
	cmdDataEntryMode    = 0x11
	cmdSoftReset        = 0x12
	cmdTemperature      = 0x18
	cmdActivate         = 0x20
	cmdUpdateControl1   = 0x21
	cmdUpdateControl2   = 0x22
	cmdWriteBlackWhite  = 0x24
	cmdBorderWaveform   = 0x3c
	cmdRAMXRange        = 0x44
	cmdRAMYRange        = 0x45
	cmdRAMXCounter      = 0x4e
	cmdRAMYCounter      = 0x4f
	dataEntryIncrement  = 0x03 // X and Y increment, X first
	updateSequenceFull  = 0xf7
	updateSequenceFast  = 0xff
	internalTemperature = 0x80
)

// Config describes the panel and how it is wired.
type Config struct {
	// Port is the SPI port name, empty for the first available port.
	Port string

	// SpeedHz is the SPI clock, one of ValidSPISpeeds.
	SpeedHz uint32

	// BatchSize is the maximum number of bytes per SPI transaction.
	BatchSize uint

	// Width and Height of the panel in pixels.
	Width, Height int

	// Reset, DC and Busy are GPIO pin names.
	Reset, DC, Busy string

	// BusyTimeout limits how long a refresh may take.
	BusyTimeout time.Duration
}

// DefaultConfig is a 2.13" 122x250 panel on a Raspberry Pi e-Paper HAT.
var DefaultConfig = Config{
	SpeedHz:     4_000_000,
	BatchSize:   4096,
	Width:       122,
	Height:      250,
	Reset:       "GPIO17",
	DC:          "GPIO25",
	Busy:        "GPIO24",
	BusyTimeout: 5 * time.Second,
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []uint32{
	500_000,
	1_000_000,
	2_000_000,
	4_000_000,
	8_000_000,
	16_000_000,
	20_000_000,
}

// Pins used to control the panel.
type Pins struct {
	Reset gpio.PinOut
	DC    gpio.PinOut
	Busy  gpio.PinIn
}

// Panel is an SPI e-paper panel.
type Panel struct {
	conn        spi.Conn
	port        spi.PortCloser
	pins        Pins
	dcLevel     gpio.Level
	batchSize   int
	busyTimeout time.Duration
	buffer      *pixel.MonoImage
}

// Open the SPI port and GPIO pins from the registry and initialize the panel.
// The periph.io host drivers must be loaded first.
func Open(config *Config) (*Panel, error) {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}
	if !validSpeed(config.SpeedHz) {
		return nil, fmt.Errorf("epd: invalid SPI speed %dHz", config.SpeedHz)
	}

	pins := Pins{
		Reset: gpioreg.ByName(config.Reset),
		DC:    gpioreg.ByName(config.DC),
		Busy:  gpioreg.ByName(config.Busy),
	}

	port, err := spireg.Open(config.Port)
	if err != nil {
		return nil, fmt.Errorf("epd: open SPI port %q: %w", config.Port, err)
	}
	c, err := port.Connect(physic.Frequency(config.SpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("epd: connect SPI: %w", err)
	}

	p, err := New(c, pins, config)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	p.port = port
	return p, nil
}

func validSpeed(hz uint32) bool {
	for _, speed := range ValidSPISpeeds {
		if speed == hz {
			return true
		}
	}
	return false
}

// New initializes a panel on an established SPI connection.
func New(c spi.Conn, pins Pins, config *Config) (*Panel, error) {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}
	if pins.Reset == nil || pins.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if pins.DC == nil || pins.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	if pins.Busy == nil || pins.Busy == gpio.INVALID {
		return nil, ErrBusyPin
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, config.Width, config.Height)
	}

	p := &Panel{
		conn:        c,
		pins:        pins,
		dcLevel:     gpio.High,
		batchSize:   int(config.BatchSize),
		busyTimeout: config.BusyTimeout,
		buffer:      pixel.NewMonoImage(config.Width, config.Height),
	}
	if p.batchSize <= 0 {
		p.batchSize = int(DefaultConfig.BatchSize)
	}
	if p.busyTimeout <= 0 {
		p.busyTimeout = DefaultConfig.BusyTimeout
	}
	p.buffer.Fill(pixel.On)

	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("SSD1680 %dx%d on %s", p.buffer.Rect.Dx(), p.buffer.Rect.Dy(), p.conn)
}

// Close the SPI port, if it was opened by Open.
func (p *Panel) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

func (p *Panel) init() error {
	if err := p.reset(); err != nil {
		return err
	}
	if err := p.command(cmdSoftReset); err != nil {
		return err
	}
	if err := p.waitBusy(); err != nil {
		return err
	}

	height := p.buffer.Rect.Dy() - 1
	for _, step := range []struct {
		cmd  byte
		args []byte
	}{
		{cmdDriverOutput, []byte{byte(height), byte(height >> 8), 0x00}},
		{cmdDataEntryMode, []byte{dataEntryIncrement}},
		{cmdBorderWaveform, []byte{0x05}},
		{cmdUpdateControl1, []byte{0x00, 0x80}},
		{cmdTemperature, []byte{internalTemperature}},
	} {
		if err := p.command(step.cmd, step.args...); err != nil {
			return err
		}
	}
	if err := p.setWindow(0, 0, p.buffer.Stride-1, height); err != nil {
		return err
	}
	return p.waitBusy()
}

func (p *Panel) reset() error {
	for _, step := range []struct {
		level gpio.Level
		delay time.Duration
	}{
		{gpio.High, 20 * time.Millisecond},
		{gpio.Low, 2 * time.Millisecond},
		{gpio.High, 20 * time.Millisecond},
	} {
		if err := p.pins.Reset.Out(step.level); err != nil {
			return fmt.Errorf("epd: reset: %w", err)
		}
		time.Sleep(step.delay)
	}
	return nil
}

func (p *Panel) waitBusy() error {
	deadline := time.Now().Add(p.busyTimeout)
	for p.pins.Busy.Read() == gpio.High {
		if time.Now().After(deadline) {
			return ErrBusyTimeout
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func (p *Panel) setDC(level gpio.Level) error {
	if p.dcLevel == level {
		return nil
	}
	if err := p.pins.DC.Out(level); err != nil {
		return err
	}
	p.dcLevel = level
	return nil
}

// command sends a command byte with DC low, followed by its arguments with DC high.
func (p *Panel) command(cmd byte, args ...byte) error {
	if err := p.setDC(gpio.Low); err != nil {
		return err
	}
	if err := p.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("epd: command %#02x: %w", cmd, err)
	}
	if len(args) == 0 {
		return nil
	}
	if err := p.setDC(gpio.High); err != nil {
		return err
	}
	return p.writeChunked(args)
}

func (p *Panel) writeChunked(data []byte) error {
	for len(data) > 0 {
		n := min(len(data), p.batchSize)
		if err := p.conn.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("epd: write %d bytes: %w", n, err)
		}
		data = data[n:]
	}
	return nil
}

// setWindow selects the RAM area in bytes along X and rows along Y, inclusive,
// and moves the address counter to its start.
func (p *Panel) setWindow(x0, y0, x1, y1 int) error {
	for _, step := range []struct {
		cmd  byte
		args []byte
	}{
		{cmdRAMXRange, []byte{byte(x0), byte(x1)}},
		{cmdRAMYRange, []byte{byte(y0), byte(y0 >> 8), byte(y1), byte(y1 >> 8)}},
		{cmdRAMXCounter, []byte{byte(x0)}},
		{cmdRAMYCounter, []byte{byte(y0), byte(y0 >> 8)}},
	} {
		if err := p.command(step.cmd, step.args...); err != nil {
			return err
		}
	}
	return nil
}

// Size of the panel in pixels.
func (p *Panel) Size() (width, height int) {
	return p.buffer.Rect.Dx(), p.buffer.Rect.Dy()
}

// WritePixel stores a raw sample, light samples become white.
func (p *Panel) WritePixel(x, y int, raw uint16) {
	p.buffer.SetMono(x, y, uint8(raw) >= 0x80)
}

// Refresh sends the rows of r to the controller and updates the display.
// Columns are widened to whole bytes.
func (p *Panel) Refresh(r eink.Rectangle, mode eink.Waveform) error {
	if r = r.Clip(p.Size()); r.Empty() {
		return nil
	}

	var (
		x0   = r.Left / 8
		x1   = (r.Right() - 1) / 8
		y0   = r.Top
		y1   = r.Bottom() - 1
		data = make([]byte, 0, (x1-x0+1)*r.Height)
	)
	for y := y0; y <= y1; y++ {
		offset, _ := p.buffer.PixOffset(0, y)
		data = append(data, p.buffer.Pix[offset+x0:offset+x1+1]...)
	}

	if err := p.setWindow(x0, y0, x1, y1); err != nil {
		return err
	}
	if err := p.command(cmdWriteBlackWhite, data...); err != nil {
		return err
	}

	sequence := byte(updateSequenceFast)
	if mode == eink.WaveformInit || mode == eink.WaveformGC16 {
		sequence = updateSequenceFull
	}
	if err := p.command(cmdUpdateControl2, sequence); err != nil {
		return err
	}
	if err := p.command(cmdActivate); err != nil {
		return err
	}

	start := time.Now()
	if err := p.waitBusy(); err != nil {
		return err
	}
	slog.Debug("epd: refreshed", "rect", r, "mode", mode, "bytes", len(data), "took", time.Since(start))
	return nil
}

// Interface checks
var _ eink.Surface = (*Panel)(nil)
