// Package config loads the YAML configuration of the e-ink commands.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/epd"
	"github.com/BeatGlow/eink/input"
)

// Surface drivers.
const (
	DriverFramebuffer = "mxcfb"
	DriverSPI         = "spi"
	DriverMemory      = "memory"
)

// Config represents the complete configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"` // debug, info, warn, error
	Surface  SurfaceConfig `yaml:"surface"`
	SPI      SPIConfig     `yaml:"spi"`
	Pen      PenConfig     `yaml:"pen"`
	Engine   EngineConfig  `yaml:"engine"`
	Palette  PaletteConfig `yaml:"palette"`
}

// SurfaceConfig selects the display.
type SurfaceConfig struct {
	Driver   string `yaml:"driver"`   // mxcfb, spi, memory
	Device   string `yaml:"device"`   // framebuffer device for mxcfb
	Waveform string `yaml:"waveform"` // init, du, gc16, gl16, a2 or a number
	Width    int    `yaml:"width"`    // memory driver only
	Height   int    `yaml:"height"`   // memory driver only
}

// SPIConfig wires an SPI e-paper panel.
type SPIConfig struct {
	Port          string `yaml:"port"`
	SpeedHz       uint32 `yaml:"speed_hz"`
	BatchSize     uint   `yaml:"batch_size"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Reset         string `yaml:"reset"`
	DC            string `yaml:"dc"`
	Busy          string `yaml:"busy"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// PenConfig selects the pen digitizer.
type PenConfig struct {
	Device        string `yaml:"device"`
	PollTimeoutMS int    `yaml:"poll_timeout_ms"`
	StrokeWidth   int    `yaml:"stroke_width"`
}

// EngineConfig tunes the refresh-coalescing buffer.
type EngineConfig struct {
	QueueCapacity int   `yaml:"queue_capacity"`
	DefaultColor  uint8 `yaml:"default_color"`
}

// PaletteConfig has the palette indices used for drawing.
type PaletteConfig struct {
	Ink   uint8 `yaml:"ink"`
	Paper uint8 `yaml:"paper"`
}

// Default returns the configuration used for missing values.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Surface: SurfaceConfig{
			Driver:   DriverFramebuffer,
			Device:   "/dev/fb0",
			Waveform: eink.DefaultConfig.Waveform.String(),
			Width:    1404,
			Height:   1872,
		},
		SPI: SPIConfig{
			Port:          epd.DefaultConfig.Port,
			SpeedHz:       epd.DefaultConfig.SpeedHz,
			BatchSize:     epd.DefaultConfig.BatchSize,
			Width:         epd.DefaultConfig.Width,
			Height:        epd.DefaultConfig.Height,
			Reset:         epd.DefaultConfig.Reset,
			DC:            epd.DefaultConfig.DC,
			Busy:          epd.DefaultConfig.Busy,
			BusyTimeoutMS: int(epd.DefaultConfig.BusyTimeout / time.Millisecond),
		},
		Pen: PenConfig{
			Device:        "/dev/input/event1",
			PollTimeoutMS: int(input.DefaultPollTimeout / time.Millisecond),
			StrokeWidth:   3,
		},
		Engine: EngineConfig{
			QueueCapacity: eink.DefaultConfig.QueueCapacity,
			DefaultColor:  eink.DefaultConfig.DefaultColor,
		},
		Palette: PaletteConfig{
			Ink:   0x00,
			Paper: 0xff,
		},
	}
}

// Load reads and parses a YAML configuration file. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse YAML data over the defaults and validate the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func Validate(cfg *Config) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	switch cfg.Surface.Driver {
	case DriverFramebuffer:
		if cfg.Surface.Device == "" {
			return fmt.Errorf("surface.device is required for driver %s", DriverFramebuffer)
		}
	case DriverSPI:
		if err := validateSPI(&cfg.SPI); err != nil {
			return err
		}
	case DriverMemory:
		if cfg.Surface.Width <= 0 || cfg.Surface.Height <= 0 {
			return fmt.Errorf("surface size must be > 0, got %dx%d", cfg.Surface.Width, cfg.Surface.Height)
		}
	default:
		return fmt.Errorf("surface.driver must be one of %s, %s, %s; got %q",
			DriverFramebuffer, DriverSPI, DriverMemory, cfg.Surface.Driver)
	}
	if _, err := eink.ParseWaveform(cfg.Surface.Waveform); err != nil {
		return fmt.Errorf("surface.waveform: %w", err)
	}

	if cfg.Pen.PollTimeoutMS <= 0 {
		return fmt.Errorf("pen.poll_timeout_ms must be > 0")
	}
	if cfg.Pen.StrokeWidth <= 0 {
		return fmt.Errorf("pen.stroke_width must be > 0")
	}
	if cfg.Engine.QueueCapacity <= 0 {
		return fmt.Errorf("engine.queue_capacity must be > 0")
	}
	if cfg.Palette.Ink == cfg.Palette.Paper {
		return fmt.Errorf("palette.ink and palette.paper must differ, both are %d", cfg.Palette.Ink)
	}
	return nil
}

func validateSPI(cfg *SPIConfig) error {
	var valid bool
	for _, speed := range epd.ValidSPISpeeds {
		if valid = speed == cfg.SpeedHz; valid {
			break
		}
	}
	if !valid {
		return fmt.Errorf("spi.speed_hz: invalid SPI speed %dHz", cfg.SpeedHz)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("spi panel size must be > 0, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Reset == "" || cfg.DC == "" || cfg.Busy == "" {
		return fmt.Errorf("spi.reset, spi.dc and spi.busy pins are required")
	}
	return nil
}

// Level is the configured log level. Setting EINK_DEBUG in the environment
// lowers it to debug.
func (cfg *Config) Level() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	if os.Getenv("EINK_DEBUG") != "" {
		level = min(level, slog.LevelDebug)
	}
	return level
}

// Waveform is the configured refresh waveform.
func (cfg *Config) Waveform() eink.Waveform {
	w, _ := eink.ParseWaveform(cfg.Surface.Waveform)
	return w
}

// PollTimeout is the pen poll timeout.
func (cfg *Config) PollTimeout() time.Duration {
	return time.Duration(cfg.Pen.PollTimeoutMS) * time.Millisecond
}

// EngineConfig returns the buffer configuration.
func (cfg *Config) EngineConfig(logger *slog.Logger) *eink.Config {
	return &eink.Config{
		QueueCapacity: cfg.Engine.QueueCapacity,
		DefaultColor:  cfg.Engine.DefaultColor,
		Waveform:      cfg.Waveform(),
		Logger:        logger,
	}
}

// EPDConfig returns the SPI panel configuration.
func (cfg *Config) EPDConfig() *epd.Config {
	return &epd.Config{
		Port:        cfg.SPI.Port,
		SpeedHz:     cfg.SPI.SpeedHz,
		BatchSize:   cfg.SPI.BatchSize,
		Width:       cfg.SPI.Width,
		Height:      cfg.SPI.Height,
		Reset:       cfg.SPI.Reset,
		DC:          cfg.SPI.DC,
		Busy:        cfg.SPI.Busy,
		BusyTimeout: time.Duration(cfg.SPI.BusyTimeoutMS) * time.Millisecond,
	}
}
