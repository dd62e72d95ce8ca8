package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/draw"
	"github.com/BeatGlow/eink/input"
	"github.com/BeatGlow/eink/internal/config"
	"github.com/BeatGlow/eink/internal/sketch"
	"github.com/BeatGlow/eink/internal/surface"
	"github.com/BeatGlow/eink/memory"
	"github.com/BeatGlow/eink/pixel"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("inkdraw: fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("inkdraw", flag.ContinueOnError)
	configFlag := flags.String("config", "", "Path to configuration file")
	driverFlag := flags.String("driver", "", "Display driver (mxcfb, spi, memory)")
	fbFlag := flags.String("fb", "", "Framebuffer device")
	penFlag := flags.String("pen", "", "Pen event device")
	outFlag := flags.String("out", "", "Write the screen to this PNG file on exit (memory driver)")
	titleFlag := flags.String("title", "inkdraw", "Title drawn at the top of the screen")
	var ink, paper *uint8
	flags.Func("ink", "Palette index to draw with (0-255)", colorFlag(&ink))
	flags.Func("paper", "Palette index to erase with (0-255)", colorFlag(&paper))
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *driverFlag != "" {
		cfg.Surface.Driver = *driverFlag
	}
	if *fbFlag != "" {
		cfg.Surface.Device = *fbFlag
	}
	if *penFlag != "" {
		cfg.Pen.Device = *penFlag
	}
	if ink != nil {
		cfg.Palette.Ink = *ink
	}
	if paper != nil {
		cfg.Palette.Paper = *paper
	}
	if err = config.Validate(cfg); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))

	dev, err := surface.Open(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()
	slog.Info("inkdraw: using display", "driver", cfg.Surface.Driver, "display", dev.Surface)

	pen, err := input.Open(cfg.Pen.Device)
	if err != nil {
		return err
	}
	defer pen.Close()

	buffer, err := eink.New(dev, cfg.EngineConfig(slog.Default()))
	if err != nil {
		return err
	}

	var (
		canvas = buffer.Canvas()
		bounds = buffer.Bounds()
		stroke = &sketch.Stroke{
			Ink:   pixel.Index{I: cfg.Palette.Ink},
			Paper: pixel.Index{I: cfg.Palette.Paper},
			Width: cfg.Pen.StrokeWidth,
		}
	)

	canvas.Fill(bounds.Image(), stroke.Paper)
	if *titleFlag != "" {
		if err = drawTitle(canvas, *titleFlag, stroke.Ink); err != nil {
			return err
		}
	}
	buffer.Flush(bounds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("inkdraw: hit control-c to stop", "pen", cfg.Pen.Device)
	loop(ctx, buffer, canvas, pen, stroke, cfg.PollTimeout())

	stats := buffer.Stats()
	slog.Info("inkdraw: stopped",
		"commits", stats.Commits,
		"deferred", stats.Deferred,
		"refreshes", stats.Refreshes,
		"refresh_errors", stats.RefreshErrors,
		"overflows", stats.Overflows,
		"abandoned", stats.Abandoned)

	if m, ok := dev.Memory(); ok && *outFlag != "" {
		if err = savePNG(m, *outFlag); err != nil {
			return err
		}
		slog.Info("inkdraw: saved screen", "path", *outFlag)
	}
	return nil
}

func savePNG(m *memory.Surface, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = m.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// loop feeds pen reports into the stroke and flushes the touched region after
// every poll, or pings the buffer to process retries when nothing was drawn.
func loop(ctx context.Context, buffer *eink.Buffer, canvas *eink.Canvas, pen *input.Pen, stroke *sketch.Stroke, timeout time.Duration) {
	width, height := buffer.Size()
	for ctx.Err() == nil {
		var dirty eink.Rectangle
		for state := range pen.Poll(timeout) {
			dirty = stroke.Apply(canvas, state, width, height, dirty)
		}
		if dirty.Empty() {
			buffer.Ping()
		} else {
			buffer.Flush(dirty)
		}
	}
}

func drawTitle(dst draw.Image, title string, c color.Color) error {
	text, err := draw.NewText(nil, 10)
	if err != nil {
		return err
	}
	origin := image.Pt(text.Height(), text.Height()*2)
	_, err = text.String(dst, origin, title, c)
	return err
}

func colorFlag(dst **uint8) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return fmt.Errorf("palette index must be 0-255: %w", err)
		}
		c := uint8(v)
		*dst = &c
		return nil
	}
}
