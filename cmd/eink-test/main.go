package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/BeatGlow/eink"
	"github.com/BeatGlow/eink/draw"
	"github.com/BeatGlow/eink/internal/config"
	"github.com/BeatGlow/eink/internal/surface"
	"github.com/BeatGlow/eink/pixel"
)

// waveforms are refreshed one per band, including modes outside the named set.
var waveforms = []eink.Waveform{0, 1, 2, 3, 4, 7, 257}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("eink-test", flag.ContinueOnError)
	configFlag := flags.String("config", "", "Path to configuration file")
	driverFlag := flags.String("driver", "", "Display driver (mxcfb, spi, memory)")
	fbFlag := flags.String("fb", "", "Framebuffer device")
	delayFlag := flags.Duration("delay", time.Second, "Pause between the direct and buffered passes")
	outFlag := flags.String("out", "", "Write the screen to this PNG file (memory driver)")
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

	width, height := dev.Size()
	fmt.Printf("using display: %s (%dx%d)\n", dev.Surface, width, height)

	// Direct pass: write the pattern and refresh band by band.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dev.WritePixel(x, y, uint16(testPattern(x, y)))
		}
	}
	for i, band := range bands(width, height) {
		mode := waveforms[i]
		if err = dev.Refresh(band, mode); err != nil {
			slog.Warn("eink-test: refresh failed", "band", band, "waveform", mode, "error", err)
			continue
		}
		fmt.Printf("refreshed %s with %s\n", band, mode)
	}

	time.Sleep(*delayFlag)

	// Buffered pass: request the inverted pattern and flush the same bands.
	buffer, err := eink.New(dev, cfg.EngineConfig(slog.Default()))
	if err != nil {
		return err
	}
	canvas := buffer.Canvas()
	draw.Draw(canvas, canvas.Bounds(), invertedPattern(width, height), image.Point{}, draw.Src)
	for i, band := range bands(width, height) {
		draw.Rectangle(canvas, band.Image(), pixel.Black)
		if err = label(canvas, band, waveforms[i].String()); err != nil {
			return err
		}
		buffer.Flush(band)
	}
	for deadline := time.Now().Add(2 * eink.MinPulse); buffer.Pending() > 0 && time.Now().Before(deadline); {
		time.Sleep(eink.MinPulse / 4)
		buffer.Ping()
	}

	stats := buffer.Stats()
	fmt.Printf("buffered pass: %d commits, %d deferred, %d refreshes, %d errors\n",
		stats.Commits, stats.Deferred, stats.Refreshes, stats.RefreshErrors)

	if m, ok := dev.Memory(); ok && *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			return err
		}
		if err = m.WritePNG(f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}

// testPattern is a checkerboard of cells whose edges lie on square numbers,
// each cell filled with a horizontal ramp.
func testPattern(x, y int) uint8 {
	sx, sy := isqrt(x), isqrt(y)
	if sx%2 != sy%2 {
		return 0
	}
	span := (sx+1)*(sx+1) - sx*sx
	return uint8(0xff * (x - sx*sx) / span)
}

func invertedPattern(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[img.PixOffset(x, y)] = 0xff - testPattern(x, y)
		}
	}
	return img
}

// label writes the waveform name in the top left corner of a band.
func label(dst draw.Image, band eink.Rectangle, name string) error {
	text, err := draw.NewText(nil, 8)
	if err != nil {
		return err
	}
	if band.Height < text.Height()*2 {
		return nil
	}
	origin := image.Pt(band.Left+text.Height()/2, band.Top+text.Height())
	area := text.Measure(origin, name)
	draw.Box(dst, area, pixel.White)
	_, err = text.String(dst, origin, name, pixel.Black)
	return err
}

func isqrt(v int) int {
	return int(math.Sqrt(float64(v)))
}

// bands divides the screen in ten horizontal strips and returns one per
// waveform, separated by a small gap.
func bands(width, height int) []eink.Rectangle {
	var (
		chunk = height / 10
		gap   = min(32, chunk/4)
		out   = make([]eink.Rectangle, 0, len(waveforms))
	)
	for i := range waveforms {
		out = append(out, eink.Rect(0, i*chunk, width, chunk-gap))
	}
	return out
}
