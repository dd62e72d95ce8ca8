package input

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/BeatGlow/eink/internal/ioctl"
)

// absInfo is struct input_absinfo.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// eviocgabs is EVIOCGABS(code).
func eviocgabs(code uint16) ioctl.Command {
	return ioctl.IOR('E', 0x40+uint8(code), unsafe.Sizeof(absInfo{}))
}

// Open an event device by name, such as /dev/input/event1.
func Open(name string) (*Pen, error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}

	fd := f.Fd()
	p := NewPen(f, pollWait(int(fd)))
	p.closer = f

	for _, code := range []uint16{AxisX, AxisY, AxisPressure, AxisDistance, AxisTiltX, AxisTiltY} {
		var info absInfo
		if err := ioctl.Do(fd, eviocgabs(code), unsafe.Pointer(&info)); err != nil {
			slog.Debug("input: axis range unavailable, using default", "device", name, "axis", code, "error", err)
			continue
		}
		p.Calibrate(code, info.Minimum, info.Maximum)
	}

	return p, nil
}

func pollWait(fd int) WaitFunc {
	return func(timeout time.Duration) (bool, error) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, err := unix.Poll(fds, int(timeout.Milliseconds()))
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil {
				return false, fmt.Errorf("input: poll: %w", err)
			}
			return n > 0, nil
		}
	}
}
