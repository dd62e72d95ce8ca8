//go:build linux

// Package ioctl encodes Linux ioctl request numbers and issues the calls.
package ioctl

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mode is the IOCTL mode.
type Mode uint8

// Modes
const (
	None Mode = iota
	Write
	Read
)

// Command to be sent over ioctl.
type Command uintptr

func (c Command) String() string {
	var (
		mode = Mode(c >> 30 & 0x03)
		size = c >> 16 & 0x3fff
		cmd  = c & 0xffff
		str  string
	)
	if mode&Write > 0 {
		str += " write"
	}
	if mode&Read > 0 {
		str += " read"
	}
	return fmt.Sprintf("ioctl%s (%d bytes) 0x%04x", str, size, uintptr(cmd))
}

// Do executes the ioctl call with a pointer argument.
func Do(fd uintptr, command Command, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(command), uintptr(ptr))
	if errno != 0 {
		return fmt.Errorf("%s failed: %w", command, errno)
	}
	return nil
}

// Encode an ioctl command.
func Encode(mode Mode, size uint16, cmd uintptr) Command {
	return Command(mode)<<30 | Command(size)<<16 | Command(cmd)
}

// IOR is the _IOR macro: a command reading size bytes from the kernel.
func IOR(typ byte, nr uint8, size uintptr) Command {
	return Encode(Read, uint16(size), uintptr(typ)<<8|uintptr(nr))
}

// IOW is the _IOW macro: a command writing size bytes to the kernel.
func IOW(typ byte, nr uint8, size uintptr) Command {
	return Encode(Write, uint16(size), uintptr(typ)<<8|uintptr(nr))
}
