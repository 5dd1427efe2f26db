package hal

import (
	"errors"
	"io"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

// Entropy is a platform random source.
type Entropy interface {
	io.Reader
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; higher-level timers live in userland.
type Time interface {
	Ticks() <-chan uint64
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// HAL provides the only contact point between the OS and the outside world.
type HAL interface {
	Logger() Logger
	LEDs() []LED
	Buttons() []GPIOPin
	Entropy() Entropy
	Time() Time
}
