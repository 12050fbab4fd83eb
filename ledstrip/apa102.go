// Package ledstrip drives the Rainbow HAT's APA102 RGB LEDs over SPI.
package ledstrip

import (
	"errors"
	"fmt"
	"image/color"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// MaxBrightness is the top of the APA102 5 bit global brightness.
	MaxBrightness = 31

	// Speed is the SPI clock used for the strip.
	Speed = 1 * physic.MegaHertz

	ledFrameStart = 0xE0
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("ledstrip: closed")

// Conn is the part of spi.Conn the strip needs.
type Conn interface {
	Tx(w, r []byte) error
}

// Strip is an open APA102 strip. Colours go out in BGR order.
type Strip struct {
	conn       Conn
	length     int
	brightness int
	closed     bool
}

// Open connects to the SPI port and returns a strip of length LEDs.
// The port is owned by the caller.
func Open(p spi.Port, length int) (*Strip, error) {
	logger.Infof("Starting APA102 strip on [%v] (%v LEDs)", p, length)
	c, err := p.Connect(Speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ledstrip: connect: %w", err)
	}
	return New(c, length), nil
}

// New wraps an already connected SPI conn. Brightness starts at the maximum.
func New(c Conn, length int) *Strip {
	return &Strip{
		conn:       c,
		length:     length,
		brightness: MaxBrightness,
	}
}

// Brightness is the level the next Write will use.
func (s *Strip) Brightness() int {
	return s.brightness
}

// SetBrightness changes the level used by the next Write, 0-31.
func (s *Strip) SetBrightness(level int) error {
	if s.closed {
		return ErrClosed
	}
	if level < 0 || level > MaxBrightness {
		return fmt.Errorf("ledstrip: brightness %d out of range 0-%d", level, MaxBrightness)
	}
	s.brightness = level
	return nil
}

// Write sends one colour per LED. Missing entries are sent as off, extra entries are ignored.
func (s *Strip) Write(colors []color.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.conn.Tx(s.frame(colors), nil); err != nil {
		return fmt.Errorf("ledstrip: write: %w", err)
	}
	return nil
}

// Close releases the strip without touching the LEDs.
func (s *Strip) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

func (s *Strip) frame(colors []color.RGBA) []byte {
	endLen := endFrameLen(s.length)
	b := make([]byte, 4, 4+4*s.length+endLen)
	for i := 0; i < s.length; i++ {
		var c color.RGBA
		if i < len(colors) {
			c = colors[i]
		}
		b = append(b, ledFrameStart|byte(s.brightness), c.B, c.G, c.R)
	}
	for i := 0; i < endLen; i++ {
		b = append(b, 0xFF)
	}
	return b
}

// The end frame clocks the data through the chain, which needs half a clock per LED.
func endFrameLen(n int) int {
	l := (n + 15) / 16
	if l < 4 {
		l = 4
	}
	return l
}
