// Package display drives the Rainbow HAT's four character 14-segment display.
//
// The display is an HT16K33 LED controller on I2C. Each character occupies two
// bytes of display RAM (low byte first), with the decimal point on bit 14.
package display

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

const (
	// Commands for HT16K33
	cmdOscillatorOn = 0x21
	cmdDisplaySetup = 0x80
	cmdDisplayOn    = 0x01
	cmdBrightness   = 0xE0

	// Digits is the number of character positions.
	Digits = 4
	// MaxBrightness is the highest dimming level.
	MaxBrightness = 15
)

// Overflow is shown for numbers that do not fit in four positions.
const Overflow = "----"

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("display: closed")

// Display is an open HT16K33 alphanumeric display.
type Display struct {
	dev     *i2c.Dev
	buf     [Digits]uint16
	enabled bool
	closed  bool
}

// New starts the controller oscillator at the given address and sets full brightness.
// The display stays blank until SetEnabled(true).
func New(bus i2c.Bus, addr uint16) (*Display, error) {
	logger.Infof("Starting HT16K33 display [%x]", addr)
	d := &Display{dev: &i2c.Dev{Addr: addr, Bus: bus}}
	if err := d.command(cmdOscillatorOn); err != nil {
		return nil, fmt.Errorf("display: oscillator on: %w", err)
	}
	if err := d.SetBrightness(MaxBrightness); err != nil {
		return nil, err
	}
	if err := d.flush(); err != nil {
		return nil, fmt.Errorf("display: clearing RAM: %w", err)
	}
	return d, nil
}

// String names the controller and its I2C device.
func (d *Display) String() string {
	return fmt.Sprintf("HT16K33{%s}", d.dev)
}

// Display shows a number right aligned, with as many decimals as fit.
func (d *Display) Display(v float64) error {
	return d.DisplayString(FormatFloat(v))
}

// DisplayString shows s left aligned. A '.' lights the decimal point of the preceding
// character and takes no position of its own; text past four positions is dropped.
func (d *Display) DisplayString(s string) error {
	if d.closed {
		return ErrClosed
	}
	d.buf = encode(s)
	return d.flush()
}

// Clear blanks every position.
func (d *Display) Clear() error {
	return d.DisplayString("")
}

// SetEnabled turns the display output on or off. RAM content is kept.
func (d *Display) SetEnabled(on bool) error {
	if d.closed {
		return ErrClosed
	}
	cmd := byte(cmdDisplaySetup)
	if on {
		cmd |= cmdDisplayOn
	}
	if err := d.command(cmd); err != nil {
		return fmt.Errorf("display: set enabled %v: %w", on, err)
	}
	d.enabled = on
	return nil
}

// Enabled reports whether the output is switched on.
func (d *Display) Enabled() bool {
	return d.enabled
}

// SetBrightness sets the dimming level, 0-15.
func (d *Display) SetBrightness(level int) error {
	if d.closed {
		return ErrClosed
	}
	if level < 0 || level > MaxBrightness {
		return fmt.Errorf("display: brightness %d out of range 0-%d", level, MaxBrightness)
	}
	if err := d.command(cmdBrightness | byte(level)); err != nil {
		return fmt.Errorf("display: set brightness: %w", err)
	}
	return nil
}

// Close releases the display. The I2C bus is owned by the caller and stays open.
func (d *Display) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return nil
}

func (d *Display) command(c byte) error {
	return d.dev.Tx([]byte{c}, nil)
}

func (d *Display) flush() error {
	w := make([]byte, 1, 1+2*Digits)
	for _, g := range d.buf {
		w = append(w, byte(g), byte(g>>8))
	}
	return d.dev.Tx(w, nil)
}

func encode(s string) [Digits]uint16 {
	var buf [Digits]uint16
	pos := 0
	for _, r := range s {
		if r == '.' && pos > 0 && buf[pos-1]&segDP == 0 {
			buf[pos-1] |= segDP
			continue
		}
		if pos == Digits {
			break
		}
		buf[pos] = glyph(r)
		pos++
	}
	return buf
}

// FormatFloat renders v for a four position display: right aligned, rounded to the
// most decimals that fit. Values needing more than four integer positions give Overflow.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Overflow
	}
	for prec := Digits - 1; prec >= 0; prec-- {
		s := strconv.FormatFloat(v, 'f', prec, 64)
		n := positions(s)
		if n <= Digits {
			return strings.Repeat(" ", Digits-n) + s
		}
	}
	return Overflow
}

func positions(s string) int {
	return len(s) - strings.Count(s, ".")
}
