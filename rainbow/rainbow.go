// Package rainbow computes the Rainbow HAT LED strip output for a pressure reading.
package rainbow

import (
	"image/color"
	"math"

	"github.com/gr-butler/rainbow-weather/env"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Off is an unlit LED.
var Off = color.RGBA{}

// Strip is one colour per LED, index 0 is the leftmost LED.
type Strip [env.LedStripLength]color.RGBA

// gradient is the hue sweep 0-360 at full saturation and value, one colour per LED.
var gradient = func() Strip {
	var s Strip
	for i := range s {
		c := colorful.Hsv(float64(i)*360.0/float64(len(s)), 1.0, 1.0)
		r, g, b := c.RGB255()
		s[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return s
}()

// Gradient returns a copy of the strip gradient.
func Gradient() Strip {
	return gradient
}

// Solid returns a strip with every LED set to c.
func Solid(c color.RGBA) Strip {
	var s Strip
	for i := range s {
		s[i] = c
	}
	return s
}

// Lit returns the number of LEDs lit for pressure (hPa).
func Lit(pressure float64) int {
	t := (pressure - env.BarometerRangeLow) / (env.BarometerRangeHigh - env.BarometerRangeLow)
	n := math.Ceil(float64(len(gradient)) * t)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n > float64(len(gradient)) {
		return len(gradient)
	}
	return int(n)
}

// StripColors maps a pressure reading onto the strip. LEDs light from the right hand
// end inwards as pressure rises, each showing its own gradient colour.
func StripColors(pressure float64) Strip {
	var s Strip
	n := Lit(pressure)
	for i := 0; i < n; i++ {
		ri := len(s) - 1 - i
		s[ri] = gradient[ri]
	}
	return s
}
