package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gr-butler/rainbow-weather/display"
	"github.com/gr-butler/rainbow-weather/rainbow"
)

var offLed = color.New(color.FgHiBlack)

func parsePressure(s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad pressure %q: %w", s, err)
	}
	return p, nil
}

// printStrip writes one line per reading: the pressure, one block per LED and the lit count.
func printStrip(out io.Writer, pressure float64) {
	s := rainbow.StripColors(pressure)
	fmt.Fprintf(out, "%8.2f hPa ", pressure)
	for _, c := range s {
		if c == rainbow.Off {
			fmt.Fprint(out, " ", offLed.Sprint("··"))
			continue
		}
		fmt.Fprint(out, " ", color.RGB(int(c.R), int(c.G), int(c.B)).Sprint("██"))
	}
	fmt.Fprintf(out, "  %d/%d\n", rainbow.Lit(pressure), len(s))
}

func printDisplay(out io.Writer, temperature float64) {
	fmt.Fprintf(out, "%8.2f °C  [%s]\n", temperature, display.FormatFloat(temperature))
}
