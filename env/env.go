package env

import "time"

// Args holds command line overrides. A nil field was not given on the command line.
type Args struct {
	Verbose    *bool
	Config     *string
	Bus        *string
	SPI        *string
	Brightness *int
	Interval   *time.Duration
	NoStatus   *bool
}
