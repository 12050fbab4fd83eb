package env

import "time"

// Rainbow HAT wiring (BCM numbering)
const (
	GPIO26 = "GPIO26" // blue LED

	BlueLed = GPIO26

	StatusLed = BlueLed

	I2CBus  = "I2C1"
	SPIPort = "SPI0.0"

	BMP280_I2C  uint16 = 0x77
	HT16K33_I2C uint16 = 0x70

	// Default LED brightness
	LedStripBrightness = 1
	LedStripLength     = 7

	SensorInterval = time.Second

	LEDFlashDuration = time.Millisecond * 50

	// Barometer range, typical sea level variation
	BarometerRangeLow  = 965.0
	BarometerRangeHigh = 1035.0

	StartupText = "1234"
)
