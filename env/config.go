package env

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	logger "github.com/sirupsen/logrus"
)

// ConfigEnv names the environment variable consulted when no --config flag is given.
const ConfigEnv = "WEATHER_CONFIG"

// Duration decodes TOML strings such as "500ms" or "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the hardware wiring of the station.
type Config struct {
	I2CBus          string   `toml:"i2c_bus"`
	SPIPort         string   `toml:"spi_port"`
	SensorAddr      uint16   `toml:"sensor_address"`
	DisplayAddr     uint16   `toml:"display_address"`
	StripBrightness int      `toml:"strip_brightness"`
	Interval        Duration `toml:"interval"`
	StatusLed       string   `toml:"status_led"`
}

func DefaultConfig() Config {
	return Config{
		I2CBus:          I2CBus,
		SPIPort:         SPIPort,
		SensorAddr:      BMP280_I2C,
		DisplayAddr:     HT16K33_I2C,
		StripBrightness: LedStripBrightness,
		Interval:        Duration{SensorInterval},
		StatusLed:       StatusLed,
	}
}

// LoadConfig reads path over the defaults. An empty path falls back to $WEATHER_CONFIG,
// and with neither set the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, ok := os.LookupEnv(ConfigEnv)
		if !ok || p == "" {
			return cfg, nil
		}
		path = p
	}

	logger.Infof("Loading config [%v]", path)
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("reading config %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		logger.Warnf("Unknown config key [%v] in %v", k, path)
	}
	return cfg, cfg.Validate()
}

// Apply overlays any command line values onto the config.
func (c *Config) Apply(args Args) {
	if args.Bus != nil {
		c.I2CBus = *args.Bus
	}
	if args.SPI != nil {
		c.SPIPort = *args.SPI
	}
	if args.Brightness != nil {
		c.StripBrightness = *args.Brightness
	}
	if args.Interval != nil {
		c.Interval = Duration{*args.Interval}
	}
	if args.NoStatus != nil && *args.NoStatus {
		c.StatusLed = ""
	}
}

func (c Config) Validate() error {
	if c.StripBrightness < 0 || c.StripBrightness > 31 {
		return fmt.Errorf("strip_brightness %d out of range 0-31", c.StripBrightness)
	}
	if c.Interval.Duration <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval.Duration)
	}
	return nil
}
