package main

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gr-butler/rainbow-weather/display"
	"github.com/gr-butler/rainbow-weather/env"
	"github.com/gr-butler/rainbow-weather/led"
	"github.com/gr-butler/rainbow-weather/ledstrip"
	"github.com/gr-butler/rainbow-weather/sensors"
	logger "github.com/sirupsen/logrus"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type atmosphere interface {
	sensors.Source
	Close() error
}

type alphanumeric interface {
	Display(v float64) error
	DisplayString(s string) error
	SetEnabled(on bool) error
	Clear() error
	Close() error
}

type ledStrip interface {
	Write(colors []color.RGBA) error
	SetBrightness(level int) error
	Close() error
}

type statusLight interface {
	Flash()
	Close() error
}

// board opens the peripherals. Close releases the shared buses.
type board interface {
	OpenSensor() (atmosphere, error)
	OpenDisplay() (alphanumeric, error)
	OpenStrip() (ledStrip, error)
	OpenStatus() (statusLight, error)
	Close() error
}

// rainbowHat is the Pimoroni Rainbow HAT on a Raspberry Pi.
type rainbowHat struct {
	cfg  env.Config
	bus  i2c.BusCloser
	port spi.PortCloser
}

func newRainbowHat(cfg env.Config) *rainbowHat {
	return &rainbowHat{cfg: cfg}
}

func (h *rainbowHat) i2cBus() (i2c.Bus, error) {
	if h.bus != nil {
		return h.bus, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init host: %w", err)
	}
	bus, err := i2creg.Open(h.cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I²C %q: %w", h.cfg.I2CBus, err)
	}
	h.bus = bus
	return bus, nil
}

func (h *rainbowHat) OpenSensor() (atmosphere, error) {
	bus, err := h.i2cBus()
	if err != nil {
		return nil, err
	}
	a, err := sensors.NewAtmosphere(bus, h.cfg.SensorAddr)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (h *rainbowHat) OpenDisplay() (alphanumeric, error) {
	bus, err := h.i2cBus()
	if err != nil {
		return nil, err
	}
	d, err := display.New(bus, h.cfg.DisplayAddr)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (h *rainbowHat) OpenStrip() (ledStrip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init host: %w", err)
	}
	port, err := spireg.Open(h.cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI %q: %w", h.cfg.SPIPort, err)
	}
	s, err := ledstrip.Open(port, env.LedStripLength)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	h.port = port
	return s, nil
}

func (h *rainbowHat) OpenStatus() (statusLight, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init host: %w", err)
	}
	l, err := led.ByName("status", h.cfg.StatusLed, env.LEDFlashDuration)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (h *rainbowHat) Close() error {
	var errs []error
	if h.port != nil {
		logger.Info("Closing SPI port")
		errs = append(errs, h.port.Close())
		h.port = nil
	}
	if h.bus != nil {
		logger.Info("Closing I²C bus")
		errs = append(errs, h.bus.Close())
		h.bus = nil
	}
	return errors.Join(errs...)
}
