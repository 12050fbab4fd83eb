package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/gr-butler/rainbow-weather/env"
	"github.com/gr-butler/rainbow-weather/rainbow"
	"github.com/gr-butler/rainbow-weather/sensors"
	logger "github.com/sirupsen/logrus"
)

var red = color.RGBA{R: 0xff, A: 0xff}

type weatherstation struct {
	hw  board
	cfg env.Config

	sensor  atmosphere
	hub     *sensors.Hub
	display alphanumeric
	strip   ledStrip
	status  statusLight
}

func newWeatherstation(hw board, cfg env.Config) *weatherstation {
	return &weatherstation{hw: hw, cfg: cfg}
}

// Open initialises every peripheral. Any error here is fatal to the station;
// the caller should still Close to release what was opened.
func (w *weatherstation) Open() error {
	logger.Infof("Weather Station Started [%v]", version)

	// Initialize temperature/pressure sensors
	sensor, err := w.hw.OpenSensor()
	if err != nil {
		return fmt.Errorf("error initializing BMP280: %w", err)
	}
	w.sensor = sensor
	w.hub = sensors.NewHub(sensor, w.cfg.Interval.Duration)
	logger.Info("Initialized I2C BMP280")

	// Initialize alphanumeric display
	d, err := w.hw.OpenDisplay()
	if err != nil {
		return fmt.Errorf("error initializing display: %w", err)
	}
	w.display = d
	if err := d.SetEnabled(true); err != nil {
		return fmt.Errorf("error initializing display: %w", err)
	}
	if err := d.DisplayString(env.StartupText); err != nil {
		return fmt.Errorf("error initializing display: %w", err)
	}
	logger.Info("Initialized I2C Display")

	// Initialize LED strip
	s, err := w.hw.OpenStrip()
	if err != nil {
		return fmt.Errorf("error initializing LED strip: %w", err)
	}
	w.strip = s
	if err := s.SetBrightness(w.cfg.StripBrightness); err != nil {
		return fmt.Errorf("error initializing LED strip: %w", err)
	}
	colors := rainbow.Solid(red)
	// the first frame after power up is not always latched by the APA102s, so send it twice
	for i := 0; i < 2; i++ {
		if err := s.Write(colors[:]); err != nil {
			return fmt.Errorf("error initializing LED strip: %w", err)
		}
	}
	logger.Info("Initialized SPI LED strip")

	// failed status LED is not critical
	if w.cfg.StatusLed != "" {
		st, err := w.hw.OpenStatus()
		if err != nil {
			logger.Errorf("Status LED unavailable [%v]", err)
		} else {
			w.status = st
		}
	}
	return nil
}

// Start registers for temperature and pressure events.
func (w *weatherstation) Start() error {
	if w.hub == nil {
		return errors.New("station not open")
	}
	return w.hub.Register(w.onSensorChanged)
}

// Stop unregisters the sensor listener. No update runs after it returns.
func (w *weatherstation) Stop() {
	if w.hub != nil {
		w.hub.Unregister()
	}
}

// Close releases every peripheral. Failures are logged and the handle is dropped regardless.
func (w *weatherstation) Close() {
	if w.sensor != nil {
		if err := w.sensor.Close(); err != nil {
			logger.Errorf("Error closing sensors [%v]", err)
		}
		w.sensor = nil
		w.hub = nil
	}

	if w.display != nil {
		if err := closeDisplay(w.display); err != nil {
			logger.Errorf("Error closing display [%v]", err)
		}
		w.display = nil
	}

	if w.strip != nil {
		if err := closeStrip(w.strip); err != nil {
			logger.Errorf("Error closing LED strip [%v]", err)
		}
		w.strip = nil
	}

	if w.status != nil {
		if err := w.status.Close(); err != nil {
			logger.Errorf("Error closing status LED [%v]", err)
		}
		w.status = nil
	}

	if w.hw != nil {
		if err := w.hw.Close(); err != nil {
			logger.Errorf("Error closing buses [%v]", err)
		}
	}
}

func closeDisplay(d alphanumeric) error {
	if err := d.Clear(); err != nil {
		return err
	}
	if err := d.SetEnabled(false); err != nil {
		return err
	}
	return d.Close()
}

func closeStrip(s ledStrip) error {
	if err := s.SetBrightness(0); err != nil {
		return err
	}
	off := rainbow.Strip{}
	if err := s.Write(off[:]); err != nil {
		return err
	}
	return s.Close()
}

// Run opens the station and delivers readings until ctx is done or the sensor stream is lost.
func (w *weatherstation) Run(ctx context.Context) error {
	defer w.Close()
	if err := w.Open(); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		logger.Info("Stopping weather station")
		w.Stop()
		return nil
	case err := <-w.hub.Err():
		w.Stop()
		return fmt.Errorf("weather station stopped: %w", err)
	}
}

func (w *weatherstation) onSensorChanged(e sensors.Event) {
	switch e.Kind {
	case sensors.Temperature:
		w.updateTemperatureDisplay(e.Value)
	case sensors.Pressure:
		w.updateBarometerDisplay(e.Value)
	default:
		logger.Debugf("Ignoring %v event", e.Kind)
		return
	}
	if w.status != nil {
		w.status.Flash()
	}
}

// updateTemperatureDisplay shows the latest temperature on the display.
func (w *weatherstation) updateTemperatureDisplay(temperature float64) {
	if w.display == nil {
		return
	}
	if err := w.display.Display(temperature); err != nil {
		logger.Errorf("Error updating display [%v]", err)
	}
}

// updateBarometerDisplay shows the latest pressure on the LED strip.
func (w *weatherstation) updateBarometerDisplay(pressure float64) {
	if w.strip == nil {
		return
	}
	colors := rainbow.StripColors(pressure)
	if err := w.strip.Write(colors[:]); err != nil {
		logger.Errorf("Error updating ledstrip [%v]", err)
	}
}
