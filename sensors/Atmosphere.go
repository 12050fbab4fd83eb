package sensors

import (
	"fmt"
	"math"
	"time"

	logger "github.com/sirupsen/logrus"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

type PressurehPa float64
type TemperatureC float64

func (p PressurehPa) Float64() float64 {
	return float64(p)
}

func (t TemperatureC) Float64() float64 {
	return float64(t)
}

// envSensor is the subset of bmxx80.Dev used here.
type envSensor interface {
	Sense(e *physic.Env) error
	SenseContinuous(interval time.Duration) (<-chan physic.Env, error)
	Halt() error
}

// Atmosphere is the BMP280 temperature and pressure sensor.
type Atmosphere struct {
	dev envSensor
}

func NewAtmosphere(bus i2c.Bus, addr uint16) (*Atmosphere, error) {
	logger.Infof("Starting BMP280 reader [%x]", addr)
	bmp, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bmp280: %w", err)
	}
	return &Atmosphere{dev: bmp}, nil
}

func (a *Atmosphere) ReadTemperature() (TemperatureC, error) {
	em := physic.Env{}
	if err := a.dev.Sense(&em); err != nil {
		return 0, fmt.Errorf("BMP280 read failed: %w", err)
	}
	return toCelsius(em), nil
}

func (a *Atmosphere) ReadPressure() (PressurehPa, error) {
	em := physic.Env{}
	if err := a.dev.Sense(&em); err != nil {
		return 0, fmt.Errorf("BMP280 read failed: %w", err)
	}
	return toHPa(em), nil
}

// SenseContinuous starts periodic sampling; the channel closes on Halt.
func (a *Atmosphere) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	return a.dev.SenseContinuous(interval)
}

// Halt stops continuous sampling.
func (a *Atmosphere) Halt() error {
	return a.dev.Halt()
}

func (a *Atmosphere) Close() error {
	return a.dev.Halt()
}

func toCelsius(em physic.Env) TemperatureC {
	return TemperatureC(em.Temperature.Celsius())
}

// convert raw sensor output, rounded to 0.01 hPa
func toHPa(em physic.Env) PressurehPa {
	return PressurehPa(math.Round((float64(em.Pressure)/float64(100*physic.Pascal))*100) / 100)
}
