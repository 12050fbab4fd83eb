package led

import (
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED is a single GPIO driven LED, such as the Rainbow HAT's red, green and blue LEDs.
type LED struct {
	Name     string
	lock     sync.Mutex
	wg       sync.WaitGroup
	on       bool
	duration time.Duration
	gpioPin  gpio.PinOut
}

func NewLED(name string, pin gpio.PinOut, flash time.Duration) *LED {
	logger.Infof("Creating new LED on pin [%v] called [%v]", pin, name)
	l := &LED{
		Name:     name,
		duration: flash,
		gpioPin:  pin,
	}
	_ = l.gpioPin.Out(gpio.Low)
	return l
}

// ByName looks the pin up in the GPIO registry.
func ByName(name string, pinName string, flash time.Duration) (*LED, error) {
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("failed to find %v pin", pinName)
	}
	return NewLED(name, p, flash), nil
}

func (l *LED) On() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = true
	_ = l.gpioPin.Out(gpio.High)
}

func (l *LED) Off() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = false
	_ = l.gpioPin.Out(gpio.Low)
}

// Flash inverts the LED briefly without blocking the caller.
func (l *LED) Flash() {
	if !l.lock.TryLock() {
		// a flash is already in progress, this request can be dropped rather than queued
		logger.Debugf("LED Locked [%v]", l.Name)
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.lock.Unlock()
		// if the LED is currently off, then flash on
		if !l.on {
			_ = l.gpioPin.Out(gpio.High)
			time.Sleep(l.duration)
			_ = l.gpioPin.Out(gpio.Low)
		} else {
			// 'off' flash
			_ = l.gpioPin.Out(gpio.Low)
			time.Sleep(l.duration)
			_ = l.gpioPin.Out(gpio.High)
		}
	}()
}

func (l *LED) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

// Close waits for any flash to finish and turns the LED off.
func (l *LED) Close() error {
	l.wg.Wait()
	l.Off()
	return nil
}
