package sensors

import (
	"errors"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

type Kind int

const (
	Temperature Kind = iota
	Pressure
)

func (k Kind) String() string {
	switch k {
	case Temperature:
		return "temperature"
	case Pressure:
		return "pressure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a single sensor value, °C for Temperature and hPa for Pressure.
type Event struct {
	Kind  Kind
	Value float64
	Time  time.Time
}

// Listener receives sensor events. It is never called concurrently with itself.
type Listener func(Event)

// Source produces paired temperature and pressure readings until halted.
type Source interface {
	SenseContinuous(interval time.Duration) (<-chan physic.Env, error)
	Halt() error
}

var ErrRegistered = errors.New("sensors: listener already registered")

// ErrStreamLost is reported on Err when the source stops delivering while registered.
var ErrStreamLost = errors.New("sensors: sensor stream closed")

// Hub delivers readings from a Source to one registered listener.
type Hub struct {
	src      Source
	interval time.Duration

	lock sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
	errs chan error
}

func NewHub(src Source, interval time.Duration) *Hub {
	return &Hub{src: src, interval: interval, errs: make(chan error, 1)}
}

// Err reports ErrStreamLost if the source closes while a listener is registered.
// bmxx80 ends continuous sensing on the first failed read, so no further events follow.
func (h *Hub) Err() <-chan error {
	return h.errs
}

// Register starts sampling and delivers each reading to l as a temperature event
// followed by a pressure event.
func (h *Hub) Register(l Listener) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.done != nil {
		return ErrRegistered
	}

	readings, err := h.src.SenseContinuous(h.interval)
	if err != nil {
		return fmt.Errorf("sensors: start sampling: %w", err)
	}
	done := make(chan struct{})
	h.done = done
	// drop a loss reported by an earlier registration
	select {
	case <-h.errs:
	default:
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-done:
				return
			case em, ok := <-readings:
				if !ok {
					select {
					case <-done:
						// halted by Unregister
					default:
						logger.Errorf("Sensor stream closed, no further readings")
						select {
						case h.errs <- ErrStreamLost:
						default:
						}
					}
					return
				}
				h.dispatch(l, em)
			}
		}
	}()
	logger.Infof("Sensor listener registered, interval [%v]", h.interval)
	return nil
}

// Unregister stops delivery. On return no listener call is in progress.
func (h *Hub) Unregister() {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.done == nil {
		return
	}
	close(h.done)
	if err := h.src.Halt(); err != nil {
		logger.Errorf("Failed to halt sensor [%v]", err)
	}
	h.wg.Wait()
	h.done = nil
	logger.Info("Sensor listener unregistered")
}

func (h *Hub) dispatch(l Listener, em physic.Env) {
	now := time.Now()
	t := Event{Kind: Temperature, Value: toCelsius(em).Float64(), Time: now}
	p := Event{Kind: Pressure, Value: toHPa(em).Float64(), Time: now}
	logger.Debugf("Sensor reading [%.2f C] [%.2f hPa]", t.Value, p.Value)
	l(t)
	l(p)
}
