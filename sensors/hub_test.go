package sensors

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

type fakeSource struct {
	ch       chan physic.Env
	interval time.Duration
	halts    int
	err      error

	closeOnHalt bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan physic.Env)}
}

func (f *fakeSource) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.interval = interval
	return f.ch, nil
}

func (f *fakeSource) Halt() error {
	f.halts++
	if f.closeOnHalt {
		close(f.ch)
	}
	return nil
}

func reading(c float64, hPa float64) physic.Env {
	var e physic.Env
	e.Temperature = physic.ZeroCelsius + physic.Temperature(c*float64(physic.Kelvin))
	e.Pressure = physic.Pressure(hPa * 100 * float64(physic.Pascal))
	return e
}

type collector struct {
	lock   sync.Mutex
	events []Event
}

func (c *collector) listen(e Event) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) snapshot() []Event {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Event(nil), c.events...)
}

func TestHubDelivers(t *testing.T) {
	src := newFakeSource()
	h := NewHub(src, 2*time.Second)
	c := &collector{}

	require.NoError(t, h.Register(c.listen))
	assert.Equal(t, 2*time.Second, src.interval)

	src.ch <- reading(21.5, 1013.25)
	src.ch <- reading(22, 990)
	h.Unregister()

	events := c.snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, Temperature, events[0].Kind)
	assert.InDelta(t, 21.5, events[0].Value, 0.01)
	assert.Equal(t, Pressure, events[1].Kind)
	assert.InDelta(t, 1013.25, events[1].Value, 0.01)
	assert.Equal(t, Temperature, events[2].Kind)
	assert.Equal(t, Pressure, events[3].Kind)
	assert.InDelta(t, 990, events[3].Value, 0.01)
	assert.Equal(t, 1, src.halts)
}

func TestHubRegisterTwice(t *testing.T) {
	src := newFakeSource()
	h := NewHub(src, time.Second)
	require.NoError(t, h.Register(func(Event) {}))
	assert.ErrorIs(t, h.Register(func(Event) {}), ErrRegistered)
	h.Unregister()

	// can register again once unregistered
	require.NoError(t, h.Register(func(Event) {}))
	h.Unregister()
	assert.Equal(t, 2, src.halts)
}

func TestHubUnregisterIdle(t *testing.T) {
	src := newFakeSource()
	h := NewHub(src, time.Second)
	h.Unregister()
	assert.Equal(t, 0, src.halts)
}

func TestHubSourceError(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("not ready")
	h := NewHub(src, time.Second)
	err := h.Register(func(Event) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, src.err)
	h.Unregister()
	assert.Equal(t, 0, src.halts)
}

func TestHubStreamClosed(t *testing.T) {
	src := newFakeSource()
	h := NewHub(src, time.Second)
	c := &collector{}
	require.NoError(t, h.Register(c.listen))
	hook := logtest.NewGlobal()
	defer hook.Reset()

	src.ch <- reading(10, 1000)
	close(src.ch)

	select {
	case err := <-h.Err():
		assert.ErrorIs(t, err, ErrStreamLost)
	case <-time.After(time.Second):
		t.Fatal("stream loss not reported")
	}
	h.Unregister()
	assert.Len(t, c.snapshot(), 2)

	errorLogs := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorLogs++
		}
	}
	assert.Equal(t, 1, errorLogs)
}

func TestHubHaltIsNotStreamLoss(t *testing.T) {
	src := newFakeSource()
	src.closeOnHalt = true
	h := NewHub(src, time.Second)
	require.NoError(t, h.Register(func(Event) {}))
	src.ch <- reading(10, 1000)
	h.Unregister()

	select {
	case err := <-h.Err():
		t.Fatalf("unexpected error after Unregister: %v", err)
	default:
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "temperature", Temperature.String())
	assert.Equal(t, "pressure", Pressure.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}
