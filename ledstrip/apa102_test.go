package ledstrip

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordConn struct {
	writes [][]byte
	err    error
}

func (r *recordConn) Tx(w, _ []byte) error {
	if r.err != nil {
		return r.err
	}
	b := make([]byte, len(w))
	copy(b, w)
	r.writes = append(r.writes, b)
	return nil
}

func TestWriteFrame(t *testing.T) {
	c := &recordConn{}
	s := New(c, 3)
	require.NoError(t, s.SetBrightness(1))

	colors := []color.RGBA{
		{R: 0x10, G: 0x20, B: 0x30, A: 0xff},
		{},
		{R: 0xff, A: 0xff},
	}
	require.NoError(t, s.Write(colors))
	require.Len(t, c.writes, 1)

	assert.Equal(t, []byte{
		0, 0, 0, 0,
		0xE1, 0x30, 0x20, 0x10,
		0xE1, 0, 0, 0,
		0xE1, 0, 0, 0xff,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, c.writes[0])
}

func TestWriteShortAndLong(t *testing.T) {
	c := &recordConn{}
	s := New(c, 2)

	red := color.RGBA{R: 0xff, A: 0xff}
	require.NoError(t, s.Write([]color.RGBA{red}))
	// second LED is padded as off, at full brightness
	assert.Equal(t, []byte{0xFF, 0, 0, 0}, c.writes[0][8:12])

	require.NoError(t, s.Write([]color.RGBA{red, red, red, red}))
	assert.Len(t, c.writes[1], 4+2*4+4)
}

func TestEndFrameLen(t *testing.T) {
	assert.Equal(t, 4, endFrameLen(7))
	assert.Equal(t, 4, endFrameLen(64))
	assert.Equal(t, 5, endFrameLen(65))
}

func TestSetBrightness(t *testing.T) {
	s := New(&recordConn{}, 7)
	assert.Equal(t, MaxBrightness, s.Brightness())
	require.NoError(t, s.SetBrightness(0))
	assert.Equal(t, 0, s.Brightness())
	assert.Error(t, s.SetBrightness(32))
	assert.Error(t, s.SetBrightness(-1))
	assert.Equal(t, 0, s.Brightness())
}

func TestWriteError(t *testing.T) {
	fault := errors.New("spi fault")
	s := New(&recordConn{err: fault}, 7)
	err := s.Write(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
}

func TestClose(t *testing.T) {
	c := &recordConn{}
	s := New(c, 7)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.ErrorIs(t, s.Write(nil), ErrClosed)
	assert.ErrorIs(t, s.SetBrightness(1), ErrClosed)
	assert.Empty(t, c.writes)
}
