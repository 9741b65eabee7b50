package sdl2

import (
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg/audio"
)

func TestReadAudio(t *testing.T) {
	q := audio.NewQueue(8)
	q.Push(audio.Frame{0.5, -0.5})
	q.Push(audio.Frame{0.25, -0.25})

	chunk, err := readAudio(audio.NewStream(q), make([]byte, 4*8))
	require.NoError(t, err)
	// short queues are padded with silence to whole frames
	assert.Len(t, chunk, 4*8)
	assert.Equal(t, 0, q.Len())
}

func TestReadAudio_Error(t *testing.T) {
	boom := errors.New("boom")

	chunk, err := readAudio(iotest.ErrReader(boom), make([]byte, 16))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, chunk)
}
