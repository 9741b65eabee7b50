package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WritesStereoPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	q := NewQueue(16)
	q.Push(Frame{1, -1})
	q.Push(Frame{0, 0.5})

	rec := NewRecorder(f)
	n, err := rec.Drain(q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, rec.Close())
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	dec := wav.NewDecoder(in)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(SampleRate), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{32767, -32767, 0, 16384}, buf.Data)
}

func TestToPCM16_Clamps(t *testing.T) {
	assert.Equal(t, 32767, toPCM16(2))
	assert.Equal(t, -32767, toPCM16(-2))
	assert.Equal(t, 0, toPCM16(0))
}
