package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeF32(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestStream_Read(t *testing.T) {
	q := NewQueue(8)
	q.Push(Frame{0.5, -0.5})
	q.Push(Frame{0.25, -0.25})
	s := NewStream(q)

	t.Run("interleaves and pads with silence", func(t *testing.T) {
		p := make([]byte, 3*bytesPerFrame)
		n, err := s.Read(p)
		require.NoError(t, err)
		assert.Equal(t, len(p), n)
		assert.Equal(t, []float32{0.5, -0.5, 0.25, -0.25, 0, 0}, decodeF32(p))
		assert.Equal(t, uint64(1), s.Underruns())
		assert.Zero(t, q.Len())
	})

	t.Run("ignores a partial trailing frame", func(t *testing.T) {
		q.Push(Frame{1, 1})
		p := make([]byte, bytesPerFrame+3)
		n, err := s.Read(p)
		require.NoError(t, err)
		assert.Equal(t, bytesPerFrame, n)
		assert.Equal(t, []float32{1, 1}, decodeF32(p[:n]))
	})

	t.Run("short buffer", func(t *testing.T) {
		n, err := s.Read(make([]byte, 4))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
