package audio

import (
	"encoding/binary"
	"math"
)

// bytesPerFrame is two little endian float32 samples.
const bytesPerFrame = 8

// Stream reads queued frames as interleaved little endian float32 PCM, the
// layout both SDL (AUDIO_F32LSB) and Ebiten's float32 player expect.
// Reads never block: when the queue runs dry the rest of the buffer is silence.
type Stream struct {
	q       *Queue
	scratch []Frame
	// underruns counts reads that had to be padded with silence
	underruns uint64
}

func NewStream(q *Queue) *Stream {
	return &Stream{q: q}
}

// Read fills p with whole frames. A trailing partial frame is left unused.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(s.scratch) < frames {
		s.scratch = make([]Frame, frames)
	}
	buf := s.scratch[:frames]

	n := s.q.Pull(buf)
	if n < frames {
		s.underruns++
		clear(buf[n:])
	}

	for i, f := range buf {
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], math.Float32bits(f[0]))
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], math.Float32bits(f[1]))
	}
	return frames * bytesPerFrame, nil
}

// Underruns returns how many reads found fewer frames than requested.
func (s *Stream) Underruns() uint64 {
	return s.underruns
}
