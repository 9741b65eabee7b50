package audio

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	wavChannels = 2
	// PCM
	wavFormat = 1

	drainChunk = 1024
)

// Recorder writes frames drained from a Queue into a 16-bit stereo WAV stream.
type Recorder struct {
	enc     *wav.Encoder
	frames  []Frame
	buf     *goaudio.IntBuffer
	written int
}

func NewRecorder(w io.WriteSeeker) *Recorder {
	return &Recorder{
		enc:    wav.NewEncoder(w, SampleRate, wavBitDepth, wavChannels, wavFormat),
		frames: make([]Frame, drainChunk),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: wavChannels, SampleRate: SampleRate},
			Data:           make([]int, 0, drainChunk*wavChannels),
			SourceBitDepth: wavBitDepth,
		},
	}
}

// Drain empties q into the WAV stream and returns the number of frames written.
func (r *Recorder) Drain(q *Queue) (int, error) {
	total := 0
	for {
		n := q.Pull(r.frames)
		if n == 0 {
			return total, nil
		}
		r.buf.Data = r.buf.Data[:0]
		for _, f := range r.frames[:n] {
			r.buf.Data = append(r.buf.Data, toPCM16(f[0]), toPCM16(f[1]))
		}
		if err := r.enc.Write(r.buf); err != nil {
			return total, fmt.Errorf("writing wav samples: %w", err)
		}
		total += n
		r.written += n
	}
}

// Frames returns the total number of frames written so far.
func (r *Recorder) Frames() int {
	return r.written
}

// Close finalizes the WAV header. The underlying writer is not closed.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	slog.Debug("wav recording closed", "frames", r.written)
	return nil
}

func toPCM16(v float32) int {
	v = max(-1, min(1, v))
	return int(math.Round(float64(v) * math.MaxInt16))
}
