package audio

import "sync"

// DefaultQueueCapacity holds roughly 100ms of audio.
const DefaultQueueCapacity = SampleRate / 10

// Frame is one stereo sample pair, left then right, in [-1, 1].
type Frame [2]float32

// Queue is a bounded ring of frames shared between the emulation loop and
// a playback consumer. Push never blocks: when the ring is full the oldest
// frame is discarded and counted.
type Queue struct {
	mu      sync.Mutex
	buf     []Frame
	head    int
	size    int
	dropped uint64
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{buf: make([]Frame, capacity)}
}

func (q *Queue) Push(f Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		q.dropped++
	}
	q.buf[(q.head+q.size)%len(q.buf)] = f
	q.size++
}

// Pull moves up to len(dst) frames into dst and returns how many were copied.
func (q *Queue) Pull(dst []Frame) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := min(len(dst), q.size)
	for i := range n {
		dst[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.head = (q.head + n) % len(q.buf)
	q.size -= n
	return n
}

// PullInterleaved fills dst with left/right float32 pairs and returns the
// number of floats written.
func (q *Queue) PullInterleaved(dst []float32) int {
	frames := make([]Frame, len(dst)/2)
	n := q.Pull(frames)
	for i := range n {
		dst[2*i] = frames[i][0]
		dst[2*i+1] = frames[i][1]
	}
	return n * 2
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *Queue) Cap() int {
	return len(q.buf)
}

// Dropped returns how many frames were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
