package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PushPull(t *testing.T) {
	q := NewQueue(4)
	q.Push(Frame{0.1, 0.2})
	q.Push(Frame{0.3, 0.4})

	assert.Equal(t, 2, q.Len())

	dst := make([]Frame, 8)
	n := q.Pull(dst)
	require.Equal(t, 2, n)
	assert.Equal(t, Frame{0.1, 0.2}, dst[0])
	assert.Equal(t, Frame{0.3, 0.4}, dst[1])
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue(3)
	for i := range 5 {
		q.Push(Frame{float32(i), 0})
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, uint64(2), q.Dropped())

	dst := make([]Frame, 3)
	require.Equal(t, 3, q.Pull(dst))
	assert.Equal(t, []Frame{{2, 0}, {3, 0}, {4, 0}}, dst)
}

func TestQueue_PartialPullKeepsOrder(t *testing.T) {
	q := NewQueue(4)
	for i := range 4 {
		q.Push(Frame{float32(i), float32(i)})
	}

	dst := make([]Frame, 1)
	require.Equal(t, 1, q.Pull(dst))
	assert.Equal(t, Frame{0, 0}, dst[0])

	q.Push(Frame{9, 9})
	rest := make([]Frame, 4)
	require.Equal(t, 4, q.Pull(rest))
	assert.Equal(t, []Frame{{1, 1}, {2, 2}, {3, 3}, {9, 9}}, rest)
	assert.Equal(t, uint64(0), q.Dropped())
}

func TestQueue_PullInterleaved(t *testing.T) {
	q := NewQueue(4)
	q.Push(Frame{0.5, -0.5})
	q.Push(Frame{0.25, -0.25})

	dst := make([]float32, 6)
	n := q.PullInterleaved(dst)
	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{0.5, -0.5, 0.25, -0.25}, dst[:n])
}

func TestQueue_MinimumCapacity(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, 1, q.Cap())
	q.Push(Frame{1, 1})
	q.Push(Frame{2, 2})
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	q := NewQueue(64)
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range total {
			q.Push(Frame{float32(i), 0})
		}
	}()

	pulled := 0
	dst := make([]Frame, 16)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		pulled += q.Pull(dst)
		select {
		case <-done:
			pulled += q.Pull(make([]Frame, 64))
			assert.Equal(t, uint64(total), uint64(pulled)+q.Dropped())
			return
		default:
		}
	}
}
