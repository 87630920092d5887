package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	counter *int32
	wg      *sync.WaitGroup
}

func (t *countingTask) Execute() {
	atomic.AddInt32(t.counter, 1)
	t.wg.Done()
}

type panicTask struct {
	wg *sync.WaitGroup
}

func (t *panicTask) Execute() {
	defer t.wg.Done()
	panic("boom")
}

func TestPoolExecutesTasks(t *testing.T) {
	pool := NewWorkerPool(4, 16)
	pool.Start()
	defer pool.Stop()

	var counter int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.True(t, pool.Submit(&countingTask{counter: &counter, wg: &wg}))
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&counter))
}

func TestPoolRecoversPanics(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.Start()
	defer pool.Stop()

	var counter int32
	var wg sync.WaitGroup

	wg.Add(1)
	require.True(t, pool.Submit(&panicTask{wg: &wg}))

	wg.Add(1)
	require.True(t, pool.Submit(&countingTask{counter: &counter, wg: &wg}))
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&counter))
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	pool := NewWorkerPool(1, 64)
	pool.Start()

	var counter int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.True(t, pool.Submit(&countingTask{counter: &counter, wg: &wg}))
	}

	// Stop must run the backlog, not discard it.
	pool.Stop()
	assert.Equal(t, int32(50), atomic.LoadInt32(&counter))
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	// Never started, so the queue only holds its buffer.
	pool := NewWorkerPool(1, 1)

	var wg sync.WaitGroup
	var counter int32
	wg.Add(1)

	assert.True(t, pool.Submit(&countingTask{counter: &counter, wg: &wg}))
	assert.False(t, pool.Submit(&countingTask{counter: &counter, wg: &wg}))
}

func TestSubmitBlockingTimesOut(t *testing.T) {
	pool := NewWorkerPool(1, 1)

	var wg sync.WaitGroup
	var counter int32
	wg.Add(1)

	require.True(t, pool.SubmitBlocking(&countingTask{counter: &counter, wg: &wg}, 10*time.Millisecond))

	start := time.Now()
	ok := pool.SubmitBlocking(&countingTask{counter: &counter, wg: &wg}, 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
