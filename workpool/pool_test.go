package workpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestInvalidSize(t *testing.T) {

	var params = []struct {
		workers int
		queue   int
	}{
		{0, 1},
		{-1, 1},
		{1, -1},
	}

	for _, prm := range params {
		if _, err := New(prm.workers, prm.queue); err != ErrInvalidPoolSize {
			t.Errorf("expected ErrInvalidPoolSize, workers=%d, queue=%d --> %v\n", prm.workers, prm.queue, err)
		}
	}
}

func TestAllTasksRun(t *testing.T) {

	p, _ := New(4, 8)

	var done int32
	for i := 0; i < 100; i++ {
		if err := p.Submit(func() { atomic.AddInt32(&done, 1) }); err != nil {
			t.Fatalf("submit failed: %s\n", err.Error())
		}
	}
	p.Stop()

	if done != 100 {
		t.Errorf("ran %d of 100 tasks\n", done)
	}
	if err := p.Submit(func() {}); err != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed, got %v\n", err)
	}
}

func TestConcurrencyIsBounded(t *testing.T) {

	p, _ := New(3, 0)

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		})
	}
	wg.Wait()
	p.Stop()

	if peak > 3 {
		t.Errorf("%d tasks ran at once on a pool of 3\n", peak)
	}
}

func TestSubmitBlocksWhenSaturated(t *testing.T) {

	p, _ := New(1, 1)
	defer p.Stop()

	release := make(chan struct{})
	p.Submit(func() { <-release }) // occupies the worker
	p.Submit(func() {})            // fills the queue

	submitted := make(chan struct{})
	go func() {
		p.Submit(func() {})
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Errorf("submit did not block on a saturated pool\n")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Errorf("submit still blocked after the worker was released\n")
	}
}

func TestPanicKeepsWorker(t *testing.T) {

	p, _ := New(1, 1)

	p.Submit(func() { panic("boom") })
	var ran int32
	p.Submit(func() { atomic.StoreInt32(&ran, 1) })
	p.Stop()

	if ran != 1 {
		t.Errorf("worker died with the panicking task\n")
	}
}
