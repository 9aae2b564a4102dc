package health

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGateInitialState(t *testing.T) {
	if !NewGate(true).Ready() {
		t.Error("gate probed healthy should be ready")
	}
	if NewGate(false).Ready() {
		t.Error("gate probed unhealthy should not be ready")
	}
}

func TestDegradeIsOneWay(t *testing.T) {
	g := NewGate(true)
	g.Degrade()
	if g.Ready() {
		t.Error("gate still ready after Degrade")
	}
	// There is no recovery path: repeat calls stay degraded.
	g.Degrade()
	if g.Ready() {
		t.Error("gate recovered, one-way contract broken")
	}
}

func TestWarnOncePerEntity(t *testing.T) {
	g := NewGate(false)

	if !g.WarnOnce("conversations") {
		t.Error("first warn for conversations suppressed")
	}
	if g.WarnOnce("conversations") {
		t.Error("second warn for conversations not suppressed")
	}
	// A different entity type gets its own warning.
	if !g.WarnOnce("messages") {
		t.Error("first warn for messages suppressed")
	}
}

func TestWarnOnceConcurrent(t *testing.T) {
	g := NewGate(false)

	const goroutines = 64
	var winners atomic.Int64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if g.WarnOnce("conversations") {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if winners.Load() != 1 {
		t.Errorf("winners = %d, want exactly 1", winners.Load())
	}
}
