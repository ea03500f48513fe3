package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek = %d", v)
	}
	for i := 1; i <= 3; i++ {
		v, err := rq.Dequeue()
		if err != nil || v != i {
			t.Errorf("Dequeue = %d, %v; want %d", v, err, i)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Expected ErrQueueEmpty, got %v", err)
	}
}

func TestGrowableRingQueueKeepsOrderAcrossWrap(t *testing.T) {
	rq := NewGrowableRingQueue[string](2)
	_ = rq.Enqueue("a")
	_ = rq.Enqueue("b")
	// wrap the read index before growing
	_, _ = rq.Dequeue()
	_ = rq.Enqueue("c")
	_ = rq.Enqueue("d")
	_ = rq.Enqueue("e")

	if rq.Len() != 4 {
		t.Fatalf("Len = %d", rq.Len())
	}
	for _, want := range []string{"b", "c", "d", "e"} {
		if got, _ := rq.Dequeue(); got != want {
			t.Errorf("Dequeue = %s, want %s", got, want)
		}
	}
	if !rq.IsEmpty() {
		t.Error("queue should be empty")
	}
}
