package tts

import "testing"

func TestPriorityQueueOrdering(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Enqueue("low-1", 0)
	q.Enqueue("high", 5)
	q.Enqueue("low-2", 0)
	q.Enqueue("mid", 3)

	want := []string{"high", "mid", "low-1", "low-2"}
	for _, expected := range want {
		got, ok := q.Dequeue()
		if !ok {
			t.Fatalf("queue empty, expected %q", expected)
		}
		if got != expected {
			t.Errorf("Dequeue: got %q, want %q", got, expected)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("expected empty queue")
	}
}

func TestPriorityQueueFIFOWithinPriority(t *testing.T) {
	q := NewPriorityQueue[int]()
	for i := range 5 {
		q.Enqueue(i, 1)
	}
	for i := range 5 {
		got, _ := q.Dequeue()
		if got != i {
			t.Errorf("position %d: got %d, want %d", i, got, i)
		}
	}
}

func TestPriorityQueueDrain(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Enqueue("a", 0)
	q.Enqueue("b", 1)

	if n := q.Drain(); n != 2 {
		t.Errorf("Drain: got %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain: got %d, want 0", q.Len())
	}
	if n := q.Drain(); n != 0 {
		t.Errorf("second Drain: got %d, want 0", n)
	}
}
