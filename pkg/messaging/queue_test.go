package messaging

import (
	"sync"
	"testing"
	"time"
)

func TestOutboundQueueDeliversInChunks(t *testing.T) {
	var mu sync.Mutex
	var batches [][]int

	q := NewOutboundQueue(func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		batch := make([]int, len(items))
		copy(batch, items)
		batches = append(batches, batch)
	}, 2)

	q.Add(1, 2, 3)

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		total := 0
		for _, b := range batches {
			total += len(b)
		}
		mu.Unlock()
		if total == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected 3 delivered items, got %d", total)
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches[0]) != 2 {
		t.Errorf("Expected first batch of 2, got %d", len(batches[0]))
	}
	seen := map[int]bool{}
	for _, b := range batches {
		for _, v := range b {
			seen[v] = true
		}
	}
	for _, v := range []int{1, 2, 3} {
		if !seen[v] {
			t.Errorf("Expected item %d to be delivered", v)
		}
	}
}
