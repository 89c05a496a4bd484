package future

import (
	"sync"
	"testing"
	"time"
)

func TestWaitBlocksUntilResolve(t *testing.T) {
	f := New[int]()
	done := make(chan int, 1)
	go func() {
		done <- f.Wait()
	}()

	select {
	case v := <-done:
		t.Fatalf("Wait returned early with %d before Resolve", v)
	case <-time.After(20 * time.Millisecond):
	}

	f.Resolve(42)
	if got := <-done; got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestResolveIsOneShot(t *testing.T) {
	f := New[string]()
	f.Resolve("first")
	f.Resolve("second")
	if got := f.Wait(); got != "first" {
		t.Fatalf("got %q, want %q", got, "first")
	}
}

func TestMapGetOrCreateSingleWinner(t *testing.T) {
	m := NewMap[string, int]()

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created := m.GetOrCreate("pkg")
			wins <- created
		}()
	}
	wg.Wait()
	close(wins)

	creators := 0
	for created := range wins {
		if created {
			creators++
		}
	}
	if creators != 1 {
		t.Fatalf("expected exactly one creator, got %d", creators)
	}
}

func TestMapGetBeforeCreate(t *testing.T) {
	m := NewMap[string, int]()
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected Get to report absence before any GetOrCreate")
	}
}
