package joinctx

import (
	"context"
	"testing"
	"time"
)

func TestDoneWhenEitherParentCancels(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	b, cancelB := context.WithCancel(context.Background())
	defer cancelB()

	jc, stop := Join(a, b)
	defer stop()

	cancelA()
	select {
	case <-jc.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for joined context to finish after parent a canceled")
	}
	if jc.Err() != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", jc.Err())
	}
}

func TestValuePrefersFirstParent(t *testing.T) {
	type key string
	a := context.WithValue(context.Background(), key("k"), "from-a")
	b := context.WithValue(context.Background(), key("k"), "from-b")
	jc, stop := Join(a, b)
	defer stop()

	if v := jc.Value(key("k")); v != "from-a" {
		t.Fatalf("got %v, want from-a", v)
	}
}

func TestValueFallsBackToSecondParent(t *testing.T) {
	type key string
	a := context.Background()
	b := context.WithValue(context.Background(), key("only-in-b"), "yes")
	jc, stop := Join(a, b)
	defer stop()

	if v := jc.Value(key("only-in-b")); v != "yes" {
		t.Fatalf("got %v, want yes", v)
	}
}

func TestDeadlineIsEarliest(t *testing.T) {
	soon := time.Now().Add(10 * time.Millisecond)
	later := time.Now().Add(time.Hour)
	a, cancelA := context.WithDeadline(context.Background(), soon)
	defer cancelA()
	b, cancelB := context.WithDeadline(context.Background(), later)
	defer cancelB()

	jc, stop := Join(a, b)
	defer stop()

	d, ok := jc.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if !d.Equal(soon) {
		t.Fatalf("got %v, want the sooner deadline %v", d, soon)
	}
}

func TestStopDoesNotCancelParents(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	b, cancelB := context.WithCancel(context.Background())
	defer cancelB()

	jc, stop := Join(a, b)
	stop()

	select {
	case <-jc.Done():
		t.Fatal("joined context should not be done just because stop was called")
	case <-time.After(20 * time.Millisecond):
	}
	if a.Err() != nil || b.Err() != nil {
		t.Fatal("stop must not cancel either parent")
	}
}
