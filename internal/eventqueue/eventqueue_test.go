package eventqueue

import (
	"testing"
	"time"
)

func payloads(events []Event) []any {
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = e.Payload
	}
	return out
}

func TestPush(t *testing.T) {
	q := New(10, 0)
	q.Push("a")
	q.Push("b")
	got := payloads(q.Get(0, time.Second))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v, want [a b]", got)
	}

	c := q.Current()
	q.Push("c")
	got = payloads(q.Get(c, time.Second))
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("got %v, want [c]", got)
	}
}

func TestTrim(t *testing.T) {
	q := New(5, 0)
	for i := 1; i <= 10; i++ {
		q.Push(i)
	}
	if q.Current() != 10 {
		t.Fatalf("current = %d, want 10", q.Current())
	}

	want := []any{6, 7, 8, 9, 10}
	if got := payloads(q.Get(0, time.Second)); !equalAny(got, want) {
		t.Fatalf("get(0) = %v, want %v", got, want)
	}
	if got := payloads(q.Get(3, time.Second)); !equalAny(got, want) {
		t.Fatalf("get(3) = %v, want %v (stale cursor returns everything)", got, want)
	}
	if got := payloads(q.Get(7, time.Second)); !equalAny(got, []any{8, 9, 10}) {
		t.Fatalf("get(7) = %v, want [8 9 10]", got)
	}
}

func TestGetEmptyBlocksUntilTimeout(t *testing.T) {
	q := New(10, 0)
	c := q.Current()

	start := time.Now()
	got := q.Get(c, 30*time.Millisecond)
	if got != nil {
		t.Fatalf("got %v, want nil", got)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("Get returned before its timeout elapsed")
	}
}

func TestGetUnblocksOnPush(t *testing.T) {
	q := New(10, 0)
	c := q.Current()

	done := make(chan []Event, 1)
	go func() { done <- q.Get(c, 5*time.Second) }()

	time.Sleep(20 * time.Millisecond)
	q.Push("zone-event")

	select {
	case got := <-done:
		if len(got) != 1 || got[0].Payload != "zone-event" {
			t.Fatalf("got %v, want one zone-event", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Get never returned after Push")
	}
}

func TestGetNonBlockingWhenDataAlreadyAvailable(t *testing.T) {
	q := New(10, 0)
	q.Push(1)
	start := time.Now()
	got := q.Get(0, 5*time.Second)
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("Get blocked despite data already being available")
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want one event", got)
	}
}

func equalAny(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
