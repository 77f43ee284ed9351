package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	select {
	case ev := <-ch:
		if ev != "hello" {
			t.Fatalf("expected hello got %v", ev)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestPublishNonBlocking(t *testing.T) {
	bus := New()
	bus.Subscribe() // never drained
	for i := 0; i < 100; i++ {
		bus.Publish(i) // must not stall once the buffer is full
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	bus.Publish("after") // no panic on a removed subscriber
}

func TestClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	bus.Publish("late") // closed bus drops events
	if sub := bus.Subscribe(); sub == nil {
		t.Fatal("subscribe after close must return a closed channel, not nil")
	}
	bus.Close() // idempotent
}
