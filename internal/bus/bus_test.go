package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(Event{Collection: Trucks, Action: "created", ID: "T-001"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		ev := recv(t, ch)
		if ev.Collection != Trucks || ev.Action != "created" || ev.ID != "T-001" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestSubscribeFiltersByCollection(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(Trips)
	defer cancel()

	b.Publish(Event{Collection: Trucks, Action: "updated", ID: "T-001"})
	b.Publish(Event{Collection: Trips, Action: "reconciled", ID: "TR-001"})

	ev := recv(t, ch)
	if ev.Collection != Trips {
		t.Fatalf("filter leaked %s event", ev.Collection)
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected second event: %+v", ev)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Overfill the buffer; Publish must return without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{Collection: Trips, Action: "updated"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffered events are still deliverable.
	if ev := recv(t, ch); ev.Collection != Trips {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	b.Publish(Event{Collection: Drivers, Action: "deleted", ID: "D-001"})
}

func TestCancelTwiceIsSafe(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe()
	cancel()
	cancel()
}
