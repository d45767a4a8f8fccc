package stream

import "testing"

func TestMemoryBus_DeliversToTopicSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	trips, cancel := bus.Subscribe(TopicTrips)
	defer cancel()

	bus.Publish(Event{Topic: TopicTrips, Kind: "created", ID: "trip-1"})

	select {
	case ev := <-trips:
		if ev.ID != "trip-1" || ev.Kind != "created" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected an event")
	}
}

func TestMemoryBus_TopicsAreIsolated(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	offers, cancel := bus.Subscribe(TopicOffers)
	defer cancel()

	bus.Publish(Event{Topic: TopicTrips, Kind: "created", ID: "trip-1"})

	select {
	case ev := <-offers:
		t.Errorf("offer subscriber received trip event %+v", ev)
	default:
	}
}

func TestMemoryBus_CancelStopsDelivery(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	trips, cancel := bus.Subscribe(TopicTrips)
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	bus.Publish(Event{Topic: TopicTrips, Kind: "created", ID: "trip-1"})

	if _, open := <-trips; open {
		t.Error("expected subscription channel to be closed")
	}
}

func TestMemoryBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	trips, cancel := bus.Subscribe(TopicTrips)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(Event{Topic: TopicTrips, Kind: "created", ID: "trip"})
	}

	received := 0
	for {
		select {
		case <-trips:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, received)
	}
}
