package bus

import (
	"errors"
	"testing"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("entity.child_added", func(e Event) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("entity.child_added", "root", map[string]any{"child": "c1"})); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0].Source != "root" || got[0].Data["child"] != "c1" {
		t.Fatalf("unexpected delivery: %+v", got)
	}
	if got[0].Time.IsZero() {
		t.Fatal("event time not stamped")
	}
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	var types []string
	_, _ = b.Subscribe(AllEvents, func(e Event) error {
		types = append(types, e.Type)
		return nil
	})
	_ = b.Publish(NewEvent("a", "s", nil))
	_ = b.Publish(NewEvent("b", "s", nil))
	if len(types) != 2 || types[0] != "a" || types[1] != "b" {
		t.Fatalf("wildcard got %v", types)
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "s", nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if m := b.Metrics(); m.Errors != 1 || m.DeliveredHandlers != 2 {
		t.Fatalf("metrics: %+v", m)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("x", "s", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = sub.Cancel()
	_ = b.Publish(NewEvent("x", "s", nil))

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if sub.IsActive() {
		t.Fatal("subscription should be inactive")
	}
	if m := b.Metrics(); m.Subscribers != 0 {
		t.Fatalf("subscribers = %d, want 0", m.Subscribers)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestPublishBatch(t *testing.T) {
	b := New()
	count := 0
	_, _ = b.Subscribe("x", func(Event) error { count++; return nil })
	if err := b.PublishBatch(NewEvent("x", "s", nil), NewEvent("y", "s", nil), NewEvent("x", "s", nil)); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestNilHandlerRejected(t *testing.T) {
	if _, err := New().Subscribe("x", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
