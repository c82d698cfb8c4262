package engine

import (
	"context"
	"testing"
)

func TestCascadeNoTriggersPassesEventsThrough(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	addCard(m, "c1", "p1", ZoneField, 1000)

	initial := []Event{
		NewEvent(EventOnEnterField, Payload{"cardId": "c1"}),
		NewEvent(EventMoveZone, Payload{"cardId": "c1"}),
	}
	events := e.resolveCascade(context.Background(), initial, m)

	if len(events) != len(initial) {
		t.Fatalf("expected exactly the initial events back, got %d", len(events))
	}
}

func TestCascadeChainsThroughTriggers(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()

	// a's destruction pulls b into the graveyard, whose destruction in
	// turn levels up c.
	a := addCard(m, "a", "p1", ZoneField, 1000)
	a.Effects = []Effect{{
		Trigger: EventOnDestroy,
		Actions: []Action{{Type: ActionDestroy, SelectionKey: "", Target: "PlayerField", TargetFilter: "power<=500"}},
	}}
	b := addCard(m, "b", "p1", ZoneField, 500)
	b.Effects = []Effect{{
		Trigger: EventOnDestroy,
		Actions: []Action{{Type: ActionGainLevel, Target: TargetSelf, Value: 1}},
	}}

	a.Zone = ZoneGraveyard
	events := e.resolveCascade(context.Background(), []Event{
		NewEvent(EventOnDestroy, Payload{"cardId": "a"}),
	}, m)

	if b.Zone != ZoneGraveyard {
		t.Fatalf("expected b destroyed by a's trigger, got zone %s", b.Zone)
	}
	if b.Level != 1 {
		t.Errorf("expected b's own OnDestroy to fire, level %d", b.Level)
	}
	if countEvents(events, EventAbilityActivated) != 2 {
		t.Errorf("expected two ability activations, got %d", countEvents(events, EventAbilityActivated))
	}
}

func TestCascadeConditionGatesTrigger(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	cond, err := ParseCondition("EnemyFieldCount>=1")
	if err != nil {
		t.Fatal(err)
	}
	c := addCard(m, "c1", "p1", ZoneField, 1000)
	c.Effects = []Effect{{
		Trigger:   EventOnEnterField,
		Condition: cond,
		Actions:   []Action{{Type: ActionGainLevel, Target: TargetSelf, Value: 1}},
	}}

	events := e.resolveCascade(context.Background(), []Event{
		NewEvent(EventOnEnterField, Payload{"cardId": "c1"}),
	}, m)
	if countEvents(events, EventAbilityActivated) != 0 {
		t.Fatal("condition should gate the trigger with an empty enemy field")
	}

	addCard(m, "enemy", "p2", ZoneField, 1000)
	events = e.resolveCascade(context.Background(), []Event{
		NewEvent(EventOnEnterField, Payload{"cardId": "c1"}),
	}, m)
	if countEvents(events, EventAbilityActivated) != 1 {
		t.Fatal("condition should pass once an enemy card is fielded")
	}
}

func TestCascadeBudgetStopsRunawayLoop(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()

	// SetStatus on self re-emits a SetStatus event, feeding its own
	// trigger forever.
	c := addCard(m, "loop", "p1", ZoneField, 1000)
	c.Effects = []Effect{{
		Trigger: EventSetStatus,
		Actions: []Action{{Type: ActionSetStatus, Target: TargetSelf, Keyword: "Marker", Value: 1}},
	}}

	events := e.resolveCascade(context.Background(), []Event{
		NewEvent(EventSetStatus, Payload{"cardId": "loop"}),
	}, m)

	if countEvents(events, EventCascadeLimitExceeded) != 1 {
		t.Fatalf("expected a single CascadeLimitExceeded event, got %d", countEvents(events, EventCascadeLimitExceeded))
	}
	if events[len(events)-1].Type != EventCascadeLimitExceeded {
		t.Error("expected the limit event to close the stream")
	}
}
