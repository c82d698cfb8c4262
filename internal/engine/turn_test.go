package engine

import (
	"context"
	"testing"
)

func TestAdvancePhaseMainToEndFiresTurnEndTriggers(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	m.Phase = PhaseMain
	c := addCard(m, "c1", "p1", ZoneField, 1000)
	c.Effects = []Effect{{
		Trigger: EventOnTurnEnd,
		Actions: []Action{{Type: ActionGainLevel, Target: TargetSelf, Value: 1}},
	}}

	events := e.AdvancePhase(context.Background(), m)

	if m.Phase != PhaseEnd {
		t.Fatalf("expected End phase, got %s", m.Phase)
	}
	if c.Level != 1 {
		t.Errorf("expected turn-end trigger fired, level %d", c.Level)
	}
	if countEvents(events, EventAbilityActivated) != 1 {
		t.Errorf("expected one activation, got %+v", events)
	}
}

func TestAdvancePhaseEndRollsTurnOver(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	m.Phase = PhaseEnd
	m.TurnCount = 1
	atk := addCard(m, "atk", "p1", ZoneField, 1000)
	atk.SetStatus(StatusHasAttacked, "true")
	buffed := addCard(m, "buffed", "p1", ZoneField, 1000)
	buffed.AddTempStatus(StatusTempPowerBoost, "500", 1, "x")

	events := e.AdvancePhase(context.Background(), m)

	if m.Phase != PhaseStart {
		t.Fatalf("expected Start phase, got %s", m.Phase)
	}
	if m.TurnPlayerID != "p2" {
		t.Errorf("expected turn handed to p2, got %s", m.TurnPlayerID)
	}
	if m.TurnCount != 2 {
		t.Errorf("expected turn count 2, got %d", m.TurnCount)
	}
	if atk.HasFlag(StatusHasAttacked) {
		t.Error("expected attack flags reset on rollover")
	}
	if buffed.EffectivePower() != 1000 {
		t.Errorf("expected expired buff cleared, power %d", buffed.EffectivePower())
	}
	if countEvents(events, EventTurnEnded) != 1 {
		t.Errorf("expected TurnEnded, got %+v", events)
	}
}

func TestAdvancePhaseDrawCollapsesToMain(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	m.Phase = PhaseStart
	m.TurnCount = 2
	d := addCard(m, "d1", "p1", ZoneDeck, 0)

	events := e.AdvancePhase(context.Background(), m)

	if m.Phase != PhaseMain {
		t.Fatalf("expected Draw to collapse into Main, got %s", m.Phase)
	}
	if d.Zone != ZoneHand {
		t.Errorf("expected automatic draw, zone %s", d.Zone)
	}
	ev := findEvent(events, EventDraw)
	if ev == nil || ev.Payload["count"] != 1 {
		t.Errorf("expected a Draw event for one card, got %+v", events)
	}
	if countEvents(events, EventPhaseChanged) != 2 {
		t.Errorf("expected Draw and Main phase changes, got %+v", events)
	}
}

func TestAdvancePhaseNoDrawOnOpeningTurn(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	m.Phase = PhaseStart
	m.TurnCount = 0
	d := addCard(m, "d1", "p1", ZoneDeck, 0)

	events := e.AdvancePhase(context.Background(), m)

	if d.Zone != ZoneDeck {
		t.Error("no automatic draw on the opening turn")
	}
	ev := findEvent(events, EventDraw)
	if ev == nil || ev.Payload["count"] != 0 {
		t.Errorf("expected a zero-count Draw event, got %+v", events)
	}
}

func TestEndTurnFastForwardsToOpponentStart(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	m.Phase = PhaseMain
	m.TurnCount = 1

	e.EndTurn(context.Background(), m)

	if m.Phase != PhaseStart {
		t.Fatalf("expected opponent's Start phase, got %s", m.Phase)
	}
	if m.TurnPlayerID != "p2" {
		t.Errorf("expected turn handed over, got %s", m.TurnPlayerID)
	}
}
