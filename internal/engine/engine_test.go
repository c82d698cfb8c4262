package engine

import (
	"context"
	"math/rand"
	"testing"

	"go.uber.org/zap/zaptest"
)

// stubCatalog backs both template sources for tests.
type stubCatalog struct {
	cards   map[string]CardTemplate
	leaders map[string]*LeaderTemplate
}

func (s *stubCatalog) CardTemplates(ctx context.Context, ids []string) (map[string]CardTemplate, error) {
	out := make(map[string]CardTemplate)
	for _, id := range ids {
		if tmpl, ok := s.cards[id]; ok {
			out[id] = tmpl
		}
	}
	return out, nil
}

func (s *stubCatalog) Leader(ctx context.Context, id string) (*LeaderTemplate, error) {
	return s.leaders[id], nil
}

func newTestEngine(t *testing.T) (*Engine, *stubCatalog) {
	cat := &stubCatalog{
		cards:   make(map[string]CardTemplate),
		leaders: make(map[string]*LeaderTemplate),
	}
	e := New(cat, cat, zaptest.NewLogger(t))
	e.SetRandSource(rand.NewSource(42))
	return e, cat
}

func newTestMatch() *MatchState {
	return &MatchState{
		ID: "match-1",
		Players: []*Player{
			{ID: "p1", Name: "Alice", HP: 20, LevelPoints: 5},
			{ID: "p2", Name: "Bob", HP: 20, LevelPoints: 5},
		},
		TurnPlayerID: "p1",
		Phase:        PhaseMain,
		TurnCount:    1,
	}
}

func addCard(m *MatchState, id, owner string, zone Zone, power int) *Card {
	c := &Card{
		ID:         id,
		OwnerID:    owner,
		BaseCardID: "base-" + id,
		Zone:       zone,
		Power:      power,
		FaceUp:     true,
	}
	m.Cards = append(m.Cards, c)
	return c
}

func countEvents(events []Event, t EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func findEvent(events []Event, t EventType) *Event {
	for i := range events {
		if events[i].Type == t {
			return &events[i]
		}
	}
	return nil
}

func TestMoveCardsUnknownCardReported(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	addCard(m, "c1", "p1", ZoneHand, 1000)

	events := e.MoveCards(context.Background(), m, []CardMove{
		{CardID: "c1", ToZone: ZoneField},
		{CardID: "missing", ToZone: ZoneField},
	})

	if countEvents(events, EventCardNotFound) != 1 {
		t.Fatalf("expected one CardNotFound event, got %d", countEvents(events, EventCardNotFound))
	}
	if m.FindCard("c1").Zone != ZoneField {
		t.Errorf("expected c1 moved to field, got %s", m.FindCard("c1").Zone)
	}
}

func TestMoveCardsHandToFieldFiresOnPlay(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	c := addCard(m, "c1", "p1", ZoneHand, 1000)
	c.Effects = []Effect{{
		Trigger: EventOnPlay,
		Actions: []Action{{Type: ActionGainLevel, Target: TargetSelf, Value: 2}},
	}}

	events := e.MoveCards(context.Background(), m, []CardMove{{CardID: "c1", ToZone: ZoneField}})

	if countEvents(events, EventAbilityActivated) != 1 {
		t.Fatalf("expected ability activation, got events %+v", events)
	}
	if c.Level != 2 {
		t.Errorf("expected level 2 after OnPlay gain, got %d", c.Level)
	}
}

func TestSummonCardAlreadyOnField(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	addCard(m, "c1", "p1", ZoneField, 1000)

	events := e.SummonCard(context.Background(), m, "c1")

	if countEvents(events, EventInvalidTarget) != 1 {
		t.Fatalf("expected InvalidTarget event, got %+v", events)
	}
}

func TestSummonCardConsumesNextSummonBuffs(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	c := addCard(m, "c1", "p1", ZoneHand, 1000)
	m.Players[0].NextSummonBuffs = []SummonBuff{{Keyword: "Power", Value: 500, Duration: 1}}

	events := e.SummonCard(context.Background(), m, "c1")

	if countEvents(events, EventBattleBuff) != 1 {
		t.Fatalf("expected one BattleBuff event, got %+v", events)
	}
	if c.EffectivePower() != 1500 {
		t.Errorf("expected effective power 1500, got %d", c.EffectivePower())
	}
	if len(m.Players[0].NextSummonBuffs) != 0 {
		t.Error("expected summon buffs cleared after consumption")
	}
}

func TestUpdateCardStatuses(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	c := addCard(m, "c1", "p1", ZoneField, 1000)

	events := e.UpdateCardStatuses(m, []StatusUpdate{
		{CardID: "c1", Key: StatusIsCritical, Value: "true"},
		{CardID: "missing", Key: "X", Value: "1"},
	})

	if !c.HasFlag(StatusIsCritical) {
		t.Error("expected critical flag written")
	}
	if countEvents(events, EventCardNotFound) != 1 {
		t.Errorf("expected unknown card reported, got %+v", events)
	}
}

func TestSetTurnPlayerUnknownPlayer(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()

	events := e.SetTurnPlayer(m, "nobody")

	if countEvents(events, EventPlayerNotFound) != 1 {
		t.Fatalf("expected PlayerNotFound, got %+v", events)
	}
	if m.TurnPlayerID != "p1" {
		t.Errorf("turn player must not change on error, got %s", m.TurnPlayerID)
	}
}

func TestUpdateLevelPoints(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()

	events := e.UpdateLevelPoints(m, map[string]int{"p1": 9, "ghost": 3})

	if m.Players[0].LevelPoints != 9 {
		t.Errorf("expected 9 level points, got %d", m.Players[0].LevelPoints)
	}
	if countEvents(events, EventPlayerNotFound) != 1 {
		t.Errorf("expected unknown player reported, got %+v", events)
	}
}

func TestUnknownActionTypeReported(t *testing.T) {
	e, _ := newTestEngine(t)
	m := newTestMatch()
	c := addCard(m, "c1", "p1", ZoneField, 1000)

	events := e.applyAction(context.Background(), c, Action{Type: ActionType("Nonsense")}, m, "p1")

	if countEvents(events, EventUnknownAction) != 1 {
		t.Fatalf("expected UnknownAction event, got %+v", events)
	}
}
