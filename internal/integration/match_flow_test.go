package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/battlesync/battlesync-server/internal/ai"
	"github.com/battlesync/battlesync-server/internal/catalog"
	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/match"
	"github.com/battlesync/battlesync-server/internal/store"
)

const cardsYAML = `
cards:
  - id: vanguard
    name: Stone Vanguard
    cardType: Unit
    power: 2000
    level: 3
  - id: herald
    name: Storm Herald
    cardType: Unit
    power: 1500
    level: 2
    effectList:
      - trigger: OnEnterField
        actions:
          - type: Draw
            target: Self
            value: 1
  - id: purger
    name: Void Purger
    cardType: Unit
    power: 1000
    level: 1
    effectList:
      - trigger: OnEnterField
        actions:
          - type: Select
            target: EnemyField
            selectionKey: purge
          - type: Destroy
            target: EnemyField
            selectionKey: purge
            deferred: true
`

const leadersYAML = `
leaders:
  - leaderId: leader-stone
    name: Stone Keeper
    evolutionStages:
      - stage: 0
        passiveEffects: []
`

type stubInvoker struct {
	calls chan ai.Invocation
}

func (s *stubInvoker) Invoke(ctx context.Context, inv ai.Invocation) error {
	s.calls <- inv
	return nil
}

// newStack wires the full service stack the way cmd/server does, except
// backed by the in-memory store.
func newStack(t *testing.T) (*match.Service, *store.Memory, *stubInvoker) {
	t.Helper()
	dir := t.TempDir()
	cardsPath := filepath.Join(dir, "cards.yaml")
	leadersPath := filepath.Join(dir, "leaders.yaml")
	if err := os.WriteFile(cardsPath, []byte(cardsYAML), 0o644); err != nil {
		t.Fatalf("write cards: %v", err)
	}
	if err := os.WriteFile(leadersPath, []byte(leadersYAML), 0o644); err != nil {
		t.Fatalf("write leaders: %v", err)
	}

	logger := zaptest.NewLogger(t)
	cat, err := catalog.Load(cardsPath, leadersPath, logger)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cache := catalog.NewLeaderCache(cat, time.Minute)
	eng := engine.New(cat, cache, logger)

	mem := store.NewMemory()
	invoker := &stubInvoker{calls: make(chan ai.Invocation, 4)}
	return match.NewService(mem, eng, invoker, logger), mem, invoker
}

func card(id, base, owner string, zone engine.Zone, power, level int) *engine.Card {
	return &engine.Card{
		ID:         id,
		BaseCardID: base,
		OwnerID:    owner,
		Zone:       zone,
		Power:      power,
		Level:      level,
		FaceUp:     true,
	}
}

func newMatchDoc(id string) *engine.MatchState {
	return &engine.MatchState{
		ID:           id,
		Status:       "active",
		TurnCount:    1,
		Phase:        engine.PhaseMain,
		TurnPlayerID: "p1",
		Players: []*engine.Player{
			{ID: "p1", Name: "Alice", HP: 20, LevelPoints: 5, LeaderID: "leader-stone"},
			{ID: "p2", Name: "Botrick", HP: 20, LevelPoints: 5, IsAI: true, LeaderID: "leader-stone"},
		},
	}
}

func hasEvent(events []engine.Event, t engine.EventType) bool {
	for _, ev := range events {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// A match played end to end through the service: summon with a triggered
// draw, a deferred removal resolved by a choice response, a full battle
// round trip, and a turn handoff that wakes the AI opponent.
func TestMatchFlowEndToEnd(t *testing.T) {
	svc, _, invoker := newStack(t)
	ctx := context.Background()

	m := newMatchDoc("m1")
	m.Cards = append(m.Cards,
		card("h1", "herald", "p1", engine.ZoneHand, 1500, 2),
		card("deck1", "vanguard", "p1", engine.ZoneDeck, 2000, 3),
		card("pg1", "purger", "p1", engine.ZoneHand, 1000, 1),
		card("v2", "vanguard", "p2", engine.ZoneField, 2000, 3),
		card("weak2", "herald", "p2", engine.ZoneField, 1500, 2),
	)
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Summoning the herald fires its on-enter draw.
	res, err := svc.SummonCard(ctx, "m1", "h1")
	if err != nil {
		t.Fatalf("summon herald: %v", err)
	}
	if !hasEvent(res.Events, engine.EventDraw) {
		t.Fatalf("expected draw event, got %v", res.Events)
	}
	if got := res.Match.FindCard("deck1").Zone; got != engine.ZoneHand {
		t.Errorf("deck1 zone = %s, want Hand", got)
	}
	if res.Match.MatchVersion != 1 {
		t.Errorf("match version = %d, want 1", res.Match.MatchVersion)
	}

	// The purger parks its removal behind a target choice.
	res, err = svc.SummonCard(ctx, "m1", "pg1")
	if err != nil {
		t.Fatalf("summon purger: %v", err)
	}
	if !hasEvent(res.Events, engine.EventSendChoiceRequest) {
		t.Fatalf("expected choice request, got %v", res.Events)
	}
	if len(res.Match.PendingDeferred) == 0 {
		t.Fatal("expected a pending deferred action")
	}

	res, err = svc.SubmitChoiceResponse(ctx, "m1", engine.ChoiceResponse{
		RequestID:   "purge",
		PlayerID:    "p1",
		SelectedIDs: []string{"weak2"},
	})
	if err != nil {
		t.Fatalf("submit choice: %v", err)
	}
	if !hasEvent(res.Events, engine.EventDestroy) {
		t.Fatalf("expected destroy event, got %v", res.Events)
	}
	if got := res.Match.FindCard("weak2").Zone; got != engine.ZoneGraveyard {
		t.Errorf("weak2 zone = %s, want Graveyard", got)
	}
	if len(res.Match.PendingDeferred) != 0 {
		t.Errorf("pending deferred not cleared: %v", res.Match.PendingDeferred)
	}

	// Battle: herald attacks the vanguard. The defender is an AI, so the
	// block choice is skipped and the battle resolves in one call.
	res, err = svc.DeclareAttack(ctx, "m1", "h1", "v2", false)
	if err != nil {
		t.Fatalf("declare attack: %v", err)
	}
	if !hasEvent(res.Events, engine.EventDestroy) {
		t.Fatalf("expected the weaker attacker destroyed, got %v", res.Events)
	}
	if got := res.Match.FindCard("h1").Zone; got != engine.ZoneGraveyard {
		t.Errorf("h1 zone = %s, want Graveyard", got)
	}
	res, err = svc.ResolveAck(ctx, "m1")
	if err != nil {
		t.Fatalf("resolve ack: %v", err)
	}
	if res.Match.BattleStep != engine.StepCleanUp {
		t.Errorf("battle step = %s, want CleanUp", res.Match.BattleStep)
	}

	// Handing the turn to the AI player triggers the webhook.
	res, err = svc.EndTurn(ctx, "m1")
	if err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if res.Match.TurnPlayerID != "p2" {
		t.Errorf("turn player = %s, want p2", res.Match.TurnPlayerID)
	}
	select {
	case inv := <-invoker.calls:
		if inv.PlayerID != "p2" || inv.MatchID != "m1" {
			t.Errorf("unexpected invocation %+v", inv)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ai invoker was not called")
	}
}

// Human defenders get the block choice window before resolution.
func TestMatchFlowManualBlock(t *testing.T) {
	svc, _, _ := newStack(t)
	ctx := context.Background()

	m := newMatchDoc("m3")
	m.Players[1].IsAI = false
	m.Cards = append(m.Cards,
		card("atk1", "herald", "p1", engine.ZoneField, 1500, 2),
		card("blk2", "vanguard", "p2", engine.ZoneField, 2000, 3),
	)
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.DeclareAttack(ctx, "m3", "atk1", "", true)
	if err != nil {
		t.Fatalf("declare attack: %v", err)
	}
	if res.Match.BattleStep != engine.StepBlockChoice {
		t.Fatalf("battle step = %s, want BlockChoice", res.Match.BattleStep)
	}

	// The vanguard steps in front of the leader and eats the attacker.
	if _, err = svc.SetBlocker(ctx, "m3", "blk2"); err != nil {
		t.Fatalf("set blocker: %v", err)
	}
	res, err = svc.ResolveBattle(ctx, "m3")
	if err != nil {
		t.Fatalf("resolve battle: %v", err)
	}
	if got := res.Match.FindCard("atk1").Zone; got != engine.ZoneGraveyard {
		t.Errorf("atk1 zone = %s, want Graveyard", got)
	}
	if got := res.Match.FindPlayer("p2").HP; got != 20 {
		t.Errorf("defender hp = %d, want untouched 20", got)
	}
	if _, err = svc.ResolveAck(ctx, "m3"); err != nil {
		t.Fatalf("resolve ack: %v", err)
	}
}

// Every mutation goes through optimistic concurrency in the store; the
// version the service persists must match what a fresh load reports.
func TestMatchFlowPersistence(t *testing.T) {
	svc, mem, _ := newStack(t)
	ctx := context.Background()

	m := newMatchDoc("m2")
	m.Cards = append(m.Cards, card("c1", "vanguard", "p1", engine.ZoneHand, 2000, 3))
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SummonCard(ctx, "m2", "c1"); err != nil {
		t.Fatalf("summon: %v", err)
	}

	loaded, err := mem.Load(ctx, "m2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.MatchVersion != 1 {
		t.Errorf("stored version = %d, want 1", loaded.MatchVersion)
	}
	if got := loaded.FindCard("c1").Zone; got != engine.ZoneField {
		t.Errorf("c1 zone = %s, want Field", got)
	}
	if loaded.UpdatedAt == "" {
		t.Error("updated timestamp not set")
	}

	// Mutating the loaded copy must not leak into the store.
	loaded.Players[0].HP = 1
	again, err := mem.Load(ctx, "m2")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Players[0].HP != 20 {
		t.Errorf("store leaked a mutation, hp = %d", again.Players[0].HP)
	}
}
