// Package match orchestrates engine operations against stored matches:
// load the document, run the rules engine, persist, notify the AI.
package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/battlesync/battlesync-server/internal/ai"
	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/store"
)

// Result is a finished operation: the updated match document and the
// events the engine emitted while applying it.
type Result struct {
	Match  *engine.MatchState `json:"match"`
	Events []engine.Event     `json:"events"`
}

// Service serializes operations per match and owns the
// load/apply/persist cycle. The engine itself is stateless, so one
// engine instance serves every match.
type Service struct {
	store   store.Store
	engine  *engine.Engine
	invoker ai.Invoker
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the orchestration layer. A nil invoker disables AI
// handoff.
func NewService(st store.Store, eng *engine.Engine, invoker ai.Invoker, logger *zap.Logger) *Service {
	if invoker == nil {
		invoker = ai.Noop{}
	}
	return &Service{
		store:   st,
		engine:  eng,
		invoker: invoker,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// matchLock returns the mutex serializing one match's operations.
func (s *Service) matchLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// apply runs one engine operation under the match lock and persists the
// outcome.
func (s *Service) apply(ctx context.Context, matchID string, op func(m *engine.MatchState) []engine.Event) (*Result, error) {
	lock := s.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.store.Load(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	expected := m.MatchVersion

	events := op(m)

	m.Bump()
	m.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.store.Save(ctx, m, expected); err != nil {
		return nil, fmt.Errorf("save match %s: %w", matchID, err)
	}

	s.maybeInvokeAI(m)
	return &Result{Match: m, Events: events}, nil
}

// maybeInvokeAI hands the turn to the AI service when an AI player holds
// a fresh turn. Delivery is fire-and-forget; a failed handoff is logged,
// not surfaced, since the AI can be re-invoked by the next poll.
func (s *Service) maybeInvokeAI(m *engine.MatchState) {
	if m.Phase != engine.PhaseStart {
		return
	}
	player := m.FindPlayer(m.TurnPlayerID)
	if player == nil || !player.IsAI {
		return
	}

	inv := ai.Invocation{
		MatchID:  m.ID,
		PlayerID: player.ID,
		Phase:    string(m.Phase),
		Match:    m,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.invoker.Invoke(ctx, inv); err != nil {
			s.logger.Warn("ai handoff failed",
				zap.String("match_id", inv.MatchID),
				zap.Error(err),
			)
		}
	}()
}

// Create stores a new match document.
func (s *Service) Create(ctx context.Context, m *engine.MatchState) error {
	return s.store.Create(ctx, m)
}

// Get returns the current match document without mutating it.
func (s *Service) Get(ctx context.Context, matchID string) (*engine.MatchState, error) {
	return s.store.Load(ctx, matchID)
}

// MoveCards applies direct zone changes.
func (s *Service) MoveCards(ctx context.Context, matchID string, moves []engine.CardMove) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.MoveCards(ctx, m, moves)
	})
}

// SummonCard plays a card from hand to field.
func (s *Service) SummonCard(ctx context.Context, matchID, cardID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.SummonCard(ctx, m, cardID)
	})
}

// AdvancePhase steps the turn machine once.
func (s *Service) AdvancePhase(ctx context.Context, matchID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.AdvancePhase(ctx, m)
	})
}

// EndTurn fast-forwards to the opponent's turn start.
func (s *Service) EndTurn(ctx context.Context, matchID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.EndTurn(ctx, m)
	})
}

// DeclareAttack opens a battle.
func (s *Service) DeclareAttack(ctx context.Context, matchID, attackerID, targetID string, targetIsLeader bool) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.DeclareAttack(ctx, m, attackerID, targetID, targetIsLeader)
	})
}

// SetBlocker records the block decision.
func (s *Service) SetBlocker(ctx context.Context, matchID, blockerID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.SetBlocker(m, blockerID)
	})
}

// ResolveBattle runs combat.
func (s *Service) ResolveBattle(ctx context.Context, matchID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.ResolveBattle(ctx, m)
	})
}

// ResolveAck closes out a resolved battle.
func (s *Service) ResolveAck(ctx context.Context, matchID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.ResolveAck(m)
	})
}

// SendChoiceRequest queues an externally-authored choice request.
func (s *Service) SendChoiceRequest(ctx context.Context, matchID string, req engine.ChoiceRequest) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.SendChoiceRequest(m, req)
	})
}

// SubmitChoiceResponse answers a pending choice and resumes what it
// gated.
func (s *Service) SubmitChoiceResponse(ctx context.Context, matchID string, resp engine.ChoiceResponse) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.SubmitChoiceResponse(ctx, m, resp)
	})
}

// UpdateCardStatuses writes permanent card statuses directly.
func (s *Service) UpdateCardStatuses(ctx context.Context, matchID string, updates []engine.StatusUpdate) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.UpdateCardStatuses(m, updates)
	})
}

// SetTurnPlayer forces the turn holder.
func (s *Service) SetTurnPlayer(ctx context.Context, matchID, playerID string) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.SetTurnPlayer(m, playerID)
	})
}

// UpdatePhase forces the phase without running transitions.
func (s *Service) UpdatePhase(ctx context.Context, matchID string, phase engine.Phase) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.UpdatePhase(m, phase)
	})
}

// UpdateLevelPoints overwrites player level-point pools.
func (s *Service) UpdateLevelPoints(ctx context.Context, matchID string, points map[string]int) (*Result, error) {
	return s.apply(ctx, matchID, func(m *engine.MatchState) []engine.Event {
		return s.engine.UpdateLevelPoints(m, points)
	})
}
