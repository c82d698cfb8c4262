package engine

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
)

// Engine is the server-authoritative rules engine for one two-player card
// match. It owns no state of its own: every operation receives the match
// aggregate by reference, mutates it to completion, and returns the events
// the mutation produced. Execution is single-threaded per invocation;
// waiting for player input is modeled by persisted pending records, never
// by blocking.
type Engine struct {
	logger    *zap.Logger
	templates TemplateSource
	leaders   LeaderSource
	rng       *rand.Rand
}

// New creates an engine. The leader source should be a read-through cache
// owned by the caller.
func New(templates TemplateSource, leaders LeaderSource, logger *zap.Logger) *Engine {
	return &Engine{
		logger:    logger,
		templates: templates,
		leaders:   leaders,
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetRandSource replaces the random source, for deterministic tests.
func (e *Engine) SetRandSource(src rand.Source) {
	e.rng = rand.New(src)
}

// CardMove names one zone change requested by the moveCards operation.
type CardMove struct {
	CardID string `json:"cardId"`
	ToZone Zone   `json:"toZone"`
}

// StatusUpdate names one permanent status write requested by the
// updateCardStatuses operation.
type StatusUpdate struct {
	CardID string `json:"instanceId"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// MoveCards applies direct zone changes and resolves the triggers they
// raise. Unknown card ids are reported as events and skipped.
func (e *Engine) MoveCards(ctx context.Context, m *MatchState, moves []CardMove) []Event {
	var initial []Event
	for _, mv := range moves {
		card := m.FindCard(mv.CardID)
		if card == nil {
			initial = append(initial, ErrorEvent(EventCardNotFound, "card not found", Payload{"cardId": mv.CardID}))
			continue
		}
		fromZone := card.Zone
		card.Zone = mv.ToZone
		if fromZone == ZoneField && mv.ToZone != ZoneField {
			m.DetachAuras(card)
		}
		if fromZone == ZoneHand && mv.ToZone == ZoneField {
			initial = append(initial, NewEvent(EventOnPlay, Payload{"cardId": card.ID}))
		}
		if mv.ToZone == ZoneField {
			initial = append(initial, NewEvent(EventOnEnterField, Payload{"cardId": card.ID}))
		}
	}

	events := e.resolveCascade(ctx, initial, m)
	e.ReconcileAuras(ctx, m, &events)
	return events
}

// SummonCard moves a card from hand to field, consumes any stored
// next-summon buffs, and resolves the summon triggers.
func (e *Engine) SummonCard(ctx context.Context, m *MatchState, cardID string) []Event {
	card := m.FindCard(cardID)
	if card == nil {
		return []Event{ErrorEvent(EventCardNotFound, "card not found", Payload{"cardId": cardID})}
	}
	if card.Zone == ZoneField {
		return []Event{ErrorEvent(EventInvalidTarget, "card already on field", Payload{"cardId": cardID})}
	}

	card.Zone = ZoneField
	initial := []Event{
		NewEvent(EventOnSummon, Payload{"cardId": cardID}),
		NewEvent(EventOnEnterField, Payload{"cardId": cardID}),
	}
	initial = append(initial, e.consumeSummonBuffs(ctx, card, m)...)

	events := e.resolveCascade(ctx, initial, m)
	e.ReconcileAuras(ctx, m, &events)
	return events
}

// consumeSummonBuffs applies and clears the owner's stored next-summon
// buffs against the freshly summoned card.
func (e *Engine) consumeSummonBuffs(ctx context.Context, card *Card, m *MatchState) []Event {
	owner := m.FindPlayer(card.OwnerID)
	if owner == nil || len(owner.NextSummonBuffs) == 0 {
		return nil
	}
	var events []Event
	for _, buff := range owner.NextSummonBuffs {
		act := Action{
			Type:     ActionBattleBuff,
			Keyword:  buff.Keyword,
			Value:    buff.Value,
			Duration: buff.Duration,
		}
		events = append(events, e.handleBattleBuff(ctx, card, act, m, owner.ID)...)
	}
	owner.NextSummonBuffs = nil
	return events
}

// SendChoiceRequest queues an externally-authored choice request.
func (e *Engine) SendChoiceRequest(m *MatchState, req ChoiceRequest) []Event {
	m.ChoiceRequests = append(m.ChoiceRequests, req)
	return []Event{NewEvent(EventSendChoiceRequest, Payload{
		"requestId": req.RequestID,
		"playerId":  req.PlayerID,
	})}
}

// SubmitChoiceResponse records a player's answer and resumes every
// deferred action gated on it.
func (e *Engine) SubmitChoiceResponse(ctx context.Context, m *MatchState, resp ChoiceResponse) []Event {
	m.ChoiceResponses = append(m.ChoiceResponses, resp)

	initial := e.resumePending(ctx, m)
	events := e.resolveCascade(ctx, initial, m)
	e.ReconcileAuras(ctx, m, &events)
	return events
}

// UpdateCardStatuses writes permanent statuses directly. Unknown card ids
// are reported and skipped.
func (e *Engine) UpdateCardStatuses(m *MatchState, updates []StatusUpdate) []Event {
	var events []Event
	for _, upd := range updates {
		card := m.FindCard(upd.CardID)
		if card == nil {
			events = append(events, ErrorEvent(EventCardNotFound, "card not found", Payload{"cardId": upd.CardID}))
			continue
		}
		card.SetStatus(upd.Key, upd.Value)
	}
	return events
}

// SetTurnPlayer forces the turn holder.
func (e *Engine) SetTurnPlayer(m *MatchState, playerID string) []Event {
	if m.FindPlayer(playerID) == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": playerID})}
	}
	m.TurnPlayerID = playerID
	return nil
}

// UpdatePhase forces the phase without running phase transitions.
func (e *Engine) UpdatePhase(m *MatchState, phase Phase) []Event {
	m.Phase = phase
	return nil
}

// UpdateLevelPoints overwrites player level-point pools by player id.
func (e *Engine) UpdateLevelPoints(m *MatchState, points map[string]int) []Event {
	var events []Event
	for playerID, value := range points {
		player := m.FindPlayer(playerID)
		if player == nil {
			events = append(events, ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": playerID}))
			continue
		}
		player.LevelPoints = value
	}
	return events
}

// applyAction dispatches one action: resolve targets, run the handler per
// target, collect events. Player-scoped kinds run once against the acting
// card. Zero resolved targets is a valid no-op, not a failure.
func (e *Engine) applyAction(ctx context.Context, source *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	handler := handlerFor(act.Type)
	if handler == nil {
		e.logger.Warn("unhandled action type", zap.String("action_type", string(act.Type)))
		return []Event{ErrorEvent(EventUnknownAction, "unhandled action type", Payload{
			"actionType": string(act.Type),
			"cardId":     source.ID,
		})}
	}

	act.SourceCardID = source.ID

	if poolLevel(act.Type) {
		return handler(e, ctx, source, act, m, actingPlayerID)
	}

	targets := e.ResolveTargets(source, act, m)
	var events []Event
	for _, tgt := range targets {
		events = append(events, handler(e, ctx, tgt, act, m, actingPlayerID)...)
	}
	return events
}
