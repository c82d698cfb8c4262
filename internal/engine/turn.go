package engine

import "context"

// AdvancePhase steps the turn machine one notch: Start, Draw, Main, End,
// then back to Start for the opponent. Rolling over from End increments
// the turn count, expires turn-limited statuses, clears the ending
// player's attack flags, and hands the turn over. The Draw phase performs
// the automatic draw and collapses straight into Main.
func (e *Engine) AdvancePhase(ctx context.Context, m *MatchState) []Event {
	currentID := m.TurnPlayerID
	oldPhase := m.Phase
	if oldPhase == "" {
		oldPhase = PhaseStart
	}
	newPhase := nextPhase(oldPhase)

	var events []Event

	if newPhase == PhaseStart && oldPhase == PhaseEnd {
		m.TurnCount++
		m.ClearExpired(m.TurnCount)
		for _, c := range m.Cards {
			if c.OwnerID == currentID && c.Zone == ZoneField {
				c.SetStatus(StatusHasAttacked, "false")
			}
		}
		if next := m.Opponent(currentID); next != nil {
			m.TurnPlayerID = next.ID
		}
		events = append(events, NewEvent(EventTurnEnded, Payload{"playerId": currentID}))
	}

	m.Phase = newPhase
	events = append(events, NewEvent(EventPhaseChanged, Payload{
		"phase":    string(newPhase),
		"playerId": m.TurnPlayerID,
	}))

	switch newPhase {
	case PhaseStart:
		e.ReconcileAuras(ctx, m, &events)

	case PhaseDraw:
		drawn := 0
		// No automatic draw on the opening turn.
		if m.TurnCount > 0 {
			if c := topDeckCard(m, m.TurnPlayerID); c != nil {
				c.Zone = ZoneHand
				drawn = 1
			}
		}
		events = append(events, NewEvent(EventDraw, Payload{
			"playerId": m.TurnPlayerID,
			"count":    drawn,
		}))
		m.Phase = PhaseMain
		events = append(events, NewEvent(EventPhaseChanged, Payload{
			"phase":    string(PhaseMain),
			"playerId": m.TurnPlayerID,
		}))

	case PhaseEnd:
		var triggers []Event
		for _, c := range m.Cards {
			if c.OwnerID == m.TurnPlayerID && c.Zone == ZoneField {
				triggers = append(triggers, NewEvent(EventOnTurnEnd, Payload{"cardId": c.ID}))
			}
		}
		if len(triggers) > 0 {
			events = append(events, e.resolveCascade(ctx, triggers, m)...)
			e.ReconcileAuras(ctx, m, &events)
		}
	}

	return events
}

// EndTurn fast-forwards phase advancement until the opponent's turn
// starts.
func (e *Engine) EndTurn(ctx context.Context, m *MatchState) []Event {
	var events []Event
	for i := 0; i < len(phaseSequence); i++ {
		events = append(events, e.AdvancePhase(ctx, m)...)
		if m.Phase == PhaseStart {
			break
		}
	}
	return events
}

func nextPhase(p Phase) Phase {
	for i, ph := range phaseSequence {
		if ph == p {
			return phaseSequence[(i+1)%len(phaseSequence)]
		}
	}
	return PhaseStart
}
