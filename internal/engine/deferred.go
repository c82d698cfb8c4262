package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The deferred coordinator turns "wait for player input" into data: an
// action that needs a choice is parked as a PendingDeferred record keyed
// by the request id, and resumes when the matching response arrives,
// whether in a later invocation or within the same cascade pass.

// runEffect executes one triggered effect. Optional effects first raise a
// Yes/No confirmation gate; deferred actions park until their selection
// resolves; everything else applies immediately.
func (e *Engine) runEffect(ctx context.Context, card *Card, eff Effect, trigger EventType, m *MatchState) []Event {
	if eff.Optional {
		key := "confirm_" + uuid.NewString()
		m.ChoiceRequests = append(m.ChoiceRequests, ChoiceRequest{
			RequestID:     key,
			PlayerID:      card.OwnerID,
			PromptText:    "Activate ability?",
			Options:       []string{"Yes", "No"},
			SelectionType: "confirm",
			CardID:        card.ID,
		})
		for _, act := range eff.Actions {
			m.PendingDeferred = append(m.PendingDeferred, PendingDeferred{
				Action:       act,
				SourceCardID: card.ID,
				Trigger:      string(trigger),
				SelectionKey: key,
				Confirm:      true,
			})
		}
		return []Event{NewEvent(EventSendChoiceRequest, Payload{
			"requestId":     key,
			"playerId":      card.OwnerID,
			"cardId":        card.ID,
			"options":       []string{"Yes", "No"},
			"selectionType": "confirm",
		})}
	}

	var out []Event
	for _, act := range eff.Actions {
		if act.Deferred {
			out = append(out, e.parkDeferred(card, act, string(trigger), m)...)
			continue
		}

		evts := e.applyAction(ctx, card, act, m, card.OwnerID)
		e.persistRequests(evts, m)
		out = append(out, evts...)
	}
	return out
}

// parkDeferred suspends one input-gated action on its selection key. A
// sibling Select action usually raised the request already; parkDeferred
// only asks when nothing did.
func (e *Engine) parkDeferred(card *Card, act Action, trigger string, m *MatchState) []Event {
	key := act.SelectionKey
	if key == "" {
		key = "deferred_" + uuid.NewString()
		act.SelectionKey = key
	}
	m.PendingDeferred = append(m.PendingDeferred, PendingDeferred{
		Action:       act,
		SourceCardID: card.ID,
		Trigger:      trigger,
		SelectionKey: key,
	})
	if m.hasRequest(key) {
		return nil
	}
	m.ChoiceRequests = append(m.ChoiceRequests, ChoiceRequest{
		RequestID:     key,
		PlayerID:      card.OwnerID,
		PromptText:    act.Prompt,
		SelectionType: "target",
	})
	return []Event{NewEvent(EventSendChoiceRequest, Payload{
		"requestId":     key,
		"playerId":      card.OwnerID,
		"selectionType": "target",
	})}
}

// persistRequests stores the choice requests announced by
// SendChoiceRequest events into the match document, deduplicated by id.
func (e *Engine) persistRequests(events []Event, m *MatchState) {
	for _, ev := range events {
		if ev.Type != EventSendChoiceRequest {
			continue
		}
		requestID := ev.Payload.str("requestId")
		if requestID == "" || m.hasRequest(requestID) {
			continue
		}
		req := ChoiceRequest{
			RequestID:     requestID,
			PlayerID:      ev.Payload.str("playerId"),
			PromptText:    ev.Payload.str("promptText"),
			SelectionType: ev.Payload.str("selectionType"),
			CardID:        ev.Payload.str("cardId"),
		}
		if opts, ok := ev.Payload["options"].([]string); ok {
			req.Options = opts
		}
		if max, ok := ev.Payload["maxSelect"].(int); ok {
			req.MaxSelect = max
		}
		m.ChoiceRequests = append(m.ChoiceRequests, req)
	}
}

// resumePending executes every parked action whose response has arrived.
// Entries sharing a selection key form a group: the whole group is removed
// first, then executed in order, then the request/response pair is
// deleted, so one answer cannot be replayed.
func (e *Engine) resumePending(ctx context.Context, m *MatchState) []Event {
	var out []Event
	for {
		key := ""
		for _, p := range m.PendingDeferred {
			if m.findResponse(p.SelectionKey) != nil {
				key = p.SelectionKey
				break
			}
		}
		if key == "" {
			return out
		}

		group := make([]PendingDeferred, 0, 1)
		kept := m.PendingDeferred[:0]
		for _, p := range m.PendingDeferred {
			if p.SelectionKey == key {
				group = append(group, p)
			} else {
				kept = append(kept, p)
			}
		}
		m.PendingDeferred = kept

		resp := *m.findResponse(key)
		for _, p := range group {
			out = append(out, e.executePending(ctx, p, resp, m)...)
		}

		m.removeRequest(key)
		m.consumeResponse(key)
	}
}

// executePending resumes one parked record against its response.
func (e *Engine) executePending(ctx context.Context, p PendingDeferred, resp ChoiceResponse, m *MatchState) []Event {
	if p.Confirm {
		if resp.SelectedValue != "Yes" {
			return nil
		}
		// Confirmation only opens the gate. An action flagged deferred
		// still waits for its own selection; re-park it on that key.
		if p.Action.Deferred {
			source := m.FindCard(p.SourceCardID)
			if source == nil {
				return []Event{ErrorEvent(EventCardNotFound, "deferred source card not found", Payload{
					"cardId": p.SourceCardID,
				})}
			}
			return e.parkDeferred(source, p.Action, p.Trigger, m)
		}
		return e.runDeferredAction(ctx, p, m)
	}
	if p.TOCardID != "" {
		return e.resolveTOSelection(ctx, p, resp, m)
	}
	return e.runDeferredAction(ctx, p, m)
}

func (e *Engine) runDeferredAction(ctx context.Context, p PendingDeferred, m *MatchState) []Event {
	source := m.FindCard(p.SourceCardID)
	if source == nil {
		return []Event{ErrorEvent(EventCardNotFound, "deferred source card not found", Payload{
			"cardId": p.SourceCardID,
		})}
	}
	events := e.applyAction(ctx, source, p.Action, m, source.OwnerID)
	e.persistRequests(events, m)
	return events
}

// resolveTOSelection settles a damage-zone trigger-option gate: "use"
// fires the card's trigger effect, anything else assigns a random color
// as if the card were plain.
func (e *Engine) resolveTOSelection(ctx context.Context, p PendingDeferred, resp ChoiceResponse, m *MatchState) []Event {
	card := m.FindCard(p.TOCardID)
	if card == nil {
		return []Event{ErrorEvent(EventCardNotFound, "trigger-option card not found", Payload{
			"cardId": p.TOCardID,
		})}
	}

	templates, err := e.templates.CardTemplates(ctx, []string{card.BaseCardID})
	if err != nil {
		e.logger.Warn("template lookup failed", zap.String("card_id", card.BaseCardID), zap.Error(err))
		templates = nil
	}
	tmpl, ok := templates[card.BaseCardID]

	events := []Event{NewEvent(EventSelectOptionDone, Payload{
		"cardId":        card.ID,
		"selectedValue": resp.SelectedValue,
	})}

	if resp.SelectedValue == "use" && ok && tmpl.TOEffect != nil {
		events = append(events, NewEvent(EventAbilityActivated, Payload{
			"sourceCardId": card.ID,
			"trigger":      "TO",
		}))
		for _, act := range tmpl.TOEffect.Actions {
			evts := e.applyAction(ctx, card, act, m, card.OwnerID)
			e.persistRequests(evts, m)
			events = append(events, evts...)
		}
		return events
	}

	colors := defaultColors
	if ok && len(tmpl.AvailableColors) > 0 {
		colors = tmpl.AvailableColors
	}
	if color, picked := e.weightedRandomSelect(colors, nil); picked {
		card.AssignedColor = color
		events = append(events, NewEvent(EventAssignColor, Payload{
			"cardId": card.ID,
			"color":  color,
		}))
	}
	return events
}
