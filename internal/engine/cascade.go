package engine

import "context"

// maxCascadeEvents bounds one resolution pass. Crossing it appends a
// CascadeLimitExceeded event and stops; already-applied mutations stand.
const maxCascadeEvents = 512

// resolveCascade drains a FIFO queue of events, letting each event fire
// the matching triggered abilities of the card it names. Events produced
// by an ability re-enter the queue, so chains resolve breadth-first in
// emission order.
func (e *Engine) resolveCascade(ctx context.Context, initial []Event, m *MatchState) []Event {
	resolved := make([]Event, 0, len(initial)+8)
	resolved = append(resolved, initial...)

	queue := make([]Event, len(initial))
	copy(queue, initial)

	for len(queue) > 0 {
		if len(resolved) > maxCascadeEvents {
			resolved = append(resolved, ErrorEvent(EventCascadeLimitExceeded, "cascade event budget exceeded", Payload{
				"limit": maxCascadeEvents,
			}))
			break
		}

		ev := queue[0]
		queue = queue[1:]

		var produced []Event
		if cardID := ev.Payload.CardID(); cardID != "" {
			if card := m.FindCard(cardID); card != nil {
				produced = e.handleTrigger(ctx, card, ev.Type, m)
			}
		}
		produced = append(produced, e.resumePending(ctx, m)...)

		resolved = append(resolved, produced...)
		queue = append(queue, produced...)
	}
	return resolved
}

// handleTrigger runs every effect on the card whose trigger matches the
// event type and whose condition holds. A hit is announced with a single
// AbilityActivated event ahead of the effect's own events.
func (e *Engine) handleTrigger(ctx context.Context, card *Card, trigger EventType, m *MatchState) []Event {
	var out []Event
	hit := false
	for _, eff := range card.Effects {
		if eff.Trigger != trigger {
			continue
		}
		if !eff.Condition.Eval(card.OwnerID, m) {
			continue
		}
		hit = true
		out = append(out, e.runEffect(ctx, card, eff, trigger, m)...)
	}
	if !hit {
		return nil
	}
	announce := NewEvent(EventAbilityActivated, Payload{
		"sourceCardId": card.ID,
		"trigger":      string(trigger),
	})
	return append([]Event{announce}, out...)
}
