package engine

import (
	"context"

	"go.uber.org/zap"
)

// handleProcessDamage runs the damage-zone pipeline: move up to N cards
// off the top of the defender's deck into the damage zone, then classify
// each one. Trigger-option cards raise a use/not_use choice gated by a
// pending record; plain cards get a random assigned color. A defender
// field card with the chain-reflect flag bounces the damage back at the
// attacker once.
func (e *Engine) handleProcessDamage(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	value := act.valueOr(1)

	defenderID := act.TargetPlayerID
	if defenderID == "" {
		if opp := m.Opponent(actingPlayerID); opp != nil {
			defenderID = opp.ID
		}
	}
	defender := m.FindPlayer(defenderID)
	if defender == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": defenderID})}
	}

	var damageCards []*Card
	for i := 0; i < value; i++ {
		c := topDeckCard(m, defender.ID)
		if c == nil {
			break
		}
		c.Zone = ZoneDamage
		damageCards = append(damageCards, c)
	}

	var events []Event
	for _, c := range damageCards {
		events = append(events, NewEvent(EventMoveZone, Payload{
			"cardId":   c.ID,
			"fromZone": string(ZoneDeck),
			"toZone":   string(ZoneDamage),
		}))
	}

	baseIDs := make([]string, 0, len(damageCards))
	for _, c := range damageCards {
		baseIDs = append(baseIDs, c.BaseCardID)
	}
	templates, err := e.templates.CardTemplates(ctx, baseIDs)
	if err != nil {
		e.logger.Warn("template lookup failed", zap.Strings("card_ids", baseIDs), zap.Error(err))
		templates = nil
	}

	for _, c := range damageCards {
		tmpl, ok := templates[c.BaseCardID]
		if ok && tmpl.IsTO {
			key := "to_select_" + c.ID
			m.ChoiceRequests = append(m.ChoiceRequests, ChoiceRequest{
				RequestID:     key,
				PlayerID:      defender.ID,
				PromptText:    "Activate trigger effect?",
				Options:       []string{"use", "not_use"},
				SelectionType: "to_selection",
				CardID:        c.ID,
			})
			m.PendingDeferred = append(m.PendingDeferred, PendingDeferred{
				SourceCardID: act.SourceCardID,
				Trigger:      string(EventOnDamage),
				SelectionKey: key,
				TOCardID:     c.ID,
			})
			events = append(events, NewEvent(EventSendChoiceRequest, Payload{
				"requestId":     key,
				"playerId":      defender.ID,
				"cardId":        c.ID,
				"options":       []string{"use", "not_use"},
				"selectionType": "to_selection",
			}))
			continue
		}

		colors := defaultColors
		if ok && len(tmpl.AvailableColors) > 0 {
			colors = tmpl.AvailableColors
		}
		if color, picked := e.weightedRandomSelect(colors, nil); picked {
			c.AssignedColor = color
			events = append(events, NewEvent(EventAssignColor, Payload{
				"cardId": c.ID,
				"color":  color,
			}))
		}
	}

	// Chain reflect: exactly one bounce, never a loop.
	if !act.IsReflection && len(damageCards) > 0 {
		if reflector := fieldCardWithFlag(m, defender.ID, StatusChainReflect); reflector != nil {
			events = append(events, NewEvent(EventReflectionDamage, Payload{
				"cardId":         reflector.ID,
				"targetPlayerId": actingPlayerID,
				"damageValue":    value,
			}))
			reflected := Action{
				Type:           ActionProcessDamage,
				Value:          value,
				SourceCardID:   reflector.ID,
				TargetPlayerID: actingPlayerID,
				IsReflection:   true,
			}
			events = append(events, e.handleProcessDamage(ctx, reflector, reflected, m, defender.ID)...)
		}
	}

	for _, c := range damageCards {
		events = append(events, NewEvent(EventOnDamage, Payload{
			"cardId":         c.ID,
			"targetPlayerId": defender.ID,
		}))
	}
	events = append(events, NewEvent(EventProcessDamage, Payload{
		"targetPlayerId": defender.ID,
		"damageValue":    value,
		"cardCount":      len(damageCards),
	}))
	return events
}

func fieldCardWithFlag(m *MatchState, ownerID, flag string) *Card {
	for _, c := range m.Cards {
		if c.OwnerID == ownerID && c.Zone == ZoneField && c.HasFlag(flag) {
			return c
		}
	}
	return nil
}
