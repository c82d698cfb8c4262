package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mintCard stamps a fresh card instance from a template id. A missing
// template falls back to a vanilla token body.
func mintCard(baseID string, tmpl *CardTemplate, ownerID string, zone Zone) *Card {
	card := &Card{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		BaseCardID: baseID,
		Zone:       zone,
		Power:      1000,
		Level:      1,
		FaceUp:     true,
	}
	if tmpl != nil {
		card.Power = tmpl.Power
		card.Damage = tmpl.Damage
		card.Level = tmpl.Level
		card.Effects = tmpl.Effects
	}
	return card
}

// handleTransform replaces each targeted card with a fresh instance of the
// destination template: the original is exiled (auras detached, history
// kept) and the replacement is minted into the zone the original occupied.
// The destination comes from, in order: a queued response on the selection
// key, the keyword, transformTo, the first option. No destination means
// no-op.
func (e *Engine) handleTransform(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	targets := e.autoTargets(target, act, m)
	if len(targets) == 0 {
		return nil
	}

	dest := ""
	if act.SelectionKey != "" {
		if resp := m.findResponse(act.SelectionKey); resp != nil && resp.SelectedValue != "" {
			dest = resp.SelectedValue
			m.consumeResponse(act.SelectionKey)
			m.removeRequest(act.SelectionKey)
		}
	}
	if dest == "" {
		dest = act.Keyword
	}
	if dest == "" {
		dest = act.TransformTo
	}
	if dest == "" && len(act.Options) > 0 {
		dest = act.Options[0]
	}
	if dest == "" {
		return nil
	}

	templates, err := e.templates.CardTemplates(ctx, []string{dest})
	if err != nil {
		e.logger.Warn("template lookup failed", zap.String("card_id", dest), zap.Error(err))
		templates = nil
	}
	var tmpl *CardTemplate
	if t, ok := templates[dest]; ok {
		tmpl = &t
	}

	var events []Event
	for _, old := range targets {
		origZone := old.Zone
		old.Zone = ZoneExile
		if origZone == ZoneField {
			m.DetachAuras(old)
		}

		minted := mintCard(dest, tmpl, old.OwnerID, origZone)
		m.Cards = append(m.Cards, minted)

		events = append(events, NewEvent(EventTransform, Payload{
			"cardId":     old.ID,
			"newCardId":  minted.ID,
			"fromCardId": old.BaseCardID,
			"toCardId":   dest,
			"zone":       string(origZone),
		}))
	}
	return events
}

// handleCreateToken mints N token instances for the acting player. The
// base template per instance comes from a weighted pick over tokenBaseIds
// when present, otherwise from the keyword.
func (e *Engine) handleCreateToken(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	count := act.valueOr(1)

	zone := ZoneField
	switch act.Target {
	case "Hand", "PlayerHand":
		zone = ZoneHand
	case "Deck", "PlayerDeck":
		zone = ZoneDeck
	case "Graveyard", "PlayerGraveyard":
		zone = ZoneGraveyard
	}

	candidates := act.TokenBaseIDs
	if len(candidates) == 0 && act.Keyword != "" {
		candidates = []string{act.Keyword}
	}
	if len(candidates) == 0 {
		return nil
	}

	templates, err := e.templates.CardTemplates(ctx, candidates)
	if err != nil {
		e.logger.Warn("template lookup failed", zap.Strings("card_ids", candidates), zap.Error(err))
		templates = nil
	}

	var events []Event
	for i := 0; i < count; i++ {
		baseID := candidates[0]
		if len(candidates) > 1 {
			if picked, ok := e.weightedRandomSelect(candidates, act.Weights); ok {
				baseID = picked
			}
		}

		var tmpl *CardTemplate
		if t, ok := templates[baseID]; ok {
			tmpl = &t
		}
		token := mintCard(baseID, tmpl, actingPlayerID, zone)
		token.SetStatus(StatusIsToken, "true")
		m.Cards = append(m.Cards, token)

		events = append(events, NewEvent(EventCreateToken, Payload{
			"tokenId":    token.ID,
			"baseCardId": baseID,
			"ownerId":    actingPlayerID,
			"zone":       string(zone),
		}))
	}
	return events
}
