package engine

import "context"

// Handlers share one contract: mutate the target card and match state,
// return the events the mutation produced. They never fail; "nothing to
// do" returns an empty slice.

// handleDraw moves up to N deck-top cards into the drawing player's hand.
// Target PlayerLeader/EnemyLeader switches which player draws.
func (e *Engine) handleDraw(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	drawTimes := act.valueOr(1)

	playerID := actingPlayerID
	if act.Target == TargetEnemyLeader {
		if enemy := m.Opponent(actingPlayerID); enemy != nil {
			playerID = enemy.ID
		}
	}

	drawn := 0
	for i := 0; i < drawTimes; i++ {
		deckCard := topDeckCard(m, playerID)
		if deckCard == nil {
			break
		}
		deckCard.Zone = ZoneHand
		drawn++
	}

	return []Event{NewEvent(EventDraw, Payload{"playerId": playerID, "count": drawn})}
}

func topDeckCard(m *MatchState, playerID string) *Card {
	for _, c := range m.Cards {
		if c.OwnerID == playerID && c.Zone == ZoneDeck {
			return c
		}
	}
	return nil
}

// handleMoveZone is the generic move handler behind the whole Move family;
// the destination zone is bound at registration time. Moving a card that
// is already at the destination emits nothing.
func (e *Engine) handleMoveZone(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string, dest Zone) []Event {
	fromZone := target.Zone
	if fromZone == dest {
		return nil
	}
	target.Zone = dest
	if fromZone == ZoneField && dest != ZoneField {
		m.DetachAuras(target)
	}
	return []Event{NewEvent(EventType(act.Type), Payload{
		"cardId":   target.ID,
		"fromZone": string(fromZone),
		"toZone":   string(dest),
	})}
}

// handleAura writes a revocable-permanent temp status keyed by the aura's
// keyword, attributed to the originating card.
func (e *Engine) handleAura(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	var key, keyword string
	switch act.Type {
	case ActionPowerAura:
		key, keyword = StatusTempPowerBoost, "Power"
	case ActionDamageAura:
		key, keyword = StatusTempDamageBoost, "Damage"
	default:
		keyword = act.keywordOr("Power")
		key = keywordMap(keyword)
	}

	target.AddTempStatus(key, itoa(act.Value), -1, act.SourceCardID)

	return []Event{NewEvent(EventAuraApplied, Payload{
		"cardId":       target.ID,
		"sourceCardId": act.SourceCardID,
		"auraType":     string(act.Type),
		"keyword":      keyword,
		"value":        act.Value,
	})}
}

// handleBattleBuff writes a permanent status for duration -1, otherwise a
// temp status expiring at turnCount+duration-1. Non-Power keywords also
// raise an Is<Keyword> flag.
func (e *Engine) handleBattleBuff(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	dur := act.durationOr(1)
	keyword := act.keywordOr("Power")
	key := keywordMap(keyword)

	if dur == -1 {
		target.SetStatusFrom(key, itoa(act.Value), act.SourceCardID)
	} else {
		expireTurn := m.TurnCount + dur - 1
		target.AddTempStatus(key, itoa(act.Value), expireTurn, act.SourceCardID)
	}

	if keyword != "Power" {
		target.SetStatus("Is"+keyword, "true")
	}

	return []Event{NewEvent(EventBattleBuff, Payload{
		"cardId":   target.ID,
		"keyword":  keyword,
		"value":    act.Value,
		"duration": dur,
	})}
}

// handleSelect computes the candidate pool and emits a choice request for
// the acting player. It does not change match state itself; the
// coordinator persists the request from the emitted event.
func (e *Engine) handleSelect(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	candidates := e.autoTargets(target, act, m)

	key := act.SelectionKey
	if key == "" {
		key = "default"
	}

	if len(candidates) == 0 {
		return []Event{NewEvent(EventSelect, Payload{
			"selectionKey": key,
			"selectedIds":  []string{},
		})}
	}

	maxSelect := act.valueOr(1)
	switch act.Mode {
	case "single", "":
		maxSelect = 1
	case "all":
		maxSelect = len(candidates)
	}
	if maxSelect > len(candidates) {
		maxSelect = len(candidates)
	}

	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = c.ID
	}

	return []Event{NewEvent(EventSendChoiceRequest, Payload{
		"requestId":     key,
		"playerId":      actingPlayerID,
		"promptText":    act.Prompt,
		"options":       options,
		"maxSelect":     maxSelect,
		"selectionType": "target",
		"mode":          act.Mode,
	})}
}

// handleSelectOption presents caller-supplied options, or in random mode
// immediately performs a weighted pick and inserts the matching response
// so dependent deferred actions unblock within the same resolution pass.
func (e *Engine) handleSelectOption(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	key := act.SelectionKey
	if key == "" {
		key = "option_select"
	}

	if len(act.Options) == 0 {
		return []Event{NewEvent(EventSelectOption, Payload{
			"selectionKey":   key,
			"selectedOption": nil,
		})}
	}

	if act.Mode == "random" {
		picked, ok := e.weightedRandomSelect(act.Options, act.Weights)
		if !ok {
			return []Event{NewEvent(EventSelectOption, Payload{
				"selectionKey":   key,
				"selectedOption": nil,
			})}
		}
		m.ChoiceResponses = append(m.ChoiceResponses, ChoiceResponse{
			RequestID:     key,
			PlayerID:      actingPlayerID,
			SelectedValue: picked,
		})
		return []Event{NewEvent(EventSelectOption, Payload{
			"selectionKey":  key,
			"selectedValue": picked,
			"mode":          "random",
		})}
	}

	return []Event{NewEvent(EventSendChoiceRequest, Payload{
		"requestId":     key,
		"playerId":      actingPlayerID,
		"promptText":    act.Prompt,
		"options":       act.Options,
		"maxSelect":     1,
		"selectionType": "option",
	})}
}

// handleDestroy moves the target to the graveyard. Idempotent against a
// card that is already there.
func (e *Engine) handleDestroy(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	if target.Zone == ZoneGraveyard {
		return nil
	}
	fromZone := target.Zone
	target.Zone = ZoneGraveyard
	if fromZone == ZoneField {
		m.DetachAuras(target)
	}
	return []Event{
		NewEvent(EventDestroy, Payload{
			"cardId":   target.ID,
			"fromZone": string(fromZone),
			"toZone":   string(ZoneGraveyard),
		}),
		NewEvent(EventOnDestroy, Payload{"cardId": target.ID}),
	}
}

// handleSummon moves a hand card of the acting player onto the field.
func (e *Engine) handleSummon(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	if target.Zone != ZoneHand || target.OwnerID != actingPlayerID {
		return nil
	}
	target.Zone = ZoneField
	return []Event{
		NewEvent(EventSummon, Payload{
			"cardId":   target.ID,
			"fromZone": string(ZoneHand),
			"toZone":   string(ZoneField),
			"ownerId":  actingPlayerID,
		}),
		NewEvent(EventOnSummon, Payload{"cardId": target.ID}),
		NewEvent(EventOnEnterField, Payload{"cardId": target.ID}),
	}
}

// handleGainLevel raises the target card's level.
func (e *Engine) handleGainLevel(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	boost := act.valueOr(1)
	target.Level += boost
	return []Event{NewEvent(EventGainLevel, Payload{
		"cardId":     target.ID,
		"levelBoost": boost,
		"newLevel":   target.Level,
	})}
}

// handleAssignColor adds a color cost status to the target card.
func (e *Engine) handleAssignColor(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	color := act.keywordOr("Red")
	value := act.valueOr(1)

	colorKey := "ColorCost_" + color
	current := 0
	if v, ok := target.Status(colorKey); ok {
		current = atoiSafe(v)
	}
	newCost := current + value
	target.SetStatus(colorKey, itoa(newCost))

	return []Event{NewEvent(EventAssignColor, Payload{
		"cardId":    target.ID,
		"color":     color,
		"value":     value,
		"totalCost": newCost,
	})}
}

// handleActivateCost toggles the cost-activated flag. Value -1
// deactivates; anything else activates.
func (e *Engine) handleActivateCost(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	activate := act.valueOr(1) == 1
	target.SetStatus(StatusCostActivated, btoa(activate))
	return []Event{NewEvent(EventActivateCost, Payload{
		"cardId":    target.ID,
		"activated": activate,
	})}
}

// handleCounterChange adjusts a named counter on the target card, clamped
// at zero.
func (e *Engine) handleCounterChange(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	counterType := act.keywordOr("Counter")
	change := act.valueOr(1)

	counterKey := counterType + "Count"
	current := 0
	if v, ok := target.Status(counterKey); ok {
		current = atoiSafe(v)
	}
	newCount := current + change
	if newCount < 0 {
		newCount = 0
	}
	target.SetStatus(counterKey, itoa(newCount))

	return []Event{NewEvent(EventCounterChange, Payload{
		"cardId":      target.ID,
		"counterType": counterType,
		"changeValue": change,
		"newCount":    newCount,
	})}
}

// handleCallMethod performs one of a fixed set of direct card mutations.
// Unknown method names are ignored.
func (e *Engine) handleCallMethod(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	method := act.Keyword
	if method == "" {
		return nil
	}

	switch method {
	case "SetFaceUp":
		target.FaceUp = act.Value != 0
	case "SetLevel":
		target.Level = act.Value
	case "SetPower":
		target.Power = act.Value
	case "SetDamage":
		target.Damage = act.Value
	case "ResetStatuses":
		target.Statuses = nil
	case "ResetTempStatuses":
		target.TempStatuses = nil
	default:
		return nil
	}

	return []Event{NewEvent(EventCallMethod, Payload{
		"cardId":      target.ID,
		"methodName":  method,
		"methodValue": act.Value,
	})}
}

// handleCostModifier applies a play-cost adjustment, permanent for
// duration -1 and turn-limited otherwise.
func (e *Engine) handleCostModifier(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	change := act.Value
	dur := act.durationOr(-1)

	if dur == -1 {
		target.SetStatusFrom(StatusCostModifier, itoa(change), act.SourceCardID)
	} else {
		target.AddTempStatus(StatusCostModifier, itoa(change), m.TurnCount+dur, act.SourceCardID)
	}

	return []Event{NewEvent(EventCostModifier, Payload{
		"cardId":     target.ID,
		"costChange": change,
		"duration":   dur,
	})}
}

// handleSetStatus writes an arbitrary status key on the target card,
// permanent for duration -1 and turn-limited otherwise.
func (e *Engine) handleSetStatus(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	key := act.keywordOr("Status")
	value := itoa(act.valueOr(1))
	dur := act.durationOr(-1)

	if dur == -1 {
		target.SetStatusFrom(key, value, act.SourceCardID)
	} else {
		target.AddTempStatus(key, value, m.TurnCount+dur, act.SourceCardID)
	}

	return []Event{NewEvent(EventSetStatus, Payload{
		"cardId":      target.ID,
		"statusKey":   key,
		"statusValue": value,
		"duration":    dur,
	})}
}
