package engine

import "context"

// Player-scoped handlers. These are pool-level: the dispatcher runs them
// once with the acting card as target, and the handler decides which
// player the action lands on.

func (a Action) targetPlayer(m *MatchState, actingPlayerID string) *Player {
	if a.Target == TargetEnemyLeader {
		return m.Opponent(actingPlayerID)
	}
	return m.FindPlayer(actingPlayerID)
}

// handlePayCost deducts from the acting player's level-point pool. An
// insufficient pool is reported in the event, not raised; the pool is
// left untouched.
func (e *Engine) handlePayCost(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	costType := act.keywordOr("LevelPoint")
	costValue := act.Value

	player := m.FindPlayer(actingPlayerID)
	if player == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
	}

	if costType == "LevelPoint" {
		if player.LevelPoints < costValue {
			return []Event{NewEvent(EventPayCost, Payload{
				"playerId":  player.ID,
				"costType":  costType,
				"costValue": costValue,
				"error":     "insufficient level points",
			})}
		}
		player.LevelPoints -= costValue
	}

	return []Event{NewEvent(EventPayCost, Payload{
		"playerId":  player.ID,
		"costType":  costType,
		"costValue": costValue,
		"remaining": player.LevelPoints,
	})}
}

// handleDestroyLevel removes points from a player's level pool, clamped
// at zero.
func (e *Engine) handleDestroyLevel(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	player := act.targetPlayer(m, actingPlayerID)
	if player == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
	}

	value := act.valueOr(1)
	destroyed := value
	if destroyed > player.LevelPoints {
		destroyed = player.LevelPoints
	}
	player.LevelPoints -= destroyed

	return []Event{NewEvent(EventDestroyLevel, Payload{
		"playerId":  player.ID,
		"destroyed": destroyed,
		"remaining": player.LevelPoints,
	})}
}

// handlePlayerStatus writes a permanent status on a player.
func (e *Engine) handlePlayerStatus(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	player := act.targetPlayer(m, actingPlayerID)
	if player == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
	}

	key := act.keywordOr("Status")
	value := itoa(act.valueOr(1))
	player.SetStatus(key, value)

	return []Event{NewEvent(EventPlayerStatus, Payload{
		"playerId":    player.ID,
		"statusKey":   key,
		"statusValue": value,
	})}
}

// handleSetPlayerStatus writes a turn-limited status on a player.
func (e *Engine) handleSetPlayerStatus(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	player := act.targetPlayer(m, actingPlayerID)
	if player == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
	}

	key := act.keywordOr("Status")
	value := itoa(act.valueOr(1))
	dur := act.durationOr(1)
	player.TempStatuses = append(player.TempStatuses, TempStatus{
		Key:        key,
		Value:      value,
		ExpireTurn: m.TurnCount + dur,
		SourceID:   act.SourceCardID,
	})

	return []Event{NewEvent(EventSetPlayerStatus, Payload{
		"playerId":    player.ID,
		"statusKey":   key,
		"statusValue": value,
		"duration":    dur,
	})}
}

// handleNextSummonBuff stores a buff the owner's next summoned card will
// receive.
func (e *Engine) handleNextSummonBuff(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	player := m.FindPlayer(actingPlayerID)
	if player == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
	}

	buff := SummonBuff{
		Keyword:  act.keywordOr("Power"),
		Value:    act.Value,
		Duration: act.durationOr(1),
	}
	player.NextSummonBuffs = append(player.NextSummonBuffs, buff)

	return []Event{NewEvent(EventNextSummonBuff, Payload{
		"playerId": player.ID,
		"keyword":  buff.Keyword,
		"value":    buff.Value,
		"duration": buff.Duration,
	})}
}

// handleApplyDamage deals direct damage: to a player's HP when targeting
// a leader, floored at zero, otherwise to each resolved card's damage
// counter.
func (e *Engine) handleApplyDamage(ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
	value := act.valueOr(1)
	targetSpec := act.Target
	if targetSpec == "" {
		targetSpec = TargetEnemyLeader
	}

	if targetSpec == TargetPlayerLeader || targetSpec == TargetEnemyLeader {
		player := act.targetPlayer(m, actingPlayerID)
		if targetSpec == TargetEnemyLeader {
			player = m.Opponent(actingPlayerID)
		}
		if player == nil {
			return []Event{ErrorEvent(EventPlayerNotFound, "player not found", Payload{"playerId": actingPlayerID})}
		}
		player.HP -= value
		if player.HP < 0 {
			player.HP = 0
		}
		return []Event{NewEvent(EventApplyDamage, Payload{
			"targetType":  "Player",
			"playerId":    player.ID,
			"damageValue": value,
			"newHp":       player.HP,
		})}
	}

	var events []Event
	for _, c := range e.ResolveTargets(target, act, m) {
		c.Damage += value
		events = append(events, NewEvent(EventApplyDamage, Payload{
			"targetType":  "Card",
			"cardId":      c.ID,
			"damageValue": value,
			"newDamage":   c.Damage,
		}))
	}
	return events
}
