package engine

import (
	"context"

	"go.uber.org/zap"
)

// evolveThresholds maps the match turn count to the leader evolution
// stage: below 4 is stage 0, below 7 is stage 1, then stage 2.
var evolveThresholds = []int{4, 7}

func stageIndex(turnCount int) int {
	for i, th := range evolveThresholds {
		if turnCount < th {
			return i
		}
	}
	return len(evolveThresholds)
}

// ReconcileAuras converges every leader passive toward the match state:
// a passive whose condition holds is retracted then re-applied, one whose
// condition fails is retracted. Statuses written here carry the leader id
// as source, which is what makes the retract half possible. Running the
// reconciler twice in a row with no state change in between is a no-op.
func (e *Engine) ReconcileAuras(ctx context.Context, m *MatchState, events *[]Event) {
	for _, p := range m.Players {
		if p.LeaderID == "" {
			continue
		}
		leader, err := e.leaders.Leader(ctx, p.LeaderID)
		if err != nil {
			e.logger.Warn("leader lookup failed", zap.String("leader_id", p.LeaderID), zap.Error(err))
			continue
		}
		if leader == nil {
			continue
		}

		idx := stageIndex(m.TurnCount)
		if idx >= len(leader.EvolutionStages) {
			continue
		}
		stage := leader.EvolutionStages[idx]

		// Stand-in source card so passives flow through the same
		// targeting path as card abilities.
		dummy := &Card{ID: p.LeaderID, OwnerID: p.ID}

		for _, eff := range stage.PassiveEffects {
			if eff.Condition.Eval(p.ID, m) {
				e.applyPassive(ctx, dummy, eff, p, m, events)
			} else {
				e.retractPassive(eff, p, m, events)
			}
		}
	}
}

// passiveStatusKey is the status key a passive action writes under.
func passiveStatusKey(act Action) string {
	switch act.Type {
	case ActionPowerAura:
		return StatusTempPowerBoost
	case ActionDamageAura:
		return StatusTempDamageBoost
	default:
		return keywordMap(act.keywordOr("Power"))
	}
}

func (e *Engine) applyPassive(ctx context.Context, dummy *Card, eff Effect, p *Player, m *MatchState, events *[]Event) {
	*events = append(*events, NewEvent(EventAbilityActivated, Payload{
		"sourceCardId": dummy.ID,
		"trigger":      string(EventPassive),
	}))

	for _, act := range eff.Actions {
		key := passiveStatusKey(act)

		// Retract match-wide before apply: cards that left the target
		// pool since the last pass lose the grant, and repeated
		// reconciliation cannot stack duplicates.
		for _, c := range m.Cards {
			removeTempStatuses(c, key, dummy.ID)
			if act.durationOr(-1) == -1 {
				removePermStatus(c, key, dummy.ID)
			}
		}

		targets := e.autoTargets(dummy, act, m)

		for _, tgt := range targets {
			switch act.Type {
			case ActionPowerAura, ActionDamageAura, ActionKeywordAura:
				tgt.AddTempStatus(key, itoa(act.Value), -1, dummy.ID)
				*events = append(*events, NewEvent(EventAuraApplied, Payload{
					"cardId":       tgt.ID,
					"sourceCardId": dummy.ID,
					"auraType":     string(act.Type),
					"value":        act.Value,
				}))
			default:
				// Everything else is normalized into the battle-buff
				// shape.
				dur := act.durationOr(-1)
				if dur == -1 {
					tgt.SetStatusFrom(key, itoa(act.Value), dummy.ID)
				} else {
					tgt.AddTempStatus(key, itoa(act.Value), m.TurnCount+dur-1, dummy.ID)
				}
				*events = append(*events, NewEvent(EventBattleBuff, Payload{
					"cardId":       tgt.ID,
					"sourceCardId": dummy.ID,
					"keyword":      act.keywordOr("Power"),
					"value":        act.Value,
					"duration":     dur,
				}))
			}
		}
	}
}

// retractPassive sweeps every card for statuses the leader granted under
// the effect's keys and removes them. The sweep is match-wide so cards
// that left the original target pool still lose the grant.
func (e *Engine) retractPassive(eff Effect, p *Player, m *MatchState, events *[]Event) {
	for _, act := range eff.Actions {
		key := passiveStatusKey(act)
		for _, c := range m.Cards {
			if removeTempStatuses(c, key, p.LeaderID) {
				*events = append(*events, NewEvent(EventBattleBuffRemoved, Payload{
					"cardId":       c.ID,
					"sourceCardId": p.LeaderID,
					"statusKey":    key,
				}))
			}
			if act.durationOr(-1) == -1 && removePermStatus(c, key, p.LeaderID) {
				*events = append(*events, NewEvent(EventStatusRemoved, Payload{
					"cardId":       c.ID,
					"sourceCardId": p.LeaderID,
					"statusKey":    key,
				}))
			}
		}
	}
}

// removeTempStatuses deletes temp entries matching key and source,
// reporting whether anything was removed.
func removeTempStatuses(c *Card, key, sourceID string) bool {
	removed := false
	kept := c.TempStatuses[:0]
	for _, s := range c.TempStatuses {
		if s.Key == key && s.SourceID == sourceID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	c.TempStatuses = kept
	return removed
}

// removePermStatus deletes a permanent status matching key and source.
func removePermStatus(c *Card, key, sourceID string) bool {
	removed := false
	kept := c.Statuses[:0]
	for _, s := range c.Statuses {
		if s.Key == key && s.SourceID == sourceID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	c.Statuses = kept
	return removed
}
