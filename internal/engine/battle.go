package engine

import (
	"context"

	"github.com/google/uuid"
)

// Battle flows declare -> block choice -> attack ability -> resolve ->
// cleanup. Each operation checks the step it needs and reports an
// InvalidBattleStep event, mutating nothing, when called out of order.

// DeclareAttack opens a battle. Against a human defender the battle waits
// in the block-choice step; an AI defender auto-declines the block and the
// battle resolves immediately.
func (e *Engine) DeclareAttack(ctx context.Context, m *MatchState, attackerID, targetID string, targetIsLeader bool) []Event {
	if m.BattleStep != StepNone && m.BattleStep != StepCleanUp {
		return []Event{ErrorEvent(EventInvalidBattleStep, "battle already in progress", Payload{
			"battleStep": string(m.BattleStep),
		})}
	}

	attacker := m.FindCard(attackerID)
	if attacker == nil || attacker.Zone != ZoneField {
		return []Event{ErrorEvent(EventInvalidAttacker, "attacker not on field", Payload{"cardId": attackerID})}
	}
	if attacker.HasFlag(StatusHasAttacked) {
		return []Event{ErrorEvent(EventInvalidAttacker, "attacker has already attacked", Payload{"cardId": attackerID})}
	}

	defender := m.Opponent(attacker.OwnerID)
	if defender == nil {
		return []Event{ErrorEvent(EventPlayerNotFound, "defender not found", nil)}
	}

	targetOwnerID := defender.ID
	if !targetIsLeader {
		target := m.FindCard(targetID)
		if target == nil || target.Zone != ZoneField {
			return []Event{ErrorEvent(EventInvalidTarget, "target not on field", Payload{"cardId": targetID})}
		}
		targetOwnerID = target.OwnerID
	}

	m.PendingBattle = &PendingBattle{
		AttackerID:      attackerID,
		AttackerOwnerID: attacker.OwnerID,
		TargetID:        targetID,
		TargetOwnerID:   targetOwnerID,
		IsLeader:        targetIsLeader,
	}
	m.BattleStep = StepBlockChoice

	events := []Event{NewEvent(EventAttackDeclared, Payload{
		"attackerId": attackerID,
		"targetId":   targetID,
		"isLeader":   targetIsLeader,
	})}

	if hasCounterCards(m, defender.ID) {
		req := ChoiceRequest{
			RequestID:     "counter_" + uuid.NewString(),
			PlayerID:      defender.ID,
			PromptText:    "Activate a counter card?",
			Options:       []string{"Yes", "No"},
			SelectionType: "counter",
		}
		m.ChoiceRequests = append(m.ChoiceRequests, req)
		events = append(events, NewEvent(EventSendChoiceRequest, Payload{
			"requestId":     req.RequestID,
			"playerId":      defender.ID,
			"options":       req.Options,
			"selectionType": "counter",
		}))
	}

	if defender.IsAI {
		events = append(events, NewEvent(EventBlockSet, Payload{"blockerId": ""}))
		m.BattleStep = StepResolve
		combat := e.resolveBattleMath(m)
		events = append(events, e.resolveCascade(ctx, combat, m)...)
		e.ReconcileAuras(ctx, m, &events)
	}

	return events
}

// SetBlocker records the defender's block decision. An empty blocker id
// means no block.
func (e *Engine) SetBlocker(m *MatchState, blockerID string) []Event {
	if m.BattleStep != StepBlockChoice {
		return []Event{ErrorEvent(EventInvalidBattleStep, "not awaiting block choice", Payload{
			"battleStep": string(m.BattleStep),
		})}
	}
	pb := m.PendingBattle
	if pb == nil {
		return []Event{ErrorEvent(EventInvalidBattleStep, "no battle in progress", nil)}
	}

	if blockerID != "" {
		blocker := m.FindCard(blockerID)
		if blocker == nil || blocker.OwnerID == pb.AttackerOwnerID || blocker.Zone != ZoneField {
			return []Event{ErrorEvent(EventInvalidBlocker, "blocker invalid", Payload{"cardId": blockerID})}
		}
		pb.BlockerID = blockerID
	}
	m.BattleStep = StepAttackAbility

	return []Event{NewEvent(EventBlockSet, Payload{"blockerId": blockerID})}
}

// ResolveBattle runs the combat math once attack abilities are settled.
func (e *Engine) ResolveBattle(ctx context.Context, m *MatchState) []Event {
	if m.BattleStep != StepAttackAbility {
		return []Event{ErrorEvent(EventInvalidBattleStep, "battle not ready to resolve", Payload{
			"battleStep": string(m.BattleStep),
		})}
	}

	combat := e.resolveBattleMath(m)
	events := e.resolveCascade(ctx, combat, m)
	e.ReconcileAuras(ctx, m, &events)
	return events
}

// ResolveAck closes out a resolved battle: the attacker is marked as
// having attacked and the battle record is cleared.
func (e *Engine) ResolveAck(m *MatchState) []Event {
	if m.BattleStep != StepResolve {
		return []Event{ErrorEvent(EventInvalidBattleStep, "no resolved battle to acknowledge", Payload{
			"battleStep": string(m.BattleStep),
		})}
	}

	if pb := m.PendingBattle; pb != nil {
		if attacker := m.FindCard(pb.AttackerID); attacker != nil {
			attacker.SetStatus(StatusHasAttacked, "true")
		}
	}
	m.PendingBattle = nil
	m.BattleStep = StepCleanUp
	return nil
}

// resolveBattleMath compares effective powers and applies the outcome. A
// blocker substitutes for the declared target; leader attacks deal the
// attacker's damage value to the defending player's HP. Ties destroy
// both cards; a critical attacker converts overkill into HP damage.
func (e *Engine) resolveBattleMath(m *MatchState) []Event {
	pb := m.PendingBattle
	m.BattleStep = StepResolve
	if pb == nil {
		return nil
	}

	attacker := m.FindCard(pb.AttackerID)
	if attacker == nil {
		return nil
	}

	targetID := pb.TargetID
	isLeader := pb.IsLeader
	if pb.BlockerID != "" {
		targetID = pb.BlockerID
		isLeader = false
	}

	var events []Event

	if isLeader {
		defender := m.FindPlayer(pb.TargetOwnerID)
		if defender == nil {
			return events
		}
		dmg := attacker.effectiveDamage()
		defender.HP -= dmg
		if defender.HP < 0 {
			defender.HP = 0
		}
		events = append(events, NewEvent(EventDamage, Payload{
			"playerId": defender.ID,
			"amount":   dmg,
			"newHp":    defender.HP,
		}))
		return events
	}

	target := m.FindCard(targetID)
	if target == nil {
		return events
	}

	atkPow := attacker.EffectivePower()
	tgtPow := target.EffectivePower()

	var destroyed []*Card
	switch {
	case atkPow > tgtPow:
		destroyed = append(destroyed, target)
		if attacker.HasFlag(StatusIsCritical) {
			overflow := atkPow - tgtPow - target.Damage
			if overflow > 0 {
				owner := m.FindPlayer(target.OwnerID)
				if owner != nil {
					owner.HP -= overflow
					if owner.HP < 0 {
						owner.HP = 0
					}
					events = append(events, NewEvent(EventDamage, Payload{
						"playerId": owner.ID,
						"amount":   overflow,
						"newHp":    owner.HP,
						"critical": true,
					}))
				}
			}
		}
	case atkPow < tgtPow:
		destroyed = append(destroyed, attacker)
	default:
		destroyed = append(destroyed, attacker, target)
	}

	ids := make([]string, 0, len(destroyed))
	for _, c := range destroyed {
		if c.Zone != ZoneField {
			continue
		}
		c.Zone = ZoneGraveyard
		m.DetachAuras(c)
		ids = append(ids, c.ID)
	}
	if len(ids) > 0 {
		events = append(events, NewEvent(EventDestroy, Payload{"cardIds": ids}))
		for _, id := range ids {
			events = append(events, NewEvent(EventOnDestroy, Payload{"cardId": id}))
		}
	}
	return events
}

// effectiveDamage is the printed damage plus every active TempDamageBoost.
func (c *Card) effectiveDamage() int {
	total := c.Damage
	for _, s := range c.TempStatuses {
		if s.Key == StatusTempDamageBoost {
			total += atoiSafe(s.Value)
		}
	}
	return total
}

func hasCounterCards(m *MatchState, ownerID string) bool {
	for _, c := range m.Cards {
		if c.OwnerID == ownerID && c.Zone == ZoneCounter {
			return true
		}
	}
	return false
}
