package engine

import "context"

// actionHandler is the shared handler contract: mutate the target card and
// match state, append events, never fail. "No targets" and "already in the
// desired state" emit nothing instead of erroring.
type actionHandler func(e *Engine, ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event

// handlerFor is the single polymorphic dispatch point: a total function
// over the closed action enum. A totality test asserts every enum member
// maps to a handler, so an unhandled variant fails loudly instead of
// surfacing as a silent runtime fallback. Unknown strings
// (malformed card data) return nil and are reported by the dispatcher.
func handlerFor(t ActionType) actionHandler {
	switch t {
	case ActionDraw:
		return (*Engine).handleDraw
	case ActionBounce:
		return moveHandler(ZoneHand)
	case ActionDiscard:
		return moveHandler(ZoneGraveyard)
	case ActionExile:
		return moveHandler(ZoneExile)
	case ActionMoveField:
		return moveHandler(ZoneField)
	case ActionMoveDeck:
		return moveHandler(ZoneDeck)
	case ActionMoveToDamageZone:
		return moveHandler(ZoneDamage)
	case ActionPowerAura, ActionDamageAura, ActionKeywordAura:
		return (*Engine).handleAura
	case ActionBattleBuff:
		return (*Engine).handleBattleBuff
	case ActionSelect:
		return (*Engine).handleSelect
	case ActionSelectOption:
		return (*Engine).handleSelectOption
	case ActionDestroy:
		return (*Engine).handleDestroy
	case ActionSummon:
		return (*Engine).handleSummon
	case ActionPayCost:
		return (*Engine).handlePayCost
	case ActionGainLevel:
		return (*Engine).handleGainLevel
	case ActionDestroyLevel:
		return (*Engine).handleDestroyLevel
	case ActionAssignColor:
		return (*Engine).handleAssignColor
	case ActionActivateCost:
		return (*Engine).handleActivateCost
	case ActionPlayerStatus:
		return (*Engine).handlePlayerStatus
	case ActionSetPlayerStatus:
		return (*Engine).handleSetPlayerStatus
	case ActionTransform:
		return (*Engine).handleTransform
	case ActionCounterChange:
		return (*Engine).handleCounterChange
	case ActionApplyDamage:
		return (*Engine).handleApplyDamage
	case ActionCreateToken:
		return (*Engine).handleCreateToken
	case ActionCallMethod:
		return (*Engine).handleCallMethod
	case ActionNextSummonBuff:
		return (*Engine).handleNextSummonBuff
	case ActionCostModifier:
		return (*Engine).handleCostModifier
	case ActionSetStatus:
		return (*Engine).handleSetStatus
	case ActionProcessDamage:
		return (*Engine).handleProcessDamage
	}
	return nil
}

// moveHandler binds the generic zone-move handler to a destination zone at
// registration time; the whole Move family is one implementation.
func moveHandler(dest Zone) actionHandler {
	return func(e *Engine, ctx context.Context, target *Card, act Action, m *MatchState, actingPlayerID string) []Event {
		return e.handleMoveZone(ctx, target, act, m, actingPlayerID, dest)
	}
}

// poolLevel reports whether a kind runs once against the acting card
// instead of once per resolved target: player-scoped operations and the
// handlers that interpret their target/selectionKey fields themselves.
func poolLevel(t ActionType) bool {
	switch t {
	case ActionSelect, ActionSelectOption, ActionPayCost, ActionDestroyLevel,
		ActionPlayerStatus, ActionSetPlayerStatus, ActionNextSummonBuff,
		ActionProcessDamage, ActionApplyDamage, ActionTransform,
		ActionCreateToken:
		return true
	}
	return false
}
