package engine

// EventType indicates the category of an engine event. Event types double
// as client notification tags and as the trigger-matching keys compared
// against card effect triggers; that dual use is intentional.
type EventType string

const (
	// Trigger keys
	EventOnPlay       EventType = "OnPlay"
	EventOnSummon     EventType = "OnSummon"
	EventOnEnterField EventType = "OnEnterField"
	EventOnDestroy    EventType = "OnDestroy"
	EventOnTurnEnd    EventType = "OnTurnEnd"
	EventOnDamage     EventType = "OnDamage"
	EventPassive      EventType = "Passive"

	// Resolution events
	EventAbilityActivated  EventType = "AbilityActivated"
	EventDraw              EventType = "Draw"
	EventBounce            EventType = "Bounce"
	EventDiscard           EventType = "Discard"
	EventExile             EventType = "Exile"
	EventMoveField         EventType = "MoveField"
	EventMoveDeck          EventType = "MoveDeck"
	EventMoveToDamageZone  EventType = "MoveToDamageZone"
	EventMoveZone          EventType = "MoveZone"
	EventAuraApplied       EventType = "AuraApplied"
	EventBattleBuff        EventType = "BattleBuff"
	EventBattleBuffRemoved EventType = "BattleBuffRemoved"
	EventStatusRemoved     EventType = "StatusRemoved"
	EventSelect            EventType = "Select"
	EventSendChoiceRequest EventType = "SendChoiceRequest"
	EventSelectOption      EventType = "SelectOption"
	EventSelectOptionDone  EventType = "SelectOptionResult"
	EventDestroy           EventType = "Destroy"
	EventSummon            EventType = "Summon"
	EventPayCost           EventType = "PayCost"
	EventGainLevel         EventType = "GainLevel"
	EventDestroyLevel      EventType = "DestroyLevel"
	EventAssignColor       EventType = "AssignColor"
	EventActivateCost      EventType = "ActivateCost"
	EventPlayerStatus      EventType = "PlayerStatus"
	EventSetPlayerStatus   EventType = "SetPlayerStatus"
	EventTransform         EventType = "Transform"
	EventCounterChange     EventType = "CounterChange"
	EventApplyDamage       EventType = "ApplyDamage"
	EventCreateToken       EventType = "CreateToken"
	EventCallMethod        EventType = "CallMethod"
	EventNextSummonBuff    EventType = "NextSummonBuff"
	EventCostModifier      EventType = "CostModifier"
	EventSetStatus         EventType = "SetStatus"
	EventProcessDamage     EventType = "ProcessDamage"
	EventReflectionDamage  EventType = "ReflectionDamage"
	EventTempStatusExpired EventType = "TempStatusExpired"

	// Turn/battle events
	EventTurnEnded      EventType = "TurnEnded"
	EventPhaseChanged   EventType = "PhaseChanged"
	EventAttackDeclared EventType = "AttackDeclared"
	EventBlockSet       EventType = "BlockSet"
	EventDamage         EventType = "Damage"

	// Error-shaped events: the engine reports faults, it never raises.
	EventCardNotFound         EventType = "CardNotFound"
	EventMatchNotFound        EventType = "MatchNotFound"
	EventPlayerNotFound       EventType = "PlayerNotFound"
	EventInvalidAttacker      EventType = "InvalidAttacker"
	EventInvalidTarget        EventType = "InvalidTarget"
	EventInvalidBlocker       EventType = "InvalidBlocker"
	EventInvalidBattleStep    EventType = "InvalidBattleStep"
	EventUnknownAction        EventType = "UnknownAction"
	EventUnsupportedOperation EventType = "UnsupportedOperation"
	EventCascadeLimitExceeded EventType = "CascadeLimitExceeded"
)

// Payload is the flat argument bundle attached to an event.
type Payload map[string]any

// Event is an emitted, append-only record of something that happened.
type Event struct {
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

// NewEvent creates an event with the given payload entries.
func NewEvent(t EventType, payload Payload) Event {
	if payload == nil {
		payload = Payload{}
	}
	return Event{Type: t, Payload: payload}
}

// ErrorEvent shapes a fault as an event carrying a message.
func ErrorEvent(t EventType, message string, payload Payload) Event {
	if payload == nil {
		payload = Payload{}
	}
	payload["message"] = message
	return Event{Type: t, Payload: payload}
}

// CardID extracts the cardId payload entry, if present.
func (p Payload) CardID() string {
	return p.str("cardId")
}

func (p Payload) str(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
