package engine

import "strconv"

// ActionType enumerates every concrete game-state operation a card effect
// can perform. The set is closed: dispatch is a total function over these
// values, and an unrecognized type is reported and skipped at runtime.
type ActionType string

const (
	ActionDraw             ActionType = "Draw"
	ActionBounce           ActionType = "Bounce"
	ActionDiscard          ActionType = "Discard"
	ActionExile            ActionType = "Exile"
	ActionMoveField        ActionType = "MoveField"
	ActionMoveDeck         ActionType = "MoveDeck"
	ActionMoveToDamageZone ActionType = "MoveToDamageZone"
	ActionPowerAura        ActionType = "PowerAura"
	ActionDamageAura       ActionType = "DamageAura"
	ActionKeywordAura      ActionType = "KeywordAura"
	ActionBattleBuff       ActionType = "BattleBuff"
	ActionSelect           ActionType = "Select"
	ActionSelectOption     ActionType = "SelectOption"
	ActionDestroy          ActionType = "Destroy"
	ActionSummon           ActionType = "Summon"
	ActionPayCost          ActionType = "PayCost"
	ActionGainLevel        ActionType = "GainLevel"
	ActionDestroyLevel     ActionType = "DestroyLevel"
	ActionAssignColor      ActionType = "AssignColor"
	ActionActivateCost     ActionType = "ActivateCost"
	ActionPlayerStatus     ActionType = "PlayerStatus"
	ActionSetPlayerStatus  ActionType = "SetPlayerStatus"
	ActionTransform        ActionType = "Transform"
	ActionCounterChange    ActionType = "CounterChange"
	ActionApplyDamage      ActionType = "ApplyDamage"
	ActionCreateToken      ActionType = "CreateToken"
	ActionCallMethod       ActionType = "CallMethod"
	ActionNextSummonBuff   ActionType = "NextSummonBuff"
	ActionCostModifier     ActionType = "CostModifier"
	ActionSetStatus        ActionType = "SetStatus"
	ActionProcessDamage    ActionType = "ProcessDamage"
)

// AllActionTypes lists every member of the closed action enum.
var AllActionTypes = []ActionType{
	ActionDraw, ActionBounce, ActionDiscard, ActionExile, ActionMoveField,
	ActionMoveDeck, ActionMoveToDamageZone, ActionPowerAura, ActionDamageAura,
	ActionKeywordAura, ActionBattleBuff, ActionSelect, ActionSelectOption,
	ActionDestroy, ActionSummon, ActionPayCost, ActionGainLevel,
	ActionDestroyLevel, ActionAssignColor, ActionActivateCost,
	ActionPlayerStatus, ActionSetPlayerStatus, ActionTransform,
	ActionCounterChange, ActionApplyDamage, ActionCreateToken,
	ActionCallMethod, ActionNextSummonBuff, ActionCostModifier,
	ActionSetStatus, ActionProcessDamage,
}

// Action is one parameterized game-state operation inside an effect.
// A zero Value or Duration means "use the handler's default".
type Action struct {
	Type         ActionType `json:"type" yaml:"type"`
	Target       string     `json:"target,omitempty" yaml:"target,omitempty"`
	TargetFilter string     `json:"targetFilter,omitempty" yaml:"targetFilter,omitempty"`
	Value        int        `json:"value,omitempty" yaml:"value,omitempty"`
	Keyword      string     `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Duration     int        `json:"duration,omitempty" yaml:"duration,omitempty"`
	Mode         string     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Prompt       string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	SelectionKey string     `json:"selectionKey,omitempty" yaml:"selectionKey,omitempty"`
	SourceKey    string     `json:"sourceKey,omitempty" yaml:"sourceKey,omitempty"`
	Options      []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Weights      []int      `json:"weights,omitempty" yaml:"weights,omitempty"`
	TransformTo  string     `json:"transformTo,omitempty" yaml:"transformTo,omitempty"`
	TokenBaseIDs []string   `json:"tokenBaseIds,omitempty" yaml:"tokenBaseIds,omitempty"`
	Deferred     bool       `json:"deferred,omitempty" yaml:"deferred,omitempty"`

	// SourceCardID is stamped by the dispatcher before a handler runs so
	// aura attribution survives the shared (target, action) signature.
	SourceCardID string `json:"sourceCardId,omitempty" yaml:"sourceCardId,omitempty"`

	// ProcessDamage parameters.
	TargetPlayerID string `json:"targetPlayerId,omitempty" yaml:"targetPlayerId,omitempty"`
	IsReflection   bool   `json:"isReflection,omitempty" yaml:"isReflection,omitempty"`
}

// Effect is a card's declared reaction to a trigger: an optional parsed
// condition, an optional Yes/No confirmation gate, and an ordered action
// list.
type Effect struct {
	Trigger   EventType  `json:"trigger" yaml:"trigger"`
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Optional  bool       `json:"optional,omitempty" yaml:"optional,omitempty"`
	Actions   []Action   `json:"actions" yaml:"actions"`
}

// valueOr returns the action value, or def when unset.
func (a Action) valueOr(def int) int {
	if a.Value == 0 {
		return def
	}
	return a.Value
}

// durationOr returns the action duration, or def when unset.
func (a Action) durationOr(def int) int {
	if a.Duration == 0 {
		return def
	}
	return a.Duration
}

// keywordOr returns the action keyword, or def when unset.
func (a Action) keywordOr(def string) string {
	if a.Keyword == "" {
		return def
	}
	return a.Keyword
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func btoa(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
