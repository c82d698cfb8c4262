package engine

// Zone identifies one of the fixed card locations in a match.
type Zone string

const (
	ZoneField       Zone = "Field"
	ZoneHand        Zone = "Hand"
	ZoneDeck        Zone = "Deck"
	ZoneGraveyard   Zone = "Graveyard"
	ZoneExile       Zone = "Exile"
	ZoneEnvironment Zone = "Environment"
	ZoneCounter     Zone = "Counter"
	ZoneDamage      Zone = "DamageZone"
)

// Phase identifies the turn phase.
type Phase string

const (
	PhaseStart Phase = "Start"
	PhaseDraw  Phase = "Draw"
	PhaseMain  Phase = "Main"
	PhaseEnd   Phase = "End"
)

// phaseSequence is the fixed phase rotation within a turn.
var phaseSequence = []Phase{PhaseStart, PhaseDraw, PhaseMain, PhaseEnd}

// BattleStep identifies the current step of the attack/block/resolve
// state machine. Empty means no battle is in flight.
type BattleStep string

const (
	StepNone          BattleStep = ""
	StepBlockChoice   BattleStep = "BlockChoice"
	StepAttackAbility BattleStep = "AttackAbility"
	StepResolve       BattleStep = "Resolve"
	StepCleanUp       BattleStep = "CleanUp"
)

// Built-in status keys. The status maps stay open-ended: any key outside
// this set is carried as a passthrough custom key.
const (
	StatusTempPowerBoost  = "TempPowerBoost"
	StatusTempDamageBoost = "TempDamageBoost"
	StatusTempGail        = "TempGail"
	StatusTempProtect     = "TempProtect"
	StatusHasAttacked     = "HasAttacked"
	StatusIsToken         = "IsToken"
	StatusIsCritical      = "IsCritical"
	StatusCostActivated   = "CostActivated"
	StatusCostModifier    = "CostModifier"
	StatusChainReflect    = "IsChainPainReflect"
)

// keywordMap translates an ability keyword into the internal status key it
// is stored under. Unknown keywords pass through unchanged.
func keywordMap(keyword string) string {
	switch keyword {
	case "Power":
		return StatusTempPowerBoost
	case "Damage":
		return StatusTempDamageBoost
	case "Gail":
		return StatusTempGail
	case "Protect":
		return StatusTempProtect
	default:
		return keyword
	}
}

// Status is a permanent key/value entry on a card or player. Keys are
// unique; writing an existing key overwrites its value.
type Status struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	SourceID string `json:"sourceId,omitempty"`
}

// TempStatus is a revocable status entry. ExpireTurn -1 means the entry is
// permanent but revocable by its source; any other value means the entry is
// deleted once the match turn count exceeds it.
type TempStatus struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	ExpireTurn int    `json:"expireTurn"`
	SourceID   string `json:"sourceId,omitempty"`
}

// SummonBuff is a stored buff applied to the owner's next summoned card.
type SummonBuff struct {
	Keyword  string `json:"keyword"`
	Value    int    `json:"value"`
	Duration int    `json:"duration"`
}

// Card is one card instance inside a match. Cards are never removed from
// the match card list; "destroyed" means the zone becomes Graveyard.
type Card struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"ownerId"`
	BaseCardID    string       `json:"baseCardId"`
	Zone          Zone         `json:"zone"`
	Power         int          `json:"power"`
	Damage        int          `json:"damage"`
	Level         int          `json:"level"`
	FaceUp        bool         `json:"isFaceUp"`
	AssignedColor string       `json:"assignedColor,omitempty"`
	Statuses      []Status     `json:"statuses"`
	TempStatuses  []TempStatus `json:"tempStatuses"`
	Effects       []Effect     `json:"effectList"`
}

// Player is one side of the match. LeaderID references the leader master
// catalog; HP and LevelPoints are the player-scoped resource pools.
type Player struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	LeaderID        string       `json:"leaderId"`
	HP              int          `json:"hp"`
	LevelPoints     int          `json:"levelPoints"`
	IsAI            bool         `json:"isAI,omitempty"`
	Statuses        []Status     `json:"statuses,omitempty"`
	TempStatuses    []TempStatus `json:"tempStatuses,omitempty"`
	NextSummonBuffs []SummonBuff `json:"nextSummonBuffs,omitempty"`
}

// ChoiceRequest asks a player to supply input mid-resolution. It stays in
// the match document until its response is consumed.
type ChoiceRequest struct {
	RequestID     string   `json:"requestId"`
	PlayerID      string   `json:"playerId"`
	PromptText    string   `json:"promptText,omitempty"`
	Options       []string `json:"options,omitempty"`
	SelectionType string   `json:"selectionType,omitempty"`
	MaxSelect     int      `json:"maxSelect,omitempty"`
	CardID        string   `json:"cardId,omitempty"`
}

// ChoiceResponse is a player's answer to a ChoiceRequest, matched by
// request id. A response is consumed exactly once.
type ChoiceResponse struct {
	RequestID     string   `json:"requestId"`
	PlayerID      string   `json:"playerId"`
	SelectedValue string   `json:"selectedValue,omitempty"`
	SelectedIDs   []string `json:"selectedIds,omitempty"`
}

// PendingDeferred is a suspended action waiting for a choice response. It
// is the persisted continuation record that lets one effect span several
// stateless request/response cycles.
type PendingDeferred struct {
	Action       Action `json:"action"`
	SourceCardID string `json:"sourceCardId"`
	Trigger      string `json:"trigger"`
	SelectionKey string `json:"selectionKey"`
	// Confirm marks a Yes/No gate for an optional effect: "No" discards
	// the record without executing.
	Confirm bool `json:"confirm,omitempty"`
	// TOCardID marks a damage-zone trigger-option gate created by
	// ProcessDamage for the named card.
	TOCardID string `json:"toCardId,omitempty"`
}

// PendingBattle is the in-flight combat record between attack declaration
// and cleanup.
type PendingBattle struct {
	AttackerID      string `json:"attackerId"`
	AttackerOwnerID string `json:"attackerOwnerId"`
	TargetID        string `json:"targetId,omitempty"`
	TargetOwnerID   string `json:"targetOwnerId"`
	BlockerID       string `json:"blockerId,omitempty"`
	IsLeader        bool   `json:"isLeader"`
}

// MatchState is the root aggregate for a single match. One resolution call
// owns it exclusively; every component mutates it by reference.
type MatchState struct {
	ID              string              `json:"id"`
	Status          string              `json:"status,omitempty"`
	Cards           []*Card             `json:"cards"`
	Players         []*Player           `json:"players"`
	TurnCount       int                 `json:"turnCount"`
	Phase           Phase               `json:"phase"`
	TurnPlayerID    string              `json:"turnPlayerId"`
	BattleStep      BattleStep          `json:"battleStep,omitempty"`
	PendingBattle   *PendingBattle      `json:"pendingBattle,omitempty"`
	ChoiceRequests  []ChoiceRequest     `json:"choiceRequests,omitempty"`
	ChoiceResponses []ChoiceResponse    `json:"choiceResponses,omitempty"`
	PendingDeferred []PendingDeferred   `json:"pendingDeferred,omitempty"`
	Selections      map[string][]string `json:"selections,omitempty"`
	MatchVersion    int64               `json:"matchVersion"`
	UpdatedAt       string              `json:"updatedAt,omitempty"`
}

// FindCard returns the card with the given id, or nil.
func (m *MatchState) FindCard(id string) *Card {
	if id == "" {
		return nil
	}
	for _, c := range m.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindPlayer returns the player with the given id, or nil.
func (m *MatchState) FindPlayer(id string) *Player {
	for _, p := range m.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Opponent returns the player whose id differs from the given one, or nil.
func (m *MatchState) Opponent(playerID string) *Player {
	for _, p := range m.Players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// FieldCount returns the number of cards the player controls on the field.
func (m *MatchState) FieldCount(ownerID string) int {
	n := 0
	for _, c := range m.Cards {
		if c.OwnerID == ownerID && c.Zone == ZoneField {
			n++
		}
	}
	return n
}

// ZoneCount returns the number of cards in the given zone, any owner.
func (m *MatchState) ZoneCount(zone Zone) int {
	n := 0
	for _, c := range m.Cards {
		if c.Zone == zone {
			n++
		}
	}
	return n
}

// Bump increments the advisory version counter.
func (m *MatchState) Bump() {
	m.MatchVersion++
}

// ClearExpired drops temp statuses whose expire turn has passed.
func (m *MatchState) ClearExpired(turnCount int) {
	for _, c := range m.Cards {
		kept := c.TempStatuses[:0]
		for _, s := range c.TempStatuses {
			if s.ExpireTurn == -1 || s.ExpireTurn > turnCount {
				kept = append(kept, s)
			}
		}
		c.TempStatuses = kept
	}
	for _, p := range m.Players {
		kept := p.TempStatuses[:0]
		for _, s := range p.TempStatuses {
			if s.ExpireTurn == -1 || s.ExpireTurn > turnCount {
				kept = append(kept, s)
			}
		}
		p.TempStatuses = kept
	}
}

// DetachAuras removes revocable-permanent temp statuses the leaver granted
// to other cards. Called when a card leaves the field.
func (m *MatchState) DetachAuras(leaver *Card) {
	for _, c := range m.Cards {
		kept := c.TempStatuses[:0]
		for _, s := range c.TempStatuses {
			if s.SourceID == leaver.ID && s.ExpireTurn == -1 {
				continue
			}
			kept = append(kept, s)
		}
		c.TempStatuses = kept
	}
}

// findResponse returns the queued response for the request id, or nil.
func (m *MatchState) findResponse(requestID string) *ChoiceResponse {
	for i := range m.ChoiceResponses {
		if m.ChoiceResponses[i].RequestID == requestID {
			return &m.ChoiceResponses[i]
		}
	}
	return nil
}

// consumeResponse deletes the response for the request id, if present.
func (m *MatchState) consumeResponse(requestID string) {
	kept := m.ChoiceResponses[:0]
	for _, r := range m.ChoiceResponses {
		if r.RequestID != requestID {
			kept = append(kept, r)
		}
	}
	m.ChoiceResponses = kept
}

// removeRequest deletes the choice request for the request id, if present.
func (m *MatchState) removeRequest(requestID string) {
	kept := m.ChoiceRequests[:0]
	for _, r := range m.ChoiceRequests {
		if r.RequestID != requestID {
			kept = append(kept, r)
		}
	}
	m.ChoiceRequests = kept
}

// hasRequest reports whether a choice request with the id is queued.
func (m *MatchState) hasRequest(requestID string) bool {
	for _, r := range m.ChoiceRequests {
		if r.RequestID == requestID {
			return true
		}
	}
	return false
}

// Status returns the value of a permanent status key on the card.
func (c *Card) Status(key string) (string, bool) {
	for _, s := range c.Statuses {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// SetStatus writes a permanent status, overwriting an existing key.
func (c *Card) SetStatus(key, value string) {
	for i := range c.Statuses {
		if c.Statuses[i].Key == key {
			c.Statuses[i].Value = value
			return
		}
	}
	c.Statuses = append(c.Statuses, Status{Key: key, Value: value})
}

// SetStatusFrom writes a permanent status carrying an attribution source.
func (c *Card) SetStatusFrom(key, value, sourceID string) {
	for i := range c.Statuses {
		if c.Statuses[i].Key == key {
			c.Statuses[i].Value = value
			c.Statuses[i].SourceID = sourceID
			return
		}
	}
	c.Statuses = append(c.Statuses, Status{Key: key, Value: value, SourceID: sourceID})
}

// AddTempStatus appends a temp status entry. An empty sourceID defaults to
// the card itself.
func (c *Card) AddTempStatus(key, value string, expireTurn int, sourceID string) {
	if sourceID == "" {
		sourceID = c.ID
	}
	c.TempStatuses = append(c.TempStatuses, TempStatus{
		Key:        key,
		Value:      value,
		ExpireTurn: expireTurn,
		SourceID:   sourceID,
	})
}

// HasFlag reports whether a status key is present with a truthy value.
func (c *Card) HasFlag(key string) bool {
	v, ok := c.Status(key)
	return ok && v != "" && v != "false" && v != "False" && v != "0"
}

// EffectivePower is the printed power plus every active TempPowerBoost.
func (c *Card) EffectivePower() int {
	total := c.Power
	for _, s := range c.TempStatuses {
		if s.Key == StatusTempPowerBoost {
			total += atoiSafe(s.Value)
		}
	}
	return total
}

// SetStatus writes a permanent player status, overwriting an existing key.
func (p *Player) SetStatus(key, value string) {
	for i := range p.Statuses {
		if p.Statuses[i].Key == key {
			p.Statuses[i].Value = value
			return
		}
	}
	p.Statuses = append(p.Statuses, Status{Key: key, Value: value})
}
