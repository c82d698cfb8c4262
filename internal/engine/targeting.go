package engine

import (
	"regexp"
	"strings"
)

// Target specifier vocabulary. Unknown specifiers resolve to an empty
// pool; callers treat zero targets as a valid no-op.
const (
	TargetSelf       = "Self"
	TargetPlayerDeck = "PlayerDeckTop"
	TargetEitherHand = "EitherHand"

	TargetPlayerLeader = "PlayerLeader"
	TargetEnemyLeader  = "EnemyLeader"
)

// zoneSpecifiers maps every Player/Enemy/All zone specifier triple to its
// zone and ownership scope.
var zoneSpecifiers = map[string]struct {
	zone  Zone
	scope string // "player", "enemy", "all"
}{
	"PlayerField":       {ZoneField, "player"},
	"EnemyField":        {ZoneField, "enemy"},
	"AllField":          {ZoneField, "all"},
	"PlayerHand":        {ZoneHand, "player"},
	"EnemyHand":         {ZoneHand, "enemy"},
	"PlayerEnvironment": {ZoneEnvironment, "player"},
	"EnemyEnvironment":  {ZoneEnvironment, "enemy"},
	"Environment":       {ZoneEnvironment, "all"},
	"PlayerCounter":     {ZoneCounter, "player"},
	"EnemyCounter":      {ZoneCounter, "enemy"},
	"Counter":           {ZoneCounter, "all"},
	"PlayerGraveyard":   {ZoneGraveyard, "player"},
	"EnemyGraveyard":    {ZoneGraveyard, "enemy"},
	"AllGraveyard":      {ZoneGraveyard, "all"},
	"PlayerExileZone":   {ZoneExile, "player"},
	"EnemyExileZone":    {ZoneExile, "enemy"},
	"AllExileZone":      {ZoneExile, "all"},
	"PlayerDamageZone":  {ZoneDamage, "player"},
	"EnemyDamageZone":   {ZoneDamage, "enemy"},
	"AllDamageZone":     {ZoneDamage, "all"},
}

// ResolveTargets produces the ordered card set an action applies to.
// Priority order: a satisfied selectionKey response wins over everything
// and is consumed exactly once; an explicit selectionKey with no queued
// response resolves to nothing, never the whole pool; Draw targets the
// acting card; otherwise the target specifier selects a pool, optionally
// narrowed by the action's filter expression. A sourceKey stores the
// resolved ids for later reuse.
func (e *Engine) ResolveTargets(source *Card, act Action, m *MatchState) []*Card {
	selKey := act.SelectionKey
	if selKey == "" {
		selKey = act.SourceKey
	}
	if selKey != "" {
		if resp := m.findResponse(selKey); resp != nil {
			ids := resp.SelectedIDs
			if len(ids) == 0 && resp.SelectedValue != "" {
				ids = []string{resp.SelectedValue}
			}
			if len(ids) > 0 {
				var targets []*Card
				for _, c := range m.Cards {
					if containsString(ids, c.ID) {
						targets = append(targets, c)
					}
				}
				m.consumeResponse(selKey)
				return targets
			}
		}
		if act.SelectionKey != "" {
			// The action asked for a selection and none is queued (or it
			// was already consumed); that is zero targets, not a fallback
			// to the specifier pool.
			return nil
		}
	}

	if act.Type == ActionDraw {
		return []*Card{source}
	}

	return e.autoTargets(source, act, m)
}

// autoTargets is the specifier-driven part of target resolution: pool by
// specifier, narrowed by filter, persisted under sourceKey when asked.
// Handlers that interpret selectionKey themselves (Select, Transform) call
// this directly so the resolver's consume-priority rule cannot swallow
// their response.
func (e *Engine) autoTargets(source *Card, act Action, m *MatchState) []*Card {
	pool := e.specifierPool(source, act, m)

	if act.TargetFilter != "" {
		pool = e.applyTargetFilter(pool, act.TargetFilter)
	}

	if act.SourceKey != "" {
		if m.Selections == nil {
			m.Selections = make(map[string][]string)
		}
		ids := make([]string, len(pool))
		for i, c := range pool {
			ids[i] = c.ID
		}
		m.Selections[act.SourceKey] = ids
	}

	return pool
}

// specifierPool dispatches on the fixed target specifier vocabulary.
func (e *Engine) specifierPool(source *Card, act Action, m *MatchState) []*Card {
	owner := source.OwnerID

	switch act.Target {
	case TargetSelf:
		return []*Card{source}
	case TargetPlayerDeck:
		limit := act.valueOr(1)
		var pool []*Card
		for _, c := range m.Cards {
			if c.OwnerID == owner && c.Zone == ZoneDeck {
				pool = append(pool, c)
				if len(pool) == limit {
					break
				}
			}
		}
		return pool
	case TargetEitherHand:
		selected := ""
		if m.Selections != nil {
			if ids, ok := m.Selections["selectedOwner"]; ok && len(ids) > 0 {
				selected = ids[0]
			}
		}
		// Without a stored owner selection the enemy hand is the default.
		handOwner := ""
		if enemy := m.Opponent(owner); enemy != nil {
			handOwner = enemy.ID
		}
		if selected == "Player" {
			handOwner = owner
		}
		return m.zonePool(ZoneHand, handOwner, "owner")
	}

	if spec, ok := zoneSpecifiers[act.Target]; ok {
		switch spec.scope {
		case "player":
			return m.zonePool(spec.zone, owner, "owner")
		case "enemy":
			return m.zonePool(spec.zone, owner, "enemy")
		default:
			return m.zonePool(spec.zone, "", "all")
		}
	}

	return nil
}

func (m *MatchState) zonePool(zone Zone, ownerID, scope string) []*Card {
	var pool []*Card
	for _, c := range m.Cards {
		if c.Zone != zone {
			continue
		}
		switch scope {
		case "owner":
			if c.OwnerID != ownerID {
				continue
			}
		case "enemy":
			if c.OwnerID == ownerID {
				continue
			}
		}
		pool = append(pool, c)
	}
	return pool
}

var filterPattern = regexp.MustCompile(`^(\w+)(<=|>=|=)(.+)$`)

// applyTargetFilter narrows a pool by a key<=N / key>=N / key=value
// expression over derived card properties. List-typed properties use
// membership for equality. A malformed expression leaves the pool as-is.
func (e *Engine) applyTargetFilter(pool []*Card, filter string) []*Card {
	match := filterPattern.FindStringSubmatch(filter)
	if match == nil {
		return pool
	}
	key, op, rhs := match[1], match[2], strings.TrimSpace(match[3])

	var out []*Card
	for _, c := range pool {
		if cardFilterMatch(c, key, op, rhs) {
			out = append(out, c)
		}
	}
	return out
}

func cardFilterMatch(c *Card, key, op, rhs string) bool {
	switch key {
	case "power":
		return numericMatch(c.EffectivePower(), op, rhs)
	case "cost", "level":
		return numericMatch(c.Level, op, rhs)
	case "damage":
		return numericMatch(c.Damage, op, rhs)
	case "color":
		if op != "=" {
			return false
		}
		// Membership: a card matches a color it was assigned or any
		// color cost it carries.
		if c.AssignedColor == rhs {
			return true
		}
		_, ok := c.Status("ColorCost_" + rhs)
		return ok
	case "zone":
		return op == "=" && string(c.Zone) == rhs
	default:
		val, ok := c.Status(key)
		if !ok {
			return false
		}
		if op == "=" {
			return val == rhs
		}
		return numericMatch(atoiSafe(val), op, rhs)
	}
}

func numericMatch(value int, op, rhs string) bool {
	n := atoiSafe(rhs)
	switch op {
	case "<=":
		return value <= n
	case ">=":
		return value >= n
	case "=":
		return value == n
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
