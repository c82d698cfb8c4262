package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Metric names a numeric property of the match a condition compares
// against, always evaluated relative to the condition owner.
type Metric string

const (
	MetricSelfFieldCount   Metric = "SelfFieldCount"
	MetricEnemyFieldCount  Metric = "EnemyFieldCount"
	MetricEnvironmentCount Metric = "EnvironmentCount"
	MetricTurnCount        Metric = "TurnCount"
	// MetricTurnAndSelfField is the compound "it is my turn AND my field
	// count equals N" predicate.
	MetricTurnAndSelfField Metric = "PlayerTurnAndSelfFieldCount"
)

// Comparator is a numeric comparison operator.
type Comparator string

const (
	CmpEq Comparator = "=="
	CmpGE Comparator = ">="
	CmpLE Comparator = "<="
	CmpGT Comparator = ">"
	CmpLT Comparator = "<"
)

// Condition is a small typed predicate parsed once at template load time
// from its string form (e.g. "EnemyFieldCount>=2") instead of being
// re-parsed per evaluation.
type Condition struct {
	Metric  Metric
	Op      Comparator
	Operand int

	raw string
}

var conditionPattern = regexp.MustCompile(`^(\w+)(==|>=|<=|>|<|=)(-?\d+)$`)

// ParseCondition builds the condition AST from its expression string.
// An empty expression parses to nil, which always evaluates true.
func ParseCondition(expr string) (*Condition, error) {
	if expr == "" {
		return nil, nil
	}
	m := conditionPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("malformed condition expression %q", expr)
	}
	metric := Metric(m[1])
	switch metric {
	case MetricSelfFieldCount, MetricEnemyFieldCount, MetricEnvironmentCount,
		MetricTurnCount, MetricTurnAndSelfField:
	default:
		return nil, fmt.Errorf("unknown condition metric %q", m[1])
	}
	op := Comparator(m[2])
	if op == "=" {
		op = CmpEq
	}
	operand, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("condition operand in %q: %w", expr, err)
	}
	return &Condition{Metric: metric, Op: op, Operand: operand, raw: expr}, nil
}

// Eval evaluates the condition for the given owner against current state.
// A nil condition is vacuously true.
func (c *Condition) Eval(ownerID string, m *MatchState) bool {
	if c == nil {
		return true
	}

	var value int
	switch c.Metric {
	case MetricSelfFieldCount:
		value = m.FieldCount(ownerID)
	case MetricEnemyFieldCount:
		enemy := m.Opponent(ownerID)
		if enemy == nil {
			return false
		}
		value = m.FieldCount(enemy.ID)
	case MetricEnvironmentCount:
		value = m.ZoneCount(ZoneEnvironment)
	case MetricTurnCount:
		value = m.TurnCount
	case MetricTurnAndSelfField:
		if m.TurnPlayerID != ownerID {
			return false
		}
		value = m.FieldCount(ownerID)
	default:
		return false
	}

	switch c.Op {
	case CmpEq:
		return value == c.Operand
	case CmpGE:
		return value >= c.Operand
	case CmpLE:
		return value <= c.Operand
	case CmpGT:
		return value > c.Operand
	case CmpLT:
		return value < c.Operand
	}
	return false
}

// String returns the original expression form.
func (c *Condition) String() string {
	if c == nil {
		return ""
	}
	if c.raw != "" {
		return c.raw
	}
	return fmt.Sprintf("%s%s%d", c.Metric, c.Op, c.Operand)
}

// MarshalJSON keeps the wire format as the expression string.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the expression string wire form.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var expr string
	if err := json.Unmarshal(data, &expr); err != nil {
		return err
	}
	parsed, err := ParseCondition(expr)
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("empty condition expression")
	}
	*c = *parsed
	return nil
}

// MarshalYAML mirrors the JSON expression-string wire form for the
// catalog files.
func (c *Condition) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML parses the expression string form.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	var expr string
	if err := value.Decode(&expr); err != nil {
		return err
	}
	parsed, err := ParseCondition(expr)
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("empty condition expression")
	}
	*c = *parsed
	return nil
}
