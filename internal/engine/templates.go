package engine

import "context"

// CardTemplate is the immutable master-catalog definition a card instance
// is stamped from.
type CardTemplate struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	CardType        string   `json:"cardType" yaml:"cardType"`
	Power           int      `json:"power" yaml:"power"`
	Damage          int      `json:"damage" yaml:"damage"`
	Level           int      `json:"level" yaml:"level"`
	AvailableColors []string `json:"availableColors" yaml:"availableColors"`
	IsTO            bool     `json:"isTO" yaml:"isTO"`
	TOEffect        *Effect  `json:"toEffect,omitempty" yaml:"toEffect,omitempty"`
	Effects         []Effect `json:"effectList" yaml:"effectList"`
}

// EvolutionStage is one stage of a leader's growth, holding the passive
// continuous effects active while the stage applies.
type EvolutionStage struct {
	Stage          int      `json:"stage" yaml:"stage"`
	PassiveEffects []Effect `json:"passiveEffects" yaml:"passiveEffects"`
}

// LeaderTemplate is the master-catalog definition of a player leader.
type LeaderTemplate struct {
	ID              string           `json:"leaderId" yaml:"leaderId"`
	Name            string           `json:"name" yaml:"name"`
	EvolutionStages []EvolutionStage `json:"evolutionStages" yaml:"evolutionStages"`
}

// TemplateSource supplies card templates from the master catalog.
type TemplateSource interface {
	// CardTemplates performs a batch lookup by template id. Missing ids
	// are simply absent from the result map.
	CardTemplates(ctx context.Context, ids []string) (map[string]CardTemplate, error)
}

// LeaderSource supplies leader templates. Callers are expected to hand the
// engine a read-through cache so repeated lookups within one resolution
// pass stay cheap.
type LeaderSource interface {
	Leader(ctx context.Context, id string) (*LeaderTemplate, error)
}

// defaultColors is used when a template does not restrict its color costs.
var defaultColors = []string{"Red", "Blue", "Green", "Yellow", "Purple"}
