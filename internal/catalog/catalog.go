// Package catalog loads the immutable card and leader master data and
// serves it to the engine.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/battlesync/battlesync-server/internal/engine"
)

// Source is the in-memory master catalog, loaded once at startup from
// YAML files. It satisfies the engine's template source contracts.
type Source struct {
	cards   map[string]engine.CardTemplate
	leaders map[string]*engine.LeaderTemplate
	logger  *zap.Logger
}

type cardsFile struct {
	Cards []engine.CardTemplate `yaml:"cards"`
}

type leadersFile struct {
	Leaders []engine.LeaderTemplate `yaml:"leaders"`
}

// Load reads the card and leader files. An empty leaders path is allowed;
// matches then simply run without leader passives.
func Load(cardsPath, leadersPath string, logger *zap.Logger) (*Source, error) {
	s := &Source{
		cards:   make(map[string]engine.CardTemplate),
		leaders: make(map[string]*engine.LeaderTemplate),
		logger:  logger,
	}

	data, err := os.ReadFile(cardsPath)
	if err != nil {
		return nil, fmt.Errorf("read card catalog %s: %w", cardsPath, err)
	}
	var cf cardsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse card catalog %s: %w", cardsPath, err)
	}
	for _, c := range cf.Cards {
		if c.ID == "" {
			return nil, fmt.Errorf("card catalog %s: entry without id", cardsPath)
		}
		s.cards[c.ID] = c
	}

	if leadersPath != "" {
		data, err = os.ReadFile(leadersPath)
		if err != nil {
			return nil, fmt.Errorf("read leader catalog %s: %w", leadersPath, err)
		}
		var lf leadersFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("parse leader catalog %s: %w", leadersPath, err)
		}
		for i := range lf.Leaders {
			l := lf.Leaders[i]
			if l.ID == "" {
				return nil, fmt.Errorf("leader catalog %s: entry without id", leadersPath)
			}
			s.leaders[l.ID] = &l
		}
	}

	logger.Info("catalog loaded",
		zap.Int("cards", len(s.cards)),
		zap.Int("leaders", len(s.leaders)),
	)
	return s, nil
}

// CardTemplates returns the templates for the given ids. Missing ids are
// absent from the result.
func (s *Source) CardTemplates(ctx context.Context, ids []string) (map[string]engine.CardTemplate, error) {
	out := make(map[string]engine.CardTemplate, len(ids))
	for _, id := range ids {
		if tmpl, ok := s.cards[id]; ok {
			out[id] = tmpl
		}
	}
	return out, nil
}

// Leader returns the leader template for the id, or nil when unknown.
func (s *Source) Leader(ctx context.Context, id string) (*engine.LeaderTemplate, error) {
	return s.leaders[id], nil
}

// Card returns a single card template.
func (s *Source) Card(id string) (engine.CardTemplate, bool) {
	tmpl, ok := s.cards[id]
	return tmpl, ok
}

// Size reports the number of loaded card templates.
func (s *Source) Size() int {
	return len(s.cards)
}

// CardIDs returns every loaded card template id in sorted order.
func (s *Source) CardIDs() []string {
	ids := make([]string, 0, len(s.cards))
	for id := range s.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LeaderIDs returns every loaded leader id in sorted order.
func (s *Source) LeaderIDs() []string {
	ids := make([]string, 0, len(s.leaders))
	for id := range s.leaders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
