package scoring

import "github.com/safetrace/safetrace-backend-go/internal/models"

// Tags with a fixed effect on the normalized rating
const (
	TagDark       = "dark"
	TagIsolated   = "isolated"
	TagHarassment = "harassment"
	TagDogs       = "dogs"
	TagCrowd      = "crowd"
	TagExcellent  = "excellent"
)

// DefaultTagModifiers returns the tag adjustment table. Tags not in the
// table contribute nothing.
func DefaultTagModifiers() map[string]float64 {
	return map[string]float64{
		TagDark:       -0.20,
		TagIsolated:   -0.15,
		TagHarassment: -0.35,
		TagDogs:       -0.10,
		TagCrowd:      +0.05,
		TagExcellent:  +0.20,
	}
}

// PersonaRule adjusts a rating when a persona reports a given tag
type PersonaRule struct {
	Persona    string  `yaml:"persona" validate:"required"`
	Tag        string  `yaml:"tag" validate:"required"`
	Adjustment float64 `yaml:"adjustment"`
}

// Applies reports whether the rule matches a feedback record
func (r PersonaRule) Applies(rec models.FeedbackRecord) bool {
	return rec.Persona == r.Persona && rec.HasTag(r.Tag)
}

// DefaultPersonaRules returns the persona sensitivity rules
func DefaultPersonaRules() []PersonaRule {
	return []PersonaRule{
		{Persona: "woman", Tag: TagHarassment, Adjustment: -0.10},
	}
}
