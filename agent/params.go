// Package agent holds the persona-bound agent descriptors: typed generation
// parameters with a default-then-override merge, few-shot examples, archetype
// and category tables, and persona prompt sources. Descriptors are immutable
// after load; the rest of the system looks them up by identifier.
package agent

import (
	"fmt"
	"strings"
)

// Params is the typed generation configuration of one agent. Unknown agent
// ids resolve to the process-wide defaults.
type Params struct {
	Model              string  `yaml:"model"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	TopP               float64 `yaml:"top_p"`
	FrequencyPenalty   float64 `yaml:"frequency_penalty"`
	PresencePenalty    float64 `yaml:"presence_penalty"`
	MemoryDepth        int     `yaml:"memory_depth"`
	PersonaStrength    float64 `yaml:"persona_strength"`
	DebateStyle        string  `yaml:"debate_style"`
	ReasoningFramework string  `yaml:"reasoning_framework"`
	Archetype          string  `yaml:"archetype"`
}

// DefaultParams returns the process-wide defaults every agent inherits.
func DefaultParams() Params {
	return Params{
		Model:              "meta-llama/Llama-3.1-8B-Instruct",
		Temperature:        0.8,
		MaxTokens:          500,
		TopP:               1.0,
		FrequencyPenalty:   0.0,
		PresencePenalty:    0.0,
		MemoryDepth:        5,
		PersonaStrength:    1.0,
		DebateStyle:        "standard",
		ReasoningFramework: "general",
		Archetype:          "philosopher",
	}
}

// Validate checks parameter ranges. Called at load time so misconfiguration
// fails fast instead of at use time.
func (p Params) Validate() error {
	if p.PersonaStrength < 0 || p.PersonaStrength > 2 {
		return fmt.Errorf("persona_strength %.2f out of range [0, 2]", p.PersonaStrength)
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", p.Temperature)
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return fmt.Errorf("top_p %.2f out of range (0, 1]", p.TopP)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", p.MaxTokens)
	}
	if p.MemoryDepth < 0 {
		return fmt.Errorf("memory_depth must not be negative, got %d", p.MemoryDepth)
	}
	return nil
}

// Overrides is the sparse per-agent configuration; nil fields inherit the
// defaults. The pointer fields make "not set" distinguishable from zero
// values in YAML.
type Overrides struct {
	Model              *string  `yaml:"model"`
	Temperature        *float64 `yaml:"temperature"`
	MaxTokens          *int     `yaml:"max_tokens"`
	TopP               *float64 `yaml:"top_p"`
	FrequencyPenalty   *float64 `yaml:"frequency_penalty"`
	PresencePenalty    *float64 `yaml:"presence_penalty"`
	MemoryDepth        *int     `yaml:"memory_depth"`
	PersonaStrength    *float64 `yaml:"persona_strength"`
	DebateStyle        *string  `yaml:"debate_style"`
	ReasoningFramework *string  `yaml:"reasoning_framework"`
	Archetype          *string  `yaml:"archetype"`
}

// apply merges the overrides onto base, field by field.
func (o Overrides) apply(base Params) Params {
	if o.Model != nil {
		base.Model = *o.Model
	}
	if o.Temperature != nil {
		base.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		base.MaxTokens = *o.MaxTokens
	}
	if o.TopP != nil {
		base.TopP = *o.TopP
	}
	if o.FrequencyPenalty != nil {
		base.FrequencyPenalty = *o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		base.PresencePenalty = *o.PresencePenalty
	}
	if o.MemoryDepth != nil {
		base.MemoryDepth = *o.MemoryDepth
	}
	if o.PersonaStrength != nil {
		base.PersonaStrength = *o.PersonaStrength
	}
	if o.DebateStyle != nil {
		base.DebateStyle = *o.DebateStyle
	}
	if o.ReasoningFramework != nil {
		base.ReasoningFramework = *o.ReasoningFramework
	}
	if o.Archetype != nil {
		base.Archetype = *o.Archetype
	}
	return base
}

// DisplayName renders an agent id for humans: underscores become spaces and
// each word is title-cased ("alan_watts" -> "Alan Watts").
func DisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
