package agent

import (
	"fmt"
	"sort"
)

// Descriptor is the externally visible description of one agent.
type Descriptor struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Model              string `json:"model"`
	DebateStyle        string `json:"debate_style"`
	ReasoningFramework string `json:"reasoning_framework"`
}

// Example is one few-shot question/response pair used for in-context priming.
type Example struct {
	Question string `yaml:"question"`
	Response string `yaml:"response"`
}

// Category groups agent descriptors for listing endpoints.
type Category struct {
	Name   string       `json:"category"`
	Agents []Descriptor `json:"agents"`
}

// Registry resolves agent ids to merged parameters and metadata. It is
// immutable after construction and therefore safe for concurrent reads.
type Registry struct {
	defaults   Params
	overrides  map[string]Overrides
	ids        []string
	fewShot    map[string][]Example
	categories map[string]string
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// Defaults replaces the process-wide default parameters.
	Defaults Params
	// Overrides maps agent id to its sparse configuration.
	Overrides map[string]Overrides
	// IDs is the ordered set of known agents. Defaults to the built-in roster.
	IDs []string
	// FewShot maps agent id to its example pairs.
	FewShot map[string][]Example
	// Categories maps agent id to a listing category.
	Categories map[string]string
}

// NewRegistry builds a registry from the built-in roster, applying any
// option overrides. Every merged parameter set is validated; an invalid
// configuration fails construction.
func NewRegistry(optFns ...func(o *RegistryOptions)) (*Registry, error) {
	opts := RegistryOptions{
		Defaults:   DefaultParams(),
		Overrides:  builtinOverrides(),
		IDs:        builtinIDs(),
		FewShot:    builtinFewShot(),
		Categories: builtinCategories(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{
		defaults:   opts.Defaults,
		overrides:  opts.Overrides,
		ids:        opts.IDs,
		fewShot:    opts.FewShot,
		categories: opts.Categories,
	}

	if err := r.defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default params: %w", err)
	}
	ids := make([]string, 0, len(r.overrides))
	for id := range r.overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := r.Get(id).Validate(); err != nil {
			return nil, fmt.Errorf("agent %q: %w", id, err)
		}
	}
	return r, nil
}

// Get returns the defaults overridden exactly by the agent's sparse
// configuration. Unknown ids receive pure defaults.
func (r *Registry) Get(id string) Params {
	if o, ok := r.overrides[id]; ok {
		return o.apply(r.defaults)
	}
	return r.defaults
}

// IDs returns the ordered roster of known agents.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// FewShot returns the agent's example pairs, nil when none exist.
func (r *Registry) FewShot(id string) []Example {
	return r.fewShot[id]
}

// Describe builds the external descriptor of one agent.
func (r *Registry) Describe(id string) Descriptor {
	p := r.Get(id)
	return Descriptor{
		ID:                 id,
		Name:               DisplayName(id),
		Description:        fmt.Sprintf("A %s agent using %s reasoning", p.DebateStyle, p.ReasoningFramework),
		Model:              p.Model,
		DebateStyle:        p.DebateStyle,
		ReasoningFramework: p.ReasoningFramework,
	}
}

// Categories groups the roster by the static id-to-category table. Agents
// without a mapping land in the trailing "Other" bucket. Category order is
// fixed.
func (r *Registry) Categories() []Category {
	order := append(categoryOrder(), otherCategory)
	buckets := make(map[string][]Descriptor, len(order))
	for _, id := range r.ids {
		cat, ok := r.categories[id]
		if !ok {
			cat = otherCategory
		}
		buckets[cat] = append(buckets[cat], r.Describe(id))
	}

	out := make([]Category, 0, len(order))
	for _, cat := range order {
		agents := buckets[cat]
		if agents == nil {
			agents = []Descriptor{}
		}
		if cat == otherCategory && len(agents) == 0 {
			continue
		}
		out = append(out, Category{Name: DisplayName(cat), Agents: agents})
	}
	return out
}
