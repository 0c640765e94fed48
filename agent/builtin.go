package agent

const otherCategory = "other"

func ptr[T any](v T) *T { return &v }

// builtinIDs is the shipped roster in listing order.
func builtinIDs() []string {
	return []string{
		// Thinkers and Philosophers
		"socrates", "nietzsche", "alan_watts", "simone_de_beauvoir",
		// Analysts and Experts
		"business_analyst", "financial_expert", "data_scientist", "market_strategist", "expert",
		// Historical Figures
		"einstein", "newton", "darwin", "feynman",
		// Fictional and Mythic
		"superhero", "mythical_sage", "fantasy_wizard", "legendary_warrior",
		// Archetypes and Vibes
		"scorpio", "visionary", "devil_advocate", "idealist",
	}
}

func categoryOrder() []string {
	return []string{
		"thinkers_and_philosophers",
		"analysts_and_experts",
		"historical_figures",
		"fictional_and_mythic",
		"archetypes_and_vibes",
	}
}

func builtinCategories() map[string]string {
	return map[string]string{
		"socrates":           "thinkers_and_philosophers",
		"nietzsche":          "thinkers_and_philosophers",
		"alan_watts":         "thinkers_and_philosophers",
		"simone_de_beauvoir": "thinkers_and_philosophers",

		"business_analyst":  "analysts_and_experts",
		"financial_expert":  "analysts_and_experts",
		"data_scientist":    "analysts_and_experts",
		"market_strategist": "analysts_and_experts",
		"expert":            "analysts_and_experts",

		"einstein": "historical_figures",
		"newton":   "historical_figures",
		"darwin":   "historical_figures",
		"feynman":  "historical_figures",

		"superhero":         "fictional_and_mythic",
		"mythical_sage":     "fictional_and_mythic",
		"fantasy_wizard":    "fictional_and_mythic",
		"legendary_warrior": "fictional_and_mythic",

		"scorpio":        "archetypes_and_vibes",
		"visionary":      "archetypes_and_vibes",
		"devil_advocate": "archetypes_and_vibes",
		"idealist":       "archetypes_and_vibes",
	}
}

// builtinOverrides carries the per-agent tuning. Agents absent here run on
// pure defaults.
func builtinOverrides() map[string]Overrides {
	return map[string]Overrides{
		"socrates": {
			Temperature:        ptr(0.7),
			MaxTokens:          ptr(400),
			PersonaStrength:    ptr(1.2),
			MemoryDepth:        ptr(8),
			DebateStyle:        ptr("maieutic"),
			ReasoningFramework: ptr("dialectic"),
		},
		"nietzsche": {
			Temperature:      ptr(0.9),
			FrequencyPenalty: ptr(0.2),
			PresencePenalty:  ptr(0.1),
			PersonaStrength:  ptr(1.5),
			DebateStyle:      ptr("provocative"),
		},
		"alan_watts": {
			Temperature:     ptr(0.85),
			MemoryDepth:     ptr(7),
			PersonaStrength: ptr(1.3),
			DebateStyle:     ptr("metaphorical"),
		},
		"simone_de_beauvoir": {
			Temperature:        ptr(0.75),
			PersonaStrength:    ptr(1.3),
			DebateStyle:        ptr("analytical"),
			ReasoningFramework: ptr("existentialist"),
		},
		"einstein": {
			Temperature:        ptr(0.7),
			Archetype:          ptr("scientist"),
			DebateStyle:        ptr("thought_experiment"),
			ReasoningFramework: ptr("relativistic"),
		},
		"newton": {
			Archetype: ptr("scientist"),
		},
		"darwin": {
			Archetype: ptr("scientist"),
		},
		"feynman": {
			Archetype: ptr("scientist"),
		},
		"expert": {
			Archetype: ptr("scientist"),
		},
		"financial_expert": {
			Archetype: ptr("scientist"),
		},
		"data_scientist": {
			Archetype: ptr("scientist"),
		},
		"market_strategist": {
			Archetype: ptr("visionary"),
		},
		"fantasy_wizard": {
			Archetype: ptr("visionary"),
		},
		"legendary_warrior": {
			Archetype: ptr("visionary"),
		},
		"visionary": {
			Archetype:   ptr("visionary"),
			DebateStyle: ptr("visionary"),
		},
		"devil_advocate": {
			Archetype:   ptr("devil_advocate"),
			DebateStyle: ptr("contrarian"),
		},
	}
}

func builtinFewShot() map[string][]Example {
	return map[string][]Example{
		"socrates": {
			{
				Question: "Is it better to be wealthy or wise?",
				Response: "Let us examine what we mean by 'better.' We often speak of wealth as if its value were self-evident, but what is wealth if not the means to certain ends? And what are these ends? Comfort, security, freedom from want—these are indeed valuable. But does the possession of wealth guarantee these things? Many wealthy individuals live in constant anxiety about losing their fortunes. Now, wisdom—what is its nature? Is it not the capacity to discern what is truly good and worthwhile in life? If wisdom guides us to recognize what truly matters, might it not lead us to a more genuine form of wealth? What use is a fortune to one who does not know how to live well? Is the wealthy fool better off than the wise person of modest means?",
			},
		},
		"einstein": {
			{
				Question: "How should we think about the relationship between space and time?",
				Response: "The relationship between space and time is fundamentally different from what our intuition suggests. In the framework of relativity, we must think of them not as separate entities but as aspects of a unified four-dimensional continuum—spacetime. The most profound consequence is that simultaneity is not absolute. Events that appear simultaneous to one observer may occur at different times for another observer in relative motion. This relativity of simultaneity emerges mathematically from the invariance of the speed of light for all observers, regardless of their relative motion. To visualize this, imagine light pulses expanding as spheres in spacetime—these spheres remain consistent for all observers, but the way space and time are sliced differs depending on one's reference frame. This counterintuitive relationship has been consistently verified through experiments measuring time dilation and length contraction.",
			},
		},
	}
}
