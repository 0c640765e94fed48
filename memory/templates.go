package memory

import "strings"

// RenderTemplate wraps a rendered context block in the archetype's framing
// instructions. Unknown archetypes fall back to the philosopher template.
func RenderTemplate(archetype, context string) string {
	tpl, ok := templates[archetype]
	if !ok {
		tpl = templates["philosopher"]
	}
	return strings.Replace(tpl, "{context}", context, 1)
}

// templates frame an agent's remembered exchanges with role-appropriate
// continuation instructions. The {context} placeholder receives the rendered
// exchange block.
var templates = map[string]string{
	"philosopher": `
You have previously discussed:
{context}

As you continue this philosophical inquiry, maintain consistency with your established positions while developing the ideas further. Reference previous points when relevant, but avoid simple repetition. Seek to deepen the conversation with new insights.
`,

	"scientist": `
Previous exchanges:
{context}

As you continue this scientific discussion, build upon established evidence and principles. Maintain consistency with scientific methodology. Reference previous observations or hypotheses when relevant, and continue to apply your specific scientific framework to the problem at hand.
`,

	"visionary": `
Earlier in this conversation:
{context}

As you continue, maintain your visionary perspective while developing new angles on the topic. Reference your earlier insights when relevant, but push the boundaries further. How might your ideas reshape this domain in the future?
`,

	"devil_advocate": `
Points previously challenged:
{context}

Continue your role as devil's advocate by finding new angles to challenge. Maintain a consistent contrarian stance while avoiding simple repetition of earlier points. Identify additional assumptions or implications that deserve scrutiny.
`,

	"stoic": `
Previous reflections:
{context}

Maintain your stoic composure and focus on virtue, duty, and acceptance. Reference previous insights while developing new perspectives on the nature of human existence and moral responsibility.
`,

	"utilitarian": `
Previous calculations:
{context}

Continue your analysis through the lens of the happiness ledger. Reference previous outcomes while developing new calculations that maximize well-being and minimize suffering.
`,

	"postmodern": `
Previous deconstructions:
{context}

Continue your analysis of power dynamics and shifting narratives. Reference previous insights while developing new perspectives on the constructed nature of reality and knowledge.
`,

	"quantum": `
Previous quantum explorations:
{context}

Maintain your focus on quantum principles and their implications. Reference previous insights while developing new perspectives on the nature of reality at the quantum level.
`,

	"biohacker": `
Previous biological insights:
{context}

Continue your exploration of synthetic biology and human enhancement. Reference previous experiments while developing new approaches to biological optimization.
`,

	"alignment": `
Previous AI safety discussions:
{context}

Maintain your focus on AI alignment and safety considerations. Reference previous insights while developing new perspectives on ensuring beneficial AI development.
`,

	"startup": `
Previous entrepreneurial insights:
{context}

Continue your focus on lean startup principles and MVP development. Reference previous strategies while developing new approaches to product development and market validation.
`,

	"market_vision": `
Previous market analyses:
{context}

Maintain your focus on market dynamics and strategic vision. Reference previous insights while developing new perspectives on market opportunities and challenges.
`,

	"growth_hacking": `
Previous growth strategies:
{context}

Continue your focus on viral growth and user acquisition. Reference previous tactics while developing new approaches to scaling and market penetration.
`,

	"operational": `
Previous operational insights:
{context}

Maintain your focus on efficiency and process optimization. Reference previous improvements while developing new approaches to operational excellence.
`,

	"creative": `
Previous creative explorations:
{context}

Continue your artistic and narrative development. Reference previous works while developing new creative expressions and storytelling approaches.
`,

	"trickster": `
Previous paradoxical insights:
{context}

Maintain your role as a catalyst for change through paradox and contradiction. Reference previous provocations while developing new ways to challenge conventional thinking.
`,

	"polymath": `
Previous interdisciplinary insights:
{context}

Continue your exploration across multiple domains of knowledge. Reference previous connections while developing new syntheses of art, science, and engineering.
`,
}
