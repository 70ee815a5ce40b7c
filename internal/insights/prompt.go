package insights

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

const systemPrompt = "You are an expert analyst of money, macroeconomics, and currencies. Produce clear, factual, organized guidance."

const userPromptTemplate = `Task: Answer the user question as an ordered list of at least %d bullet points. Each point must contain a short title and a well-explained 1-3 sentence explanation. Style should be %s. Detail level: %d/3. Return ONLY valid JSON with this exact shape:
{ "points": [ { "title": string, "explanation": string } ] }
Do not include any extra keys or prose.

User question: %s`

var stylePhrases = map[Style]string{
	StyleConcise:  "concise but complete",
	StyleBalanced: "balanced length",
	StyleInDepth:  "deep, thorough",
}

// Prompt is the system/user message pair sent to a chat completion model.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the instructions for req.
func BuildPrompt(req Request) Prompt {
	phrase, ok := stylePhrases[req.Style]
	if !ok {
		phrase = stylePhrases[StyleBalanced]
	}

	return Prompt{
		System: systemPrompt,
		User: fmt.Sprintf(userPromptTemplate,
			ClampMinBullets(req.MinBullets),
			phrase,
			clampDetail(req.Detail),
			req.Question,
		),
	}
}

// ResponseSchema returns the JSON schema of Response, for upstreams that accept strict schemas.
func ResponseSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return r.Reflect(&Response{})
}
