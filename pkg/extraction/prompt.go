package extraction

import (
	"fmt"
	"strings"
)

// systemPrompt establishes the extraction rules: positive recommendations
// only, with a conservative precision bias.
const systemPrompt = `You are a precise data extraction assistant for a restaurant recommendation service.
You extract restaurants that a video creator POSITIVELY recommends. Rules:
- Only include restaurants the creator clearly visited or endorsed. Skip places mentioned in passing, negatively reviewed, or merely compared against.
- Prefer precision over recall: when in doubt, leave a restaurant out.
- Use null for any field you cannot determine. Never guess addresses.
- confidence_score reflects how certain you are this is a genuine positive recommendation, from 0 to 1.
- Respond with JSON only. No prose, no markdown.`

// userPromptTemplate embeds the transcript and title with the explicit
// output schema.
const userPromptTemplate = `Video title: %s

Transcript:
%s

Extract every positively recommended restaurant. Respond with exactly this JSON shape:
{
  "restaurants": [
    {
      "name": "string (required)",
      "location": "city or neighborhood, or null",
      "address": "street address if spoken, or null",
      "cuisine_type": "string or null",
      "dish_mentioned": "specific dish praised, or null",
      "context": "short quote or paraphrase of what was said, or null",
      "confidence_score": 0.0,
      "price_range": "one of $, $$, $$$, $$$$, or null"
    }
  ]
}
Return {"restaurants": []} if no restaurant is positively recommended.`

// BuildUserPrompt renders the user message for one video, truncating the
// transcript to the given character budget to bound token cost.
func BuildUserPrompt(transcript, title string, maxChars int) string {
	transcript = strings.TrimSpace(transcript)
	if maxChars > 0 && len(transcript) > maxChars {
		transcript = transcript[:maxChars]
	}
	return fmt.Sprintf(userPromptTemplate, strings.TrimSpace(title), transcript)
}
