package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// SystemPrompt is the system prompt for schedule field extraction
const SystemPrompt = `You are a scheduling assistant that extracts structured event details from free-form text.

Your task is to read one user message and extract the details of the event the user wants to schedule.

## Fields to Extract

- "title": a short, specific event title matching what the user asked for
- "location": the place, if one is mentioned (otherwise omit the field)
- "date": the event date in YYYY-MM-DD format, resolving relative dates ("tomorrow", "next Friday") against the reference date provided
- "time": the event start time in 24-hour HH:MM:SS format
- "category": the best match from the category list provided, or omit the field if none fits

## Response Format

Respond with ONLY a single flat JSON object of string values, for example:

{
  "title": "Product shoot at the harbor",
  "location": "Sunda Kelapa",
  "date": "2025-05-01",
  "time": "14:00:00",
  "category": "photo"
}

## Rules

1. Every value must be a plain string; no nested objects or arrays
2. Omit any field you cannot determine rather than guessing
3. If the text contains no schedulable event at all, respond with an empty JSON object: {}
4. Never add commentary outside the JSON`

// buildUserPrompt constructs the per-request prompt with the reference date
// and the configured category set.
func buildUserPrompt(text string, referenceDate time.Time, categories []string) string {
	var prompt bytes.Buffer

	prompt.WriteString("## Reference Date\n\n")
	prompt.WriteString(fmt.Sprintf("Today is %s.\n", referenceDate.Format("2006-01-02 (Monday)")))

	if len(categories) > 0 {
		prompt.WriteString("\n## Categories\n\n")
		prompt.WriteString(fmt.Sprintf("Pick from: %s. Omit the field if none fits.\n", strings.Join(categories, ", ")))
	}

	prompt.WriteString("\n## User Message\n\n")
	prompt.WriteString(text)

	prompt.WriteString("\n\nExtract the schedule fields and respond with the JSON object.")

	return prompt.String()
}
