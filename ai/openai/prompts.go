package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docent/ai"
)

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "document_type": {
      "type": "string"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "summary": {
      "type": "string"
    },
    "language": {
      "type": "string"
    },
    "entities": {
      "type": "array",
      "items": {
        "type": "string"
      }
    },
    "dates": {
      "type": "array",
      "items": {
        "type": "string"
      }
    }
  },
  "required": ["document_type", "confidence", "summary", "language", "entities", "dates"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Classify the given document excerpt and return the classification as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- document_type must match exactly one of the listed values: %s.
- confidence is a number from 0.0 (pure guess) to 1.0 (certain). Rate based on how clearly the excerpt signals its type.
- summary is one or two sentences describing what the document is about. Do not copy text verbatim.
- language is the ISO 639-1 code of the document's primary language, for example "en" or "de". Use "unknown" if you cannot tell.
- entities lists the organizations, people, and products the document names. Include only names that appear in the excerpt. Do not hallucinate.
- dates lists dates the document mentions, kept in the form they appear in the text.
- If the excerpt names no entities or dates, return an empty array for that field.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (contract):
Input: "MASTER SERVICES AGREEMENT. This Agreement is entered into as of January 15, 2024 between Acme Corporation and Bolt Industries LLC. 1. Services. Provider shall perform the services described in each Statement of Work."
Output:
{
  "document_type": "contract",
  "confidence": 0.95,
  "summary": "A master services agreement between Acme Corporation and Bolt Industries LLC governing services performed under statements of work.",
  "language": "en",
  "entities": ["Acme Corporation", "Bolt Industries LLC"],
  "dates": ["January 15, 2024"]
}

Example (invoice):
Input: "INVOICE #2041. Bill to: Meridian Health. Due date: 2024-03-01. Consulting services, 40 hours @ $150/hr. Total due: $6,000.00."
Output:
{
  "document_type": "invoice",
  "confidence": 0.9,
  "summary": "An invoice billing Meridian Health $6,000 for 40 hours of consulting services.",
  "language": "en",
  "entities": ["Meridian Health"],
  "dates": ["2024-03-01"]
}

Example (short fragment, low signal):
Input: "see attached for the updated numbers, let me know if anything looks off"
Output:
{
  "document_type": "memo",
  "confidence": 0.4,
  "summary": "A brief note asking the recipient to review attached updated figures.",
  "language": "en",
  "entities": [],
  "dates": []
}`

// buildClassificationPrompt creates the system prompt with document types embedded.
func buildClassificationPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate,
		classificationResponseSchema,
		strings.Join(ai.DocumentTypes, ", "))
}
