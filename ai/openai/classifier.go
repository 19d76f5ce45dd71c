// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxClassifierSampleChars bounds the text sent for classification.
// Longer samples add cost without improving type accuracy.
const maxClassifierSampleChars = 4000

// Classifier implements ai.Classifier using OpenAI-compatible chat APIs.
type Classifier struct {
	client llms.Model
	logger *slog.Logger
}

// classification is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type classification struct {
	DocumentType string   `json:"document_type"`
	Confidence   float64  `json:"confidence"`
	Summary      string   `json:"summary"`
	Language     string   `json:"language"`
	Entities     []string `json:"entities"`
	Dates        []string `json:"dates"`
}

// newClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newClassifier(config *ai.Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/classification
	// The default token "none" satisfies local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewClassifier creates a new classifier using the provided configuration.
//
// Returns ai.Classifier interface to enforce abstraction.
func NewClassifier(config *ai.Config) (ai.Classifier, error) {
	return newClassifier(config)
}

// ClassifyDocument classifies a document from a sample of its text using an LLM.
// The returned DocumentType is always one of ai.DocumentTypes.
func (c *Classifier) ClassifyDocument(ctx context.Context, sample string) (*ai.DocumentClassification, error) {
	sample = truncateRunes(sample, maxClassifierSampleChars)

	// Build the system and user prompts
	systemPrompt := buildClassificationPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(sample),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result classification
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = errors.New("classifier returned no choices")
			c.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Normalize the document type into the known taxonomy
	docType := strings.ToLower(strings.TrimSpace(result.DocumentType))
	docType = strings.ReplaceAll(docType, " ", "_")
	if !slices.Contains(ai.DocumentTypes, docType) {
		c.logger.Debug("model proposed unknown document type", "type", result.DocumentType)
		docType = "other"
	}

	confidence := result.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	language := strings.TrimSpace(result.Language)
	if language == "" {
		language = "unknown"
	}

	entities := result.Entities
	if entities == nil {
		entities = []string{}
	}
	dates := result.Dates
	if dates == nil {
		dates = []string{}
	}

	c.logger.Debug("classified document",
		"type", docType,
		"confidence", confidence,
		"language", language)

	return &ai.DocumentClassification{
		DocumentType: docType,
		Confidence:   confidence,
		Summary:      strings.TrimSpace(result.Summary),
		Language:     language,
		Entities:     entities,
		Dates:        dates,
	}, nil
}

// truncateRunes shortens s to at most limit runes, cutting on a rune boundary.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
