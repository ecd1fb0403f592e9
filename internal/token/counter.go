// Package token converts message content into model-specific token counts.
package token

import (
	"github.com/tiktoken-go/tokenizer"

	"github.com/tokendeck/tokendeck/internal/logger"
	"github.com/tokendeck/tokendeck/internal/models"
)

// MessageOverhead approximates the structural tokens (role markers,
// delimiters) a conversational API charges per message in addition to the
// raw content.
const MessageOverhead = 4

// fallbackCharsPerToken backs the heuristic used when no exact encoding is
// available: roughly four characters per token.
const fallbackCharsPerToken = 4

// Count returns the token count of text under the given model's encoding.
// Empty text counts as zero. If the model has no known encoding, or encoding
// fails, the result falls back to ceil(len(text)/4); the failure is logged
// and never surfaced. The codec is resolved per call and not retained.
func Count(text, model string) int {
	if text == "" {
		return 0
	}

	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		logger.Debug("no tokenizer encoding for model, using heuristic",
			"model", model, "error", err)
		return fallbackCount(text)
	}

	n, err := codec.Count(text)
	if err != nil {
		logger.Warn("token encoding failed, using heuristic",
			"model", model, "error", err)
		return fallbackCount(text)
	}
	return n
}

// CountMessage estimates tokens for one structured conversational message.
// The authoritative count comes from the provider's response usage field;
// this estimate is for provisional display only and must never overwrite an
// authoritative value.
func CountMessage(role, content, model string) int {
	return MessageOverhead + Count(role, model) + Count(content, model)
}

// Message is the minimal shape of a transcript entry for estimation. Model
// is set per message when the conversation switched models midway; empty
// means the transcript's session model applies.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// EstimateTranscript sums the per-message estimates for a whole
// conversation.
func EstimateTranscript(messages []Message, model string) int {
	total := 0
	for _, m := range messages {
		total += CountMessage(m.Role, m.Content, model)
	}
	return total
}

// SummarizeTranscript aggregates the transcript estimate per model, in
// first-seen order. Assistant messages count as completion tokens, everything
// else as prompt tokens. Messages without their own model fall back to
// defaultModel.
func SummarizeTranscript(messages []Message, defaultModel string) models.TokenUsageSummary {
	var order []string
	byModel := make(map[string]*models.AggregatedModelUsage)

	for _, m := range messages {
		model := m.Model
		if model == "" {
			model = defaultModel
		}

		entry, ok := byModel[model]
		if !ok {
			entry = &models.AggregatedModelUsage{Model: model}
			byModel[model] = entry
			order = append(order, model)
		}

		n := int64(CountMessage(m.Role, m.Content, model))
		if m.Role == "assistant" {
			entry.CompletionTokens += n
		} else {
			entry.PromptTokens += n
		}
	}

	members := make([]models.AggregatedModelUsage, len(order))
	for i, model := range order {
		members[i] = *byModel[model]
	}
	return models.NewTokenUsageSummary(members)
}

// fallbackCount is ceil(len(text)/4), a pure function of text length.
func fallbackCount(text string) int {
	return (len(text) + fallbackCharsPerToken - 1) / fallbackCharsPerToken
}
