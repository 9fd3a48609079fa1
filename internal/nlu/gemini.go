// internal/nlu/gemini.go
package nlu

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/models"
)

// GeminiClient talks to the Gemini API for intent extraction and result
// summarization. A parse failure never surfaces to the caller: the keyword
// fallback answers instead.
type GeminiClient struct {
	client   *genai.Client
	fallback *KeywordClassifier
	log      logger.Logger

	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, cfg config.GenAIConfig, fallback *KeywordClassifier, log logger.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		fallback:    fallback,
		log:         log.WithFields(map[string]interface{}{"component": "nlu"}),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
	}, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(c.temperature),
			MaxOutputTokens: c.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Parse extracts intent and entities from a user message. Model failures and
// malformed responses both degrade to the keyword classifier.
func (c *GeminiClient) Parse(ctx context.Context, query, history, language string) (*ParseResult, error) {
	raw, err := c.generate(ctx, BuildIntentPrompt(query, history, language))
	if err != nil {
		c.log.WithError(err).Warn("intent extraction failed, using keyword fallback", nil)
		return c.fallback.Classify(query), nil
	}

	parsed, err := ParseModelOutput(raw)
	if err != nil {
		c.log.WithError(err).Warn("model response unparseable, using keyword fallback", nil)
		return c.fallback.Classify(query), nil
	}

	c.log.Debug("intent extracted", map[string]interface{}{
		"intent":    parsed.Intent,
		"language":  parsed.ResponseLanguage,
		"needsData": parsed.NeedsData,
	})
	return parsed, nil
}

// Summarize renders rows as conversational text. Returns "" on failure so the
// structured payload still goes out without a summary.
func (c *GeminiClient) Summarize(ctx context.Context, intent models.Intent, rows []map[string]interface{}, language string, mode models.Mode) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	text, err := c.generate(ctx, BuildSummaryPrompt(intent, rows, language, mode))
	if err != nil {
		c.log.WithError(err).Warn("summary generation failed", nil)
		return "", nil
	}
	return text, nil
}
