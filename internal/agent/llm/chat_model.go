package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// DefaultThinkingBudget caps the tokens Gemini may spend on reasoning.
const DefaultThinkingBudget int32 = 1024

// Config holds the configuration for the response chat model.
type Config struct {
	APIKey   string
	BaseURL  string
	Response model.ResponseModelConfig
}

// NewResponseModel creates the Gemini chat model that writes turn replies.
func NewResponseModel(ctx context.Context, cfg Config) (*gemini.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	resp := normalizeResponseConfig(cfg.Response)
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       resp.Model,
		Temperature: &resp.Temperature,
		MaxTokens:   &resp.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(DefaultThinkingBudget),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Response model")
		return nil, fmt.Errorf("error creating Response model: %w", err)
	}

	logx.Debug().Str("model", resp.Model).Int("max_tokens", resp.MaxTokens).Msg("Response model created")
	return chatModel, nil
}

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultMaxTokens   = 2000
	DefaultTemperature = float32(0.4)
)

func normalizeResponseConfig(c model.ResponseModelConfig) model.ResponseModelConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		c.Temperature = DefaultTemperature
	}
	return c
}
