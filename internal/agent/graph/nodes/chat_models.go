package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/hrcopilot/server/internal/agent/model"
	logx "github.com/hrcopilot/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	Synthesizer *model.SynthesizerModelConfig
	DocQA       *model.SynthesizerModelConfig
}

// ChatModels holds the Gemini client and the chat models built on it.
type ChatModels struct {
	Client               *genai.Client
	Synthesizer          *gemini.ChatModel
	DocQA                *gemini.ChatModel
	SynthesizerModelName string
	DocQAModelName       string
}

// NewChatModels creates the synthesizer and document-QA chat models with a shared client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.Synthesizer == nil || config.DocQA == nil {
		return nil, fmt.Errorf("chat model configs are required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	synth, err := newGeminiChatModel(ctx, client, config.Synthesizer)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating synthesizer model")
		return nil, fmt.Errorf("error creating synthesizer model: %w", err)
	}

	docqa, err := newGeminiChatModel(ctx, client, config.DocQA)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating docqa model")
		return nil, fmt.Errorf("error creating docqa model: %w", err)
	}

	return &ChatModels{
		Client:               client,
		Synthesizer:          synth,
		DocQA:                docqa,
		SynthesizerModelName: config.Synthesizer.Model,
		DocQAModelName:       config.DocQA.Model,
	}, nil
}

func newGeminiChatModel(ctx context.Context, client *genai.Client, cfg *model.SynthesizerModelConfig) (*gemini.ChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(512)),
		},
	})
}
