package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"writing_coach/internal/prompts"
)

// Generator is the language model collaborator. Replies are untrusted text.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider    string        `yaml:"provider" validate:"oneof=none openai ollama"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Provider:    "none",
		Temperature: 0.2,
		MaxTokens:   300,
		Timeout:     30 * time.Second,
	}
}

var ErrNoProvider = errors.New("no coaching provider configured")

// NewGenerator returns the configured provider, or ErrNoProvider for "none".
func NewGenerator(cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, ErrNoProvider
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai provider: api key not set")
		}
		return NewOpenAIGenerator(cfg), nil
	case "ollama":
		return NewOllamaGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("unknown coaching provider %q", cfg.Provider)
	}
}

type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIGenerator(cfg Config) *OpenAIGenerator {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.CoachSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:         g.temperature,
		MaxCompletionTokens: g.maxTokens,
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type OllamaGenerator struct {
	endpoint    string
	model       string
	temperature float32
	client      *http.Client
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaGenerator(cfg Config) *OllamaGenerator {
	model := cfg.Model
	if model == "" {
		model = "llama3.1:8b"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaGenerator{
		endpoint:    ollamaGenerateEndpoint(cfg.BaseURL),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

func ollamaGenerateEndpoint(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "http://127.0.0.1:11434/api/generate"
	}
	if strings.Contains(base, "/api/generate") {
		return base
	}
	return strings.TrimRight(base, "/") + "/api/generate"
}

func (g *OllamaGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  g.model,
		"system": prompts.CoachSystem,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": g.temperature,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post ollama generate: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	var out ollamaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}
