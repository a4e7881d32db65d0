package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/oracle"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/trace"
	"llm-crypto-agent/internal/types"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You are a disciplined crypto trader. Output STRICT JSON with buy/sell/hold."

type Decider struct {
	cfg    *store.Config
	client *http.Client
}

func New(cfg *store.Config) *Decider {
	return &Decider{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second},
	}
}

func (d *Decider) Decide(ctx context.Context, p interfaces.Prompt) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return types.Decision{}, errors.New("OPENAI_API_KEY missing")
	}

	endpoint := d.cfg.Oracle.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	body := map[string]any{
		"model": d.cfg.Oracle.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": oracle.BuildPrompt(p)},
		},
		"temperature": d.cfg.Oracle.Temperature,
	}
	if d.cfg.Oracle.MaxTokens > 0 {
		body["max_tokens"] = d.cfg.Oracle.MaxTokens
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bb))
	if err != nil {
		return types.Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return types.Decision{}, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.Decision{}, fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Decision{}, fmt.Errorf("decode response: %w", err)
	}
	if len(r.Choices) == 0 {
		return types.Decision{}, errors.New("openai: no choices in response")
	}

	return oracle.ParseDecision(strings.TrimSpace(r.Choices[0].Message.Content))
}
