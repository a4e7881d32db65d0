package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/oracle"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/trace"
	"llm-crypto-agent/internal/types"
)

const defaultEndpoint = "http://localhost:11434/api/generate"

// Decider asks a local Ollama model for trading decisions.
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

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
	Stream  bool           `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Message  string `json:"message"`
}

func (d *Decider) Decide(ctx context.Context, p interfaces.Prompt) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "ollama-api-call")
	defer span.End()

	endpoint := d.cfg.Oracle.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	body, err := json.Marshal(generateRequest{
		Model:   d.cfg.Oracle.Model,
		Prompt:  oracle.BuildPrompt(p),
		Options: map[string]any{"temperature": d.cfg.Oracle.Temperature},
		Stream:  false,
	})
	if err != nil {
		return types.Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return types.Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return types.Decision{}, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return types.Decision{}, fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(b))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return types.Decision{}, fmt.Errorf("decode response: %w", err)
	}

	reply := gr.Response
	if reply == "" {
		reply = gr.Message
	}
	return oracle.ParseDecision(reply)
}
