package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCohereURL = "https://api.cohere.ai/v1"

// CohereProvider implements Provider using Cohere's embed HTTP API.
type CohereProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewCohereProvider creates a Cohere embedding provider. A missing API key is
// a configuration error surfaced immediately, not at call time.
func NewCohereProvider(apiKey, model, baseURL string) (*CohereProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embed: cohere api key is empty")
	}
	if model == "" {
		model = "embed-english-v3.0"
	}
	if baseURL == "" {
		baseURL = defaultCohereURL
	}
	return &CohereProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name implements Provider.
func (p *CohereProvider) Name() string { return "cohere" }

type cohereEmbedReq struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message,omitempty"`
}

// Embed implements Provider.
func (p *CohereProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, _ := json.Marshal(cohereEmbedReq{
		Texts:     texts,
		Model:     p.model,
		InputType: "search_document",
	})
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cohere embed: status %d: %s", resp.StatusCode, msg)
	}

	var result cohereEmbedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cohere embed decode: %w", err)
	}
	return result.Embeddings, nil
}
