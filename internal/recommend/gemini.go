package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const apiKeyHeader = "x-goog-api-key"

var (
	ErrNoAPIKey      = errors.New("gemini api key not configured")
	ErrEmptyResponse = errors.New("no text content in gemini response")
)

type geminiRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GeminiClient вызывает generateContent у Gemini REST API
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewGeminiClient(httpClient *http.Client, apiKey, baseURL, model string) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// Generate отправляет prompt одним сообщением пользователя и склеивает части первого кандидата
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "recommend.GeminiClient.Generate"

	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(geminiRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: 0.9, MaxOutputTokens: 120},
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal request: %w", op, err)
	}

	// ключ передаётся заголовком: URL попадает в текст ошибок и в логи
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: failed to send request: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return text, nil
}
