package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeforge/internal/providers"
)

const maxBodyBytes = 4 << 20

type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg}
}

var _ providers.Generator = (*Client)(nil)

// Generate issues exactly one generateContent call. No retries: a repeated
// call against a paid generation API bills again, so failures surface
// immediately.
func (c *Client) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	body, err := c.buildPayload(req)
	if err != nil {
		return providers.Response{}, err
	}
	endpointURL, err := c.buildEndpointURL(req.Secret)
	if err != nil {
		return providers.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return providers.Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return providers.Response{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return providers.Response{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providers.Response{}, &providers.UpstreamError{
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	text, err := parseGenerateContent(respBody)
	if err != nil {
		return providers.Response{}, &providers.UpstreamError{
			Status: resp.StatusCode,
			Body:   "invalid response shape",
		}
	}
	return providers.Response{Text: text}, nil
}

func (c *Client) buildPayload(req providers.Request) ([]byte, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": req.Instruction},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     req.Temperature,
			"topK":            req.TopK,
			"topP":            req.TopP,
			"maxOutputTokens": req.MaxOutputTokens,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal generate payload: %w", err)
	}
	return b, nil
}

func (c *Client) buildEndpointURL(secret string) (string, error) {
	base := strings.TrimSuffix(strings.TrimSpace(c.cfg.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("base url is empty")
	}
	u, err := url.Parse(base + "/models/" + c.cfg.Model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("key", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseGenerateContent(body []byte) (string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("missing candidate text in generate response")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty candidate text in generate response")
	}
	return text, nil
}
