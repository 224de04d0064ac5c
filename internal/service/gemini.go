package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	generatorTimeout        = 60 * time.Second
	generatorConnectTimeout = 5 * time.Second
	generatorTLSTimeout     = 5 * time.Second
)

// ErrGeneratorNotConfigured is returned when no API key is set
var ErrGeneratorNotConfigured = errors.New("GEMINI_API_KEY not configured")

// TextGenerator turns a prompt into generated text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini generateContent REST endpoint
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	debug   bool
}

// NewGeminiClient creates a client for model. An empty apiKey yields a client
// whose calls fail with ErrGeneratorNotConfigured.
func NewGeminiClient(apiKey, model, baseURL string, debug bool) *GeminiClient {
	dialer := &net.Dialer{
		Timeout: generatorConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: generatorTLSTimeout,
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   generatorTimeout,
		},
		debug: debug,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt to the model and returns the first candidate's text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrGeneratorNotConfigured
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		log.Printf("[DEBUG] Calling Gemini model %s, prompt length %d", c.model, len(prompt))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Gemini response: %w", err)
	}
	if c.debug {
		log.Printf("[DEBUG] Gemini response: status=%d, body=%d bytes", resp.StatusCode, len(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", resp.Status)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode Gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("Gemini API returned no content")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
