package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"findingaids/internal/logger"
)

const openaiEndpoint = "https://api.openai.com/v1"

// OpenAIClient calls the chat completions API, sending each mini-PDF as a
// file content part (base64 data URL) next to the prompt text.
type OpenAIClient struct {
	apiKey      string
	model       string
	temperature float32
	maxRetries  int
	filename    string
	baseURL     string
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewOpenAIClient creates an OpenAI client for the given model.
func NewOpenAIClient(apiKey, model string, temperature float32, maxRetries int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", ErrMissingAPIKey)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &OpenAIClient{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxRetries:  maxRetries,
		filename:    "document.pdf",
		baseURL:     openaiEndpoint,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		log: logger.WithComponent("llm-openai"),
	}, nil
}

type openaiFileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type openaiContentPart struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	File *openaiFileData `json:"file,omitempty"`
}

type openaiMessage struct {
	Role    string              `json:"role"`
	Content []openaiContentPart `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Temperature float32         `json:"temperature"`
	Messages    []openaiMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateChunk sends the PDF bytes and prompt, retrying transient failures
// with linear backoff before giving up.
func (c *OpenAIClient) GenerateChunk(ctx context.Context, pdfBytes []byte, prompt string) (string, error) {
	const op = "GenerateChunk"

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		text, err := c.generateOnce(ctx, pdfBytes, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var retryable *RetryableError
		if !errors.As(err, &retryable) && !isTransient(err) {
			return "", fmt.Errorf("openai: %s: %w", op, err)
		}
		c.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("OpenAI request failed, retrying")
		if attempt < c.maxRetries-1 {
			if err := backoff(ctx, attempt); err != nil {
				return "", fmt.Errorf("openai: %s: %w", op, err)
			}
		}
	}
	return "", fmt.Errorf("openai: %s: %w: %v", op, ErrRequestFailed, lastErr)
}

func (c *OpenAIClient) generateOnce(ctx context.Context, pdfBytes []byte, prompt string) (string, error) {
	reqBody := openaiRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openaiMessage{
			{
				Role: "user",
				Content: []openaiContentPart{
					{
						Type: "file",
						File: &openaiFileData{
							Filename: c.filename,
							FileData: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfBytes),
						},
					},
					{
						Type: "text",
						Text: prompt,
					},
				},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai api status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openai error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return apiResp.Choices[0].Message.Content, nil
}
