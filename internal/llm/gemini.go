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

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient calls the Gemini generateContent API with an inline PDF part.
type GeminiClient struct {
	apiKey      string
	model       string
	temperature float32
	maxRetries  int
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewGeminiClient creates a Gemini client. The model name may carry the
// "models/" prefix or not; both are accepted.
func NewGeminiClient(apiKey, model string, temperature float32, maxRetries int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY or GOOGLE_API_KEY)", ErrMissingAPIKey)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &GeminiClient{
		apiKey:      apiKey,
		model:       strings.TrimPrefix(model, "models/"),
		temperature: temperature,
		maxRetries:  maxRetries,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		log: logger.WithComponent("llm-gemini"),
	}, nil
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateChunk sends the PDF bytes and prompt, retrying transient failures
// with linear backoff before giving up.
func (c *GeminiClient) GenerateChunk(ctx context.Context, pdfBytes []byte, prompt string) (string, error) {
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
			return "", fmt.Errorf("gemini: %s: %w", op, err)
		}
		c.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("Gemini request failed, retrying")
		if attempt < c.maxRetries-1 {
			if err := backoff(ctx, attempt); err != nil {
				return "", fmt.Errorf("gemini: %s: %w", op, err)
			}
		}
	}
	return "", fmt.Errorf("gemini: %s: %w: %v", op, ErrRequestFailed, lastErr)
}

func (c *GeminiClient) generateOnce(ctx context.Context, pdfBytes []byte, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{
						MimeType: "application/pdf",
						Data:     base64.StdEncoding.EncodeToString(pdfBytes),
					}},
					{Text: prompt},
				},
			},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      c.temperature,
			ResponseMimeType: "application/json",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiEndpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini api: %w", err)
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
		return "", fmt.Errorf("gemini api status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("gemini error: %s: %s", apiResp.Error.Status, apiResp.Error.Message)
	}

	// Stitch text from the first candidate's parts.
	var sb strings.Builder
	if len(apiResp.Candidates) > 0 {
		for _, part := range apiResp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// isTransient reports whether a non-HTTP error (timeouts, resets) is worth
// another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "Client.Timeout")
}
