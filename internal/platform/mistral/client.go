package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hirebridge/hirebridge-backend/internal/platform/ctxutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/envutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
)

// Client is the Mistral API client used for feature extraction and embeddings.
type Client interface {
	// Embed encodes inputs into fixed-dimension vectors.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)

	// GenerateJSON runs a chat completion with response_format=json_object and
	// decodes the content as a JSON object.
	GenerateJSON(ctx context.Context, system string, user string) (map[string]any, error)
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	embedModel  string
	temperature float64
	httpClient  *http.Client
	maxRetries  int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("MISTRAL_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing MISTRAL_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("MISTRAL_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("MISTRAL_MODEL"))
	if model == "" {
		model = "mistral-large-latest"
	}

	embedModel := strings.TrimSpace(os.Getenv("MISTRAL_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = "mistral-embed"
	}

	timeoutSec := 60
	if v := os.Getenv("MISTRAL_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 3
	if v := os.Getenv("MISTRAL_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	// Low temperature keeps the extraction output stable across retries.
	temperature := envutil.Float("MISTRAL_TEMPERATURE", 0.1)

	return &client{
		log:         log.With("client", "MistralClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		embedModel:  embedModel,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries:  maxRetries,
	}, nil
}

// -------------------- Embeddings --------------------

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	var resp embedResponse
	if err := c.doJSON(ctx, "/v1/embeddings", embedRequest{
		Model: c.embedModel,
		Input: inputs,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("mistral embeddings: expected %d vectors, got %d", len(inputs), len(resp.Data))
	}
	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("mistral embeddings: out-of-range index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// -------------------- Chat (JSON mode) --------------------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string) (map[string]any, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   4000,
	}
	req.ResponseFormat.Type = "json_object"

	var resp chatResponse
	if err := c.doJSON(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("mistral chat: empty choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Some models wrap JSON in a code fence despite json_object mode.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("mistral chat: decode content: %w", err)
	}
	return out, nil
}

// -------------------- transport --------------------

func (c *client) doJSON(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	backoff := 1 * time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "POST", c.baseURL+path, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if out == nil {
					return nil
				}
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("mistral decode: %w", err)
				}
				return nil
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("mistral http %d: %s", resp.StatusCode, truncate(respBody))
			} else {
				return fmt.Errorf("mistral http %d: %s", resp.StatusCode, truncate(respBody))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		c.log.Warn("mistral request failed; retrying",
			"path", path,
			"attempt", attempt+1,
			"backoff", backoff.String(),
			"error", lastErr,
		)
		select {
		case <-time.After(backoff):
		case <-ctxutil.Default(ctx).Done():
			return ctxutil.Default(ctx).Err()
		}
		backoff *= 2
	}
	return lastErr
}

func truncate(raw []byte) string {
	const max = 512
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
