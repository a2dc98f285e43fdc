package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultResponsesURL = "https://api.openai.com/v1/responses"
	DefaultModel        = "gpt-4o-mini"

	errorBodyLimit = 4096
)

var (
	ErrNoCredentials = errors.New("api key is required")
	ErrEmptyOutput   = errors.New("response has no output text")
)

type OpenAIConfig struct {
	APIKey       string
	Model        string
	ResponsesURL string
	Temperature  float64
	HTTPClient   *http.Client
}

// OpenAI asks the Responses API for a comment.
type OpenAI struct {
	config OpenAIConfig
	logger *zap.Logger
}

func NewOpenAI(config OpenAIConfig, logger *zap.Logger) *OpenAI {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(config.ResponsesURL) == "" {
		config.ResponsesURL = DefaultResponsesURL
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = 0.8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		config: config,
		logger: logger.Named("openai"),
	}
}

func (o *OpenAI) Comment(ctx context.Context, request Request) string {
	text, err := o.invoke(ctx, request.prompt())
	if errors.Is(err, ErrEmptyOutput) {
		return EmptyReply
	}
	if err != nil {
		o.logger.Warn("commentary request failed", zap.Error(err))
		return Fallback
	}
	return text
}

func (o *OpenAI) invoke(ctx context.Context, prompt string) (string, error) {
	apiKey := strings.TrimSpace(o.config.APIKey)
	if apiKey == "" {
		return "", ErrNoCredentials
	}

	requestBody, err := json.Marshal(map[string]any{
		"model":       o.config.Model,
		"input":       prompt,
		"temperature": o.config.Temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return "", errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := o.config.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		return "", errors.Errorf("request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	err = json.NewDecoder(res.Body).Decode(&payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}

	text := strings.TrimSpace(payload.OutputText)
	for _, item := range payload.Output {
		if text != "" {
			break
		}
		for _, content := range item.Content {
			if strings.TrimSpace(content.Text) != "" {
				text = strings.TrimSpace(content.Text)
				break
			}
		}
	}
	if text == "" {
		return "", ErrEmptyOutput
	}

	return text, nil
}
