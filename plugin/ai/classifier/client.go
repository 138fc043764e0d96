package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Classifier classifies a single customer message.
// The caller provides the system prompt per call; no session memory is assumed.
type Classifier interface {
	Classify(ctx context.Context, systemPrompt, userMessage string) (*ClassificationResult, error)
}

// Config holds configuration for the OpenAI-backed classifier.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Timeout     time.Duration // per-call bound, default 30s
	Concurrency int           // max in-flight calls, default 8
	RPS         float64       // outbound request rate limit, 0 disables
}

// OpenAIClassifier calls a chat-completion endpoint with a strict JSON schema
// so the model output always matches the expected document shape.
type OpenAIClassifier struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration

	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewOpenAIClassifier creates a new classifier client.
func NewOpenAIClassifier(cfg Config) *OpenAIClassifier {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	return &OpenAIClassifier{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		limiter:   limiter,
	}
}

// Classify sends one classification request and returns the structured result.
// It either returns a fully populated result or a classifier *Error; it never
// blocks beyond the configured timeout.
func (c *OpenAIClassifier) Classify(ctx context.Context, systemPrompt, userMessage string) (*ClassificationResult, error) {
	// A missing prompt or message is a caller bug, not a call failure, so it
	// is not reported through the classifier error taxonomy.
	if systemPrompt == "" || userMessage == "" {
		return nil, errors.New("classifier: system prompt and user message are required")
	}
	if c.client == nil {
		return nil, NotConfigured("classifier has no API key")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, Timeout("waiting for classification slot", err)
	}
	defer c.sem.Release(1)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, Timeout("waiting for rate limiter", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0, // deterministic output
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "message_classification",
				Strict: true,
				Schema: classificationJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		cerr := mapTransportError(err)
		slog.Error("classification request failed",
			"error", err,
			"code", cerr.Code,
			"latency_ms", latency.Milliseconds())
		return nil, cerr
	}

	if len(resp.Choices) == 0 {
		return nil, MalformedResponse("empty response from model", nil)
	}

	result, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("failed to parse classification response",
			"content", truncateForLog(resp.Choices[0].Message.Content, 200),
			"error", err)
		return nil, err
	}

	slog.Debug("classification completed",
		"input", truncateForLog(userMessage, 30),
		"intent", result.Intent,
		"confidence", result.Confidence,
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return result, nil
}

// mapTransportError converts a transport failure into the classifier taxonomy.
func mapTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout("classification call exceeded timeout", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout("classification call timed out", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 401 {
		return NotConfigured("rejected API key")
	}
	return Unreachable("classification endpoint unreachable", err)
}

// wireResult is the JSON document shape returned by the model.
type wireResult struct {
	Intent             string              `json:"intent"`
	Confidence         float64             `json:"confidence"`
	Reply              string              `json:"reply"`
	NeedHandoff        bool                `json:"need_handoff"`
	SuggestHandoff     bool                `json:"suggest_handoff"`
	ToolRequests       []ToolRequest       `json:"tool_requests"`
	ProductSuggestions []ProductSuggestion `json:"product_suggestions"`
}

var codeBlockRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseResponse parses the model JSON document into a ClassificationResult.
// Markdown code fences around the document are tolerated.
func ParseResponse(content string) (*ClassificationResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := codeBlockRegex.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	var raw wireResult
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, MalformedResponse("JSON unmarshal failed", err)
	}
	if raw.Confidence < 0 || raw.Confidence > 1 {
		return nil, MalformedResponse(fmt.Sprintf("confidence out of range: %v", raw.Confidence), nil)
	}

	return &ClassificationResult{
		Intent:             ParseIntent(raw.Intent),
		RawIntent:          raw.Intent,
		Confidence:         raw.Confidence,
		ReplyText:          raw.Reply,
		SuggestHandoff:     raw.SuggestHandoff,
		NeedHandoff:        raw.NeedHandoff,
		ToolRequests:       raw.ToolRequests,
		ProductSuggestions: raw.ProductSuggestions,
	}, nil
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
