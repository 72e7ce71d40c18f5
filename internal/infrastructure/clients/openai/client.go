package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sitelore/backend/internal/domain/entities"
	"github.com/sitelore/backend/pkg/config"
	"github.com/sitelore/backend/pkg/vector"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the embedding and narrative providers against the
// OpenAI HTTP API.
type Client struct {
	apiKey         string
	chatModel      string
	embeddingModel string
	embeddingDim   int
	baseURL        string
	httpClient     *http.Client
	limiter        *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	embeddingDim := cfg.EmbeddingDim
	if embeddingDim <= 0 {
		embeddingDim = 384
	}

	return &Client{
		apiKey:         cfg.APIKey,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		embeddingDim:   embeddingDim,
		baseURL:        defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// Dimensions returns the embedding dimensionality, fixed across the system.
func (c *Client) Dimensions() int {
	return c.embeddingDim
}

type embeddingEnvelope struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed maps text into the site embedding space, unit-normalized.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordMetric(ctx, c.embeddingModel, 0, 0, err)
			return nil, err
		}
		recordRateLimitWait(ctx, c.embeddingModel, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model":      c.embeddingModel,
		"input":      text,
		"dimensions": c.embeddingDim,
	}

	var envelope embeddingEnvelope
	if err := c.post(ctx, "/embeddings", c.embeddingModel, payload, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Data) == 0 {
		return nil, errors.New("openai response missing embedding data")
	}
	emb := envelope.Data[0].Embedding
	if len(emb) != c.embeddingDim {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(emb), c.embeddingDim)
	}

	return vector.Normalize(emb), nil
}

const narrativeSystemPrompt = `You are a guide for visitors of historical sites. Given a set of geolocated heritage sites, write one short connected narrative (3-6 sentences) that a visitor could follow from site to site. Mention each site by title in the given order. Be factual and restrained; do not invent dates or events not present in the site descriptions.`

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// GenerateNarrative turns an ordered set of sites into a single narrative.
func (c *Client) GenerateNarrative(ctx context.Context, sites []*entities.Site) (string, error) {
	if len(sites) == 0 {
		return "", errors.New("at least one site is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordMetric(ctx, c.chatModel, 0, 0, err)
			return "", err
		}
		recordRateLimitWait(ctx, c.chatModel, time.Since(waitStart))
	}

	var sb strings.Builder
	for i, site := range sites {
		fmt.Fprintf(&sb, "%d. %s (%.4f, %.4f): %s\n",
			i+1, site.Title, site.Location.Latitude, site.Location.Longitude, site.Text)
	}

	payload := map[string]interface{}{
		"model": c.chatModel,
		"input": []map[string]string{
			{"role": "system", "content": narrativeSystemPrompt},
			{"role": "user", "content": sb.String()},
		},
		"temperature":       0.4,
		"max_output_tokens": 600,
	}

	var envelope responseEnvelope
	if err := c.post(ctx, "/responses", c.chatModel, payload, &envelope); err != nil {
		return "", err
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		return "", errors.New("openai response missing output text")
	}

	return strings.TrimSpace(text), nil
}

func (c *Client) post(ctx context.Context, path, model string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordMetric(ctx, model, 0, time.Since(start), err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		recordMetric(ctx, model, resp.StatusCode, time.Since(start), statusErr)
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		recordMetric(ctx, model, resp.StatusCode, time.Since(start), err)
		return err
	}

	recordMetric(ctx, model, resp.StatusCode, time.Since(start), nil)
	return nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type clientMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var metricsInit = false
var metrics clientMetrics

func ensureMetrics() {
	if metricsInit {
		return
	}
	meter := otel.Meter("github.com/sitelore/backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.openai.rate_limit.wait",
		metric.WithDescription("Time spent waiting for OpenAI rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	metrics = clientMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	metricsInit = true
}

func recordMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureMetrics()
	if !metricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureMetrics()
	if !metricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	metrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
