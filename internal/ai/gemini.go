package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookspin/internal/logging"

	"google.golang.org/genai"
)

// Config holds the AI engine configuration.
type Config struct {
	APIKey        string  `yaml:"api_key"`
	RewriteModel  string  `yaml:"rewrite_model"`
	ReviewModel   string  `yaml:"review_model"`
	Temperature   float32 `yaml:"temperature"`
	Simulate      bool    `yaml:"simulate"`
	RequestTimeMs int     `yaml:"request_timeout_ms"`
}

// DefaultConfig returns the default AI configuration.
func DefaultConfig() Config {
	return Config{
		RewriteModel:  "gemini-2.0-flash",
		ReviewModel:   "gemini-2.0-flash",
		Temperature:   0.8,
		RequestTimeMs: 120000,
	}
}

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeMs == 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.RequestTimeMs) * time.Millisecond
}

// GeminiEngine implements Rewriter and Reviewer against the Gemini API.
type GeminiEngine struct {
	cfg    Config
	client *genai.Client
}

// NewGeminiEngine creates a Gemini-backed engine. Fails if no API key is
// configured.
func NewGeminiEngine(ctx context.Context, cfg Config) (*GeminiEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key required (set BOOKSPIN_API_KEY or GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiEngine{cfg: cfg, client: client}, nil
}

const rewriteSystem = `You are a professional fiction editor. Rewrite the chapter below in fresh wording
while preserving its plot, characters, scene order, and tone. Keep roughly the
same length. Return only the rewritten chapter text, no commentary.`

// Rewrite produces a rewritten chapter. A non-empty directive carries human
// feedback that the rewrite must address.
func (g *GeminiEngine) Rewrite(ctx context.Context, content, directive string) (string, error) {
	timer := logging.StartTimer(logging.CategoryRewriter, "Rewrite")
	defer timer.StopWithThreshold(30 * time.Second)

	var sb strings.Builder
	sb.WriteString(rewriteSystem)
	sb.WriteString("\n\n")
	if directive != "" {
		fmt.Fprintf(&sb, "HUMAN FEEDBACK TO CONSIDER FOR RE-SPIN: '%s'\n\nOriginal content to re-spin:\n", directive)
	}
	sb.WriteString(content)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.requestTimeout())
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.RewriteModel,
		genai.Text(sb.String()),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(g.cfg.Temperature)},
	)
	if err != nil {
		return "", fmt.Errorf("rewrite request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("rewrite returned empty content")
	}
	logging.Get(logging.CategoryRewriter).Info("Rewrite complete: %d -> %d bytes", len(content), len(text))
	return text, nil
}

const reviewSystem = `You are a strict literary reviewer. Compare the rewritten chapter against the
original and score it 1-10 on each axis. Respond with JSON only:
{"fidelity_score": n, "readability_score": n, "grammar_score": n,
 "originality_score": n, "feedback": "...", "suggestions": ["...", "..."]}
fidelity: plot and character preservation. readability: flow and clarity.
grammar: mechanical correctness. originality: how far the wording departs
from the original.`

type reviewPayload struct {
	Fidelity    float64  `json:"fidelity_score"`
	Readability float64  `json:"readability_score"`
	Grammar     float64  `json:"grammar_score"`
	Originality float64  `json:"originality_score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Review scores a candidate against the original chapter.
func (g *GeminiEngine) Review(ctx context.Context, original, candidate string) (Review, error) {
	timer := logging.StartTimer(logging.CategoryReviewer, "Review")
	defer timer.StopWithThreshold(30 * time.Second)

	prompt := fmt.Sprintf("%s\n\n--- ORIGINAL ---\n%s\n\n--- REWRITE ---\n%s", reviewSystem, original, candidate)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.requestTimeout())
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.ReviewModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return Review{}, fmt.Errorf("review request failed: %w", err)
	}

	review, err := parseReview(resp.Text())
	if err != nil {
		return Review{}, err
	}
	logging.Get(logging.CategoryReviewer).Info("Review complete: composite=%.2f", review.Composite())
	return review, nil
}

// parseReview decodes the model's JSON response, tolerating markdown code
// fences around the payload.
func parseReview(raw string) (Review, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload reviewPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Review{}, fmt.Errorf("failed to parse review response: %w", err)
	}
	for _, score := range []float64{payload.Fidelity, payload.Readability, payload.Grammar, payload.Originality} {
		if score < 1 || score > 10 {
			return Review{}, fmt.Errorf("review score %v out of range 1-10", score)
		}
	}
	return Review{
		Fidelity:    payload.Fidelity,
		Readability: payload.Readability,
		Grammar:     payload.Grammar,
		Originality: payload.Originality,
		Feedback:    payload.Feedback,
		Suggestions: payload.Suggestions,
	}, nil
}
