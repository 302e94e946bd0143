package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/llm"
)

var (
	ErrGeneratorUnavailable = errors.New("questions: generative source unavailable")
	ErrEmptyResponse        = errors.New("questions: empty generative response")
	ErrMalformedJSON        = errors.New("questions: malformed generative json")
	ErrUnexpectedShape      = errors.New("questions: unexpected generative response shape")
)

// DefaultGenerativeTimeout bounds the single outbound call of a run.
const DefaultGenerativeTimeout = 15 * time.Second

// GenerativeOptions tunes the model call.
type GenerativeOptions struct {
	Timeout         time.Duration
	MaxOutputTokens int
	Temperature     float64
}

// Generative asks an llm.Client for questions and sanitizes the answer.
type Generative struct {
	client llm.Client
	opts   GenerativeOptions
}

// NewGenerative wraps client. A nil client yields a source that always reports ErrGeneratorUnavailable.
func NewGenerative(client llm.Client, opts GenerativeOptions) *Generative {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultGenerativeTimeout
	}
	return &Generative{client: client, opts: opts}
}

// Name implements Source.
func (g *Generative) Name() enums.QuestionSource {
	return enums.QuestionSourceGenerative
}

// Generate implements Source. Exactly one call is issued, without retry.
func (g *Generative) Generate(ctx context.Context, in Input) (Batch, error) {
	if g == nil || g.client == nil {
		return Batch{}, ErrGeneratorUnavailable
	}
	system, user := BuildPrompts(in)

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	content, err := g.client.Complete(callCtx, llm.Request{
		System:          system,
		User:            user,
		MaxOutputTokens: g.opts.MaxOutputTokens,
		Temperature:     g.opts.Temperature,
		JSON:            true,
	})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyContent) {
			return Batch{}, ErrEmptyResponse
		}
		return Batch{}, fmt.Errorf("generative call via %s: %w", g.client.Name(), err)
	}

	raw, err := decodeResponse(content)
	if err != nil {
		return Batch{}, err
	}
	questions, report := Sanitize(raw, in)
	return Batch{Questions: questions, Sanitize: report}, nil
}

// decodeResponse accepts {"questions": [...]} or a bare array, optionally inside a Markdown fence.
func decodeResponse(content string) ([]any, error) {
	body := stripCodeFence(strings.TrimSpace(content))
	if body == "" {
		return nil, ErrEmptyResponse
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after json value", ErrMalformedJSON)
	}

	switch v := decoded.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if items, ok := v["questions"].([]any); ok {
			return items, nil
		}
	}
	return nil, ErrUnexpectedShape
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FallbackReason classifies a source error for logs and metrics.
func FallbackReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGeneratorUnavailable):
		return "unavailable"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, ErrUnexpectedShape):
		return "unexpected_shape"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}
