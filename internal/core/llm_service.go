package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/microlearn/microlearn-server/internal/logger"
)

const (
	DefaultModelName         = "gemini-2.5-flash"
	DefaultGenerationTimeout = 60 * time.Second

	// FallbackContent replaces the generated text whenever the model call fails.
	FallbackContent = "Error generating content. Please check your API key and try again."
)

var errMalformedResponse = errors.New("malformed generation response")

// contentGenerator is the slice of *genai.GenerativeModel the service needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// LLMService is the single entry point to the text-generation API. It never
// returns an error to callers: failures are logged and turned into FallbackContent.
type LLMService struct {
	client  *genai.Client
	model   contentGenerator
	timeout time.Duration
	log     *logger.Logger
}

type LLMOptions struct {
	APIKey    string
	ModelName string
	Timeout   time.Duration
}

func NewLLMService(ctx context.Context, opts LLMOptions, log *logger.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	modelName := opts.ModelName
	if modelName == "" {
		modelName = DefaultModelName
	}

	s := newLLMService(client.GenerativeModel(modelName), opts.Timeout, log)
	s.client = client
	return s, nil
}

func newLLMService(model contentGenerator, timeout time.Duration, log *logger.Logger) *LLMService {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &LLMService{
		model:   model,
		timeout: timeout,
		log:     log.With("component", "llm"),
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Warn("Error closing GenAI client", "error", err)
		} else {
			s.log.Info("GenAI client closed")
		}
	}
}

// Generate sends prompt to the model and returns the first text part of the
// first candidate. ok is false when the text is FallbackContent.
func (s *LLMService) Generate(ctx context.Context, prompt string) (text string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.log.Error("gemini generate request failed", "error", err, "elapsed", time.Since(start))
		return FallbackContent, false
	}

	text, err = firstText(resp)
	if err != nil {
		s.log.Error("gemini response could not be parsed", "error", err, "elapsed", time.Since(start))
		return FallbackContent, false
	}

	s.log.Debug("gemini generate ok", "elapsed", time.Since(start), "chars", len(text))
	return text, true
}

// firstText extracts candidates[0].content.parts[0] as text.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", errMalformedResponse)
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", errMalformedResponse)
	}
	if len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: content has no parts", errMalformedResponse)
	}
	txt, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: first part is %T, not text", errMalformedResponse, cand.Content.Parts[0])
	}
	return string(txt), nil
}
