package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"yttitle/internal/models"
	"yttitle/internal/store"
)

// GeminiEngine generates titles with the Google Gemini API.
type GeminiEngine struct {
	client *genai.Client
	model  string
}

// NewGeminiEngine creates a Gemini client for apiKey. The caller must Close it.
func NewGeminiEngine(ctx context.Context, apiKey, model string) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini engine requires an API key", models.ErrNoAPIKey)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Debugf("Gemini engine initialized with model %s", model)
	return &GeminiEngine{client: client, model: model}, nil
}

func (e *GeminiEngine) Name() string         { return EngineGemini }
func (e *GeminiEngine) ProviderName() string { return ProviderGemini }
func (e *GeminiEngine) ModelName() string    { return e.model }

func (e *GeminiEngine) Status() store.ProviderStatus {
	if e.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

func (e *GeminiEngine) Generate(ctx context.Context, prompt Prompt) (Generation, error) {
	if e.client == nil {
		return Generation{}, fmt.Errorf("Gemini engine is not initialized (missing API key)")
	}

	gm := e.client.GenerativeModel(e.model)
	if prompt.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return Generation{}, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Generation{}, fmt.Errorf("no candidates returned from Gemini")
	}

	gen := Generation{Text: candidateText(resp.Candidates[0].Content)}
	if resp.UsageMetadata != nil {
		gen.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		gen.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return gen, nil
}

func candidateText(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// Close cleans up the Gemini client resources.
func (e *GeminiEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

var _ Engine = (*GeminiEngine)(nil)
