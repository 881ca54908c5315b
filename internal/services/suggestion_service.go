package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"yttitle/internal/costtracker"
	"yttitle/internal/models"
	"yttitle/internal/store"
)

// DefaultPromptTemplate is used when no prompt file is configured.
const DefaultPromptTemplate = `Write a {{TONE}} youtube video title in category {{CATEGORY}} about "{{POSITIVE}}"{{NEGATIVE_CLAUSE}}`

// DefaultTone is used when a request leaves the tone empty.
const DefaultTone = "catchy"

// EngineSettings carries the per-engine model parameters from config.
type EngineSettings struct {
	ChatModel       string
	CompletionModel string
	MaxTokens       int
	Temperature     float32
	GeminiModel     string
}

// EngineFactory builds the engine called name, authenticated with apiKey.
type EngineFactory func(ctx context.Context, name, apiKey string) (Engine, error)

// NewEngineFactory returns a factory creating real OpenAI and Gemini clients.
func NewEngineFactory(settings EngineSettings) EngineFactory {
	return func(ctx context.Context, name, apiKey string) (Engine, error) {
		switch name {
		case EngineChatGPT:
			return NewChatGPTEngine(openai.NewClient(apiKey), settings.ChatModel), nil
		case EngineDaVinci:
			return NewDaVinciEngine(openai.NewClient(apiKey), settings.CompletionModel, settings.MaxTokens, settings.Temperature), nil
		case EngineGemini:
			return NewGeminiEngine(ctx, apiKey, settings.GeminiModel)
		default:
			return nil, fmt.Errorf("%w: %q (expected %s, %s or %s)", models.ErrUnknownEngine, name, EngineChatGPT, EngineDaVinci, EngineGemini)
		}
	}
}

// SuggestionRequest describes one title to generate. Category is expected to
// be validated by the caller.
type SuggestionRequest struct {
	Engine   string
	Category string
	Positive []string
	Negative []string
	Tone     string
}

// SuggestionService formats prompts, forwards them to an engine and records
// the result.
type SuggestionService struct {
	factory       EngineFactory
	template      string
	systemPrompt  string
	defaultEngine string
	history       store.SuggestionStore   // optional
	costs         costtracker.CostTracker // optional
}

// NewSuggestionService wires a suggestion service. An empty template selects
// DefaultPromptTemplate; history and costs may be nil.
func NewSuggestionService(factory EngineFactory, template, systemPrompt, defaultEngine string, history store.SuggestionStore, costs costtracker.CostTracker) *SuggestionService {
	if template == "" {
		template = DefaultPromptTemplate
	}
	if defaultEngine == "" {
		defaultEngine = EngineChatGPT
	}
	return &SuggestionService{
		factory:       factory,
		template:      strings.TrimSpace(template),
		systemPrompt:  systemPrompt,
		defaultEngine: defaultEngine,
		history:       history,
		costs:         costs,
	}
}

// DefaultEngine returns the engine used when a request names none.
func (s *SuggestionService) DefaultEngine() string { return s.defaultEngine }

// EngineStatus reports whether engine name can serve requests with apiKey.
// No key means disabled; a client that cannot be built is inactive.
func (s *SuggestionService) EngineStatus(ctx context.Context, name, apiKey string) store.ProviderStatus {
	if apiKey == "" {
		return store.ProviderStatusDisabled
	}
	engine, err := s.factory(ctx, name, apiKey)
	if err != nil {
		log.Debugf("Engine %s unavailable: %v", name, err)
		return store.ProviderStatusInactive
	}
	if closer, ok := engine.(io.Closer); ok {
		defer closer.Close()
	}
	return engine.Status()
}

// BuildPrompt renders the prompt template for req.
func (s *SuggestionService) BuildPrompt(req SuggestionRequest) Prompt {
	tone := req.Tone
	if tone == "" {
		tone = DefaultTone
	}
	negativeClause := ""
	if len(req.Negative) > 0 {
		negativeClause = fmt.Sprintf(` and not about "%s"`, strings.Join(req.Negative, ", "))
	}

	user := strings.NewReplacer(
		"{{TONE}}", tone,
		"{{CATEGORY}}", req.Category,
		"{{POSITIVE}}", strings.Join(req.Positive, ", "),
		"{{NEGATIVE}}", strings.Join(req.Negative, ", "),
		"{{NEGATIVE_CLAUSE}}", negativeClause,
	).Replace(s.template)

	return Prompt{System: s.systemPrompt, User: user}
}

// Suggest generates a title. Remote failures are returned as the engine
// reported them; no retry is attempted.
func (s *SuggestionService) Suggest(ctx context.Context, apiKey string, req SuggestionRequest) (*models.Suggestion, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set an API key before generating titles", models.ErrNoAPIKey)
	}
	if req.Engine == "" {
		req.Engine = s.defaultEngine
	}
	if req.Tone == "" {
		req.Tone = DefaultTone
	}

	engine, err := s.factory(ctx, req.Engine, apiKey)
	if err != nil {
		return nil, err
	}
	if closer, ok := engine.(io.Closer); ok {
		defer closer.Close()
	}

	prompt := s.BuildPrompt(req)
	log.Debugf("Generating title with %s (%s): %s", engine.Name(), engine.ModelName(), prompt.User)

	gen, err := engine.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sug := &models.Suggestion{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Engine:       engine.Name(),
		ProviderName: engine.ProviderName(),
		ModelName:    engine.ModelName(),
		Category:     req.Category,
		Positive:     req.Positive,
		Negative:     req.Negative,
		Tone:         req.Tone,
		Prompt:       prompt.User,
		Text:         strings.TrimSpace(gen.Text),
		InputTokens:  gen.InputTokens,
		OutputTokens: gen.OutputTokens,
	}
	if s.costs != nil {
		sug.Cost, _ = s.costs.Cost(sug.ModelName, sug.InputTokens, sug.OutputTokens)
	}

	if s.history != nil {
		if err := s.history.RecordSuggestion(ctx, sug); err != nil {
			log.Errorf("Failed to record suggestion %s: %v", sug.ID, err)
		} else {
			log.Debugf("Recorded suggestion: ID=%s, Engine=%s, Model=%s, InputTokens=%d, OutputTokens=%d, Cost=%.8f",
				sug.ID, sug.Engine, sug.ModelName, sug.InputTokens, sug.OutputTokens, sug.Cost)
		}
	}
	return sug, nil
}

// History returns recorded suggestions newest first; nil history yields none.
func (s *SuggestionService) History(ctx context.Context, limit, offset int) ([]*models.Suggestion, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListSuggestions(ctx, limit, offset)
}

// Usage summarizes recorded suggestion costs.
func (s *SuggestionService) Usage(ctx context.Context) (models.UsageSummary, error) {
	if s.history == nil {
		return models.UsageSummary{}, nil
	}
	return s.history.UsageSummary(ctx)
}

// HistoryEnabled reports whether suggestions are being recorded.
func (s *SuggestionService) HistoryEnabled() bool { return s.history != nil }
