package services

import (
	"context"

	"yttitle/internal/store" // For ProviderStatus
)

// Engine names selectable by callers.
const (
	EngineChatGPT = "ChatGPT"
	EngineDaVinci = "DaVinci"
	EngineGemini  = "Gemini"
)

// Engines lists every selectable engine.
var Engines = []string{EngineChatGPT, EngineDaVinci, EngineGemini}

// Providers whose credentials the engines use.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// EngineProvider returns the provider serving engine, false for an unknown
// engine name.
func EngineProvider(engine string) (string, bool) {
	switch engine {
	case EngineChatGPT, EngineDaVinci:
		return ProviderOpenAI, true
	case EngineGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// ChatMessageRole defines the role of the message sender.
type ChatMessageRole string

const (
	ChatMessageRoleSystem ChatMessageRole = "system"
	ChatMessageRoleUser   ChatMessageRole = "user"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    ChatMessageRole
	Content string
}

// Prompt is what an engine is asked. Engines without a system role only send User.
type Prompt struct {
	System string
	User   string
}

// Messages renders the prompt as a chat conversation.
func (p Prompt) Messages() []ChatMessage {
	var msgs []ChatMessage
	if p.System != "" {
		msgs = append(msgs, ChatMessage{Role: ChatMessageRoleSystem, Content: p.System})
	}
	return append(msgs, ChatMessage{Role: ChatMessageRoleUser, Content: p.User})
}

// Generation is the text an engine produced plus its token usage.
type Generation struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Engine is a text-generation backend. Errors from the remote service are
// returned unchanged.
type Engine interface {
	Generate(ctx context.Context, prompt Prompt) (Generation, error)
	Status() store.ProviderStatus
	Name() string         // engine name, e.g. "ChatGPT"
	ProviderName() string // e.g. "openai", "gemini"
	ModelName() string    // Specific model used
}
