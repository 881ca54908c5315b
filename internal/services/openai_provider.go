package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"yttitle/internal/store"
)

// OpenAIClient is the subset of *openai.Client the engines use.
type OpenAIClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateCompletion(ctx context.Context, req openai.CompletionRequest) (openai.CompletionResponse, error)
}

// ChatGPTEngine sends the prompt as a chat conversation; the reply is
// choices[0].message.content.
type ChatGPTEngine struct {
	client OpenAIClient
	model  string
}

func NewChatGPTEngine(client OpenAIClient, model string) *ChatGPTEngine {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	log.Debugf("ChatGPT engine initialized with model %s", model)
	return &ChatGPTEngine{client: client, model: model}
}

func (e *ChatGPTEngine) Name() string         { return EngineChatGPT }
func (e *ChatGPTEngine) ProviderName() string { return ProviderOpenAI }
func (e *ChatGPTEngine) ModelName() string    { return e.model }

func (e *ChatGPTEngine) Status() store.ProviderStatus {
	if e.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

func (e *ChatGPTEngine) Generate(ctx context.Context, prompt Prompt) (Generation, error) {
	if e.client == nil {
		return Generation{}, fmt.Errorf("ChatGPT engine is not initialized (missing API key)")
	}

	msgs := prompt.Messages()
	req := openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: make([]openai.ChatCompletionMessage, len(msgs)),
	}
	for i, m := range msgs {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Generation{}, err
	}
	if len(resp.Choices) == 0 {
		return Generation{}, fmt.Errorf("no choices returned from OpenAI chat completion")
	}

	return Generation{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// DaVinciEngine sends the user prompt to the legacy text-completion endpoint;
// the reply is choices[0].text.
type DaVinciEngine struct {
	client      OpenAIClient
	model       string
	maxTokens   int
	temperature float32
}

func NewDaVinciEngine(client OpenAIClient, model string, maxTokens int, temperature float32) *DaVinciEngine {
	if model == "" {
		model = openai.GPT3Dot5TurboInstruct
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	log.Debugf("DaVinci engine initialized with model %s (max_tokens %d, temperature %.2f)", model, maxTokens, temperature)
	return &DaVinciEngine{client: client, model: model, maxTokens: maxTokens, temperature: temperature}
}

func (e *DaVinciEngine) Name() string         { return EngineDaVinci }
func (e *DaVinciEngine) ProviderName() string { return ProviderOpenAI }
func (e *DaVinciEngine) ModelName() string    { return e.model }

func (e *DaVinciEngine) Status() store.ProviderStatus {
	if e.client == nil {
		return store.ProviderStatusDisabled
	}
	return store.ProviderStatusActive
}

func (e *DaVinciEngine) Generate(ctx context.Context, prompt Prompt) (Generation, error) {
	if e.client == nil {
		return Generation{}, fmt.Errorf("DaVinci engine is not initialized (missing API key)")
	}

	resp, err := e.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       e.model,
		Prompt:      prompt.User,
		MaxTokens:   e.maxTokens,
		N:           1,
		Temperature: e.temperature,
	})
	if err != nil {
		return Generation{}, err
	}
	if len(resp.Choices) == 0 {
		return Generation{}, fmt.Errorf("no choices returned from OpenAI completion")
	}

	return Generation{
		Text:         resp.Choices[0].Text,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

var (
	_ Engine = (*ChatGPTEngine)(nil)
	_ Engine = (*DaVinciEngine)(nil)
)
