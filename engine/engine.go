package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/dispatch"
	"github.com/citadelhq/citadel-go/store"
)

// maxAgentTurns bounds the tool-use loop for a single user message.
const maxAgentTurns = 12

// ModelClient creates model responses. It is the narrow slice of the
// Anthropic client the engine needs.
type ModelClient interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicModel struct {
	client *anthropic.Client
}

func (m anthropicModel) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return m.client.Messages.New(ctx, params)
}

// MemoryStore persists and recalls memory items.
type MemoryStore interface {
	MemorySearch(ctx context.Context, query string, limit int, conversationID string) ([]store.MemoryItem, error)
	MemoryPut(ctx context.Context, content string, tags []string, conversationID string) (*store.MemoryItem, error)
}

// LinkFetcher loads a page and returns its final URL and extracted text.
type LinkFetcher func(ctx context.Context, url string) (finalURL, text string, err error)

// Config sets the model parameters for every run.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Engine runs the tool-calling conversation loop against Claude.
type Engine struct {
	model      ModelClient
	registry   *ToolRegistry
	dispatcher *dispatch.Dispatcher
	memory     MemoryStore
	fetchPage  LinkFetcher
	cfg        Config
	log        zerolog.Logger
}

// NewEngine creates an engine over the Anthropic client.
func NewEngine(client *anthropic.Client, registry *ToolRegistry, dispatcher *dispatch.Dispatcher, cfg Config, log zerolog.Logger) *Engine {
	return newEngine(anthropicModel{client: client}, registry, dispatcher, cfg, log)
}

func newEngine(model ModelClient, registry *ToolRegistry, dispatcher *dispatch.Dispatcher, cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		model:      model,
		registry:   registry,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log.With().Str("component", "engine").Logger(),
	}
}

// SetMemory enables memory recall and persistence.
func (e *Engine) SetMemory(m MemoryStore) { e.memory = m }

// SetLinkFetcher enables fetching links pasted into user messages.
func (e *Engine) SetLinkFetcher(f LinkFetcher) { e.fetchPage = f }

// Input is one user turn.
type Input struct {
	Message        string
	History        []Message
	SystemPrompt   string
	ConversationID string

	UseMemory    bool
	StoreMemory  bool
	ExploreLinks bool
}

// TokenUsage is the token spend of a run.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u TokenUsage) TotalTokens() int64 { return u.InputTokens + u.OutputTokens }

// Output is the completed reply for one user turn.
type Output struct {
	Text       string
	ToolCalls  int
	TokensUsed TokenUsage
	Fallback   bool
}

// Run executes the agent loop for one user message. On a request-too-
// large or rate-limit refusal it retries once with a reduced tool set
// and no conversation context.
func (e *Engine) Run(ctx context.Context, in *Input) (*Output, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, &core.ValidationError{Tool: "agent", Fields: []string{"message"}, Reason: "required"}
	}
	systemPrompt := in.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = SystemPrompt
	}

	system := []anthropic.TextBlockParam{{Text: systemPrompt}}
	if in.ExploreLinks {
		if linkCtx := e.buildLinkContext(ctx, in.Message); linkCtx != "" {
			system = append(system, anthropic.TextBlockParam{Text: linkCtx})
		}
	}
	if in.UseMemory {
		if memCtx := e.buildMemoryContext(ctx, in.Message, in.ConversationID); memCtx != "" {
			system = append(system, anthropic.TextBlockParam{Text: memCtx})
		}
	}

	budget := maxRequestChars - len(in.Message)
	for _, block := range system {
		budget -= len(block.Text)
	}
	history := trimByChars(trimHistory(in.History), budget)

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(in.Message)))

	out, err := e.loop(ctx, system, messages, e.registry.ToAPITools())
	if err != nil && isOverloadError(err) {
		e.log.Warn().Err(err).Msg("retrying with reduced toolset")
		out, err = e.loop(ctx,
			[]anthropic.TextBlockParam{{Text: systemPrompt}, {Text: fallbackInstruction}},
			[]anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(in.Message))},
			e.registry.ToAPIToolsFiltered(FilterByNames(fallbackToolNames...)))
		if out != nil {
			out.Fallback = true
		}
	}
	if err != nil {
		return nil, err
	}

	if in.StoreMemory && e.memory != nil {
		e.persistMemory(ctx, in.ConversationID, in.Message, out.Text)
	}
	return out, nil
}

// loop drives the model/tool exchange until the model stops asking for
// tools or the turn cap is hit.
func (e *Engine) loop(ctx context.Context, system []anthropic.TextBlockParam, messages []anthropic.MessageParam, apiTools []anthropic.ToolUnionParam) (*Output, error) {
	out := &Output{}

	for turn := 0; turn < maxAgentTurns; turn++ {
		resp, err := e.model.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(e.cfg.Model),
			MaxTokens:   e.cfg.MaxTokens,
			Temperature: anthropic.Float(e.cfg.Temperature),
			System:      system,
			Messages:    messages,
			Tools:       apiTools,
		})
		if err != nil {
			return nil, err
		}
		out.TokensUsed.InputTokens += resp.Usage.InputTokens
		out.TokensUsed.OutputTokens += resp.Usage.OutputTokens

		var text strings.Builder
		var toolUses []anthropic.ContentBlockUnion
		var assistantBlocks []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(block.Text))
			case "tool_use":
				toolUses = append(toolUses, block)
				assistantBlocks = append(assistantBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    block.ID,
						Name:  block.Name,
						Input: block.Input,
					},
				})
			}
		}

		if len(toolUses) == 0 {
			out.Text = text.String()
			return out, nil
		}

		messages = append(messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRoleAssistant,
			Content: assistantBlocks,
		})

		results := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		for _, use := range toolUses {
			out.ToolCalls++
			content, isError := e.runTool(ctx, use)
			results = append(results, anthropic.NewToolResultBlock(use.ID, content, isError))
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	return nil, &core.InternalError{
		Tool: "agent",
		Err:  fmt.Errorf("tool loop did not settle within %d turns", maxAgentTurns),
	}
}

// runTool dispatches one tool_use block and encodes the result for the
// model. Tool failures become error results, not run failures.
func (e *Engine) runTool(ctx context.Context, use anthropic.ContentBlockUnion) (string, bool) {
	args, err := decodeToolInput(use.Input)
	if err != nil {
		return fmt.Sprintf("invalid tool input: %v", err), true
	}

	e.log.Info().Str("tool", use.Name).Msg("tool call")
	result, err := e.dispatcher.Dispatch(ctx, use.Name, args)
	if err != nil {
		e.log.Warn().Str("tool", use.Name).Err(err).Msg("tool error")
		return err.Error(), true
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("encode result: %v", err), true
	}
	return string(encoded), false
}

func decodeToolInput(input any) (map[string]any, error) {
	if input == nil {
		return map[string]any{}, nil
	}
	if m, ok := input.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func (e *Engine) persistMemory(ctx context.Context, conversationID, message, reply string) {
	if message != "" {
		if _, err := e.memory.MemoryPut(ctx, message, []string{"user"}, conversationID); err != nil {
			e.log.Warn().Err(err).Msg("store user memory failed")
		}
	}
	if reply != "" {
		if _, err := e.memory.MemoryPut(ctx, reply, []string{"assistant"}, conversationID); err != nil {
			e.log.Warn().Err(err).Msg("store assistant memory failed")
		}
	}
}

// isOverloadError reports whether the API refused the request for size
// or rate limits, the cases worth one narrower retry.
func isOverloadError(err error) bool {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 413 || apierr.StatusCode == 429 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "request_too_large") || strings.Contains(msg, "rate_limit")
}
