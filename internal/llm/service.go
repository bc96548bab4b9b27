package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RichardoC/parentpal/internal/metrics"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

var ErrEmptyConversation = errors.New("no messages with content")

type Service struct {
	llm     llms.Model
	timeout time.Duration
	now     func() time.Time
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// ChatResult is what a finished chat generation produced.
type ChatResult struct {
	Messages     []models.Message
	FinishReason string
	Usage        Usage
}

func New(model llms.Model, timeout time.Duration) *Service {
	return &Service{llm: model, timeout: timeout, now: time.Now}
}

// StreamChat sends the conversation to the model and passes every generated
// text delta to onDelta as it arrives. A non-nil error from onDelta aborts the
// generation. messages must already be free of empty entries.
func (s *Service) StreamChat(ctx context.Context, messages []models.Message, onDelta func(string) error) (*ChatResult, error) {
	content := toMessageContent(messages)
	if len(content) == 0 {
		return nil, ErrEmptyConversation
	}
	content = append([]llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt(s.now())),
	}, content...)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var streamed strings.Builder
	resp, err := s.llm.GenerateContent(ctx, content,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			streamed.Write(chunk)
			return onDelta(string(chunk))
		}),
	)
	metrics.RecordGeneration("chat", err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	choice := resp.Choices[0]
	text := choice.Content
	if text == "" {
		text = streamed.String()
	}

	return &ChatResult{
		Messages: []models.Message{{
			ID:        uuid.NewString(),
			Role:      models.RoleAssistant,
			Content:   text,
			CreatedAt: s.now().UTC(),
		}},
		FinishReason: finishReason(choice.StopReason),
		Usage:        usageFrom(choice.GenerationInfo),
	}, nil
}

func finishReason(stop string) string {
	switch strings.ToLower(stop) {
	case "", "stop", "end_turn":
		return "stop"
	case "length", "max_tokens":
		return "length"
	case "safety", "content_filter":
		return "content-filter"
	case "tool_calls":
		return "tool-calls"
	default:
		return "other"
	}
}

// usageFrom reads token counts from provider-specific generation info.
func usageFrom(info map[string]any) Usage {
	return Usage{
		PromptTokens:     intFrom(info, "PromptTokens", "input_tokens"),
		CompletionTokens: intFrom(info, "CompletionTokens", "output_tokens"),
	}
}

func intFrom(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
