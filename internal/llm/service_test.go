package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/RichardoC/parentpal/internal/llm/llmtest"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func newTestService(model llms.Model) *Service {
	s := New(model, 5*time.Second)
	s.now = func() time.Time { return time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestStreamChat(t *testing.T) {
	model := llmtest.New(llmtest.Response{
		Chunks:         []string{"Hello! ", "How old is ", "your child?"},
		StopReason:     "stop",
		GenerationInfo: map[string]any{"PromptTokens": 42, "CompletionTokens": 7},
	})
	svc := newTestService(model)

	var deltas []string
	result, err := svc.StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello! ", "How old is ", "your child?"}, deltas)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, models.RoleAssistant, result.Messages[0].Role)
	assert.Equal(t, "Hello! How old is your child?", result.Messages[0].Content)
	assert.NotEmpty(t, result.Messages[0].ID)
	assert.Equal(t, "stop", result.FinishReason)
	assert.Equal(t, Usage{PromptTokens: 42, CompletionTokens: 7}, result.Usage)

	calls := model.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, calls[0].Messages[0].Role)
	system := calls[0].Messages[0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, system, "You are a parenting expert")
	assert.Contains(t, system, "Today's date is 3/7/2026")
	assert.Contains(t, system, `"Toddler (1-3 years)"`)
	assert.Equal(t, llms.ChatMessageTypeHuman, calls[0].Messages[1].Role)
}

func TestSystemPromptConcerns(t *testing.T) {
	prompt := systemPrompt(time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC))

	last := -1
	for _, concern := range []string{
		"Sleep", "Feeding/Nutrition", "Behavior", "Development",
		"Education", "Screen time", "Social skills", "Emotional well-being",
	} {
		i := strings.Index(prompt, fmt.Sprintf("• %q", concern))
		require.GreaterOrEqual(t, i, 0, concern)
		assert.Greater(t, i, last, "%s is out of order", concern)
		last = i
	}
	assert.NotContains(t, prompt, `"Health"`)
}

func TestStreamChatAbortsWhenDeltaHandlerFails(t *testing.T) {
	model := llmtest.New(llmtest.Response{Chunks: []string{"a", "b"}})
	svc := newTestService(model)

	stop := errors.New("client went away")
	_, err := svc.StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
	}, func(string) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestStreamChatRejectsEmptyConversation(t *testing.T) {
	svc := newTestService(llmtest.New())

	_, err := svc.StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "   "},
	}, func(string) error { return nil })
	require.ErrorIs(t, err, ErrEmptyConversation)
	assert.Empty(t, svc.llm.(*llmtest.Model).Calls())
}

func TestToMessageContent(t *testing.T) {
	content := toMessageContent([]models.Message{
		{
			Role:    models.RoleUser,
			Content: "What is in this picture?",
			Attachments: []models.Attachment{
				{URL: "https://files.example/a.png", Name: "a.png", ContentType: "image/png"},
				{URL: "https://files.example/b.pdf", Name: "b.pdf", ContentType: "application/pdf"},
			},
		},
		{
			Role:    models.RoleAssistant,
			Content: "",
			ToolInvocations: []models.ToolInvocation{
				{State: models.ToolStateResult, ToolCallID: "call-1", ToolName: "selectTopic",
					Args: json.RawMessage(`{"ageGroup":"toddler"}`), Result: json.RawMessage(`{"topic":"sleep"}`)},
				{State: models.ToolStateCall, ToolCallID: "call-2", ToolName: "showAdvice"},
			},
		},
		{Role: models.RoleAssistant, Content: "  "},
	})

	require.Len(t, content, 3)

	user := content[0]
	assert.Equal(t, llms.ChatMessageTypeHuman, user.Role)
	require.Len(t, user.Parts, 3)
	assert.Equal(t, llms.ImageURLContent{URL: "https://files.example/a.png"}, user.Parts[1])
	assert.Contains(t, user.Parts[2].(llms.TextContent).Text, "b.pdf")

	assistant := content[1]
	assert.Equal(t, llms.ChatMessageTypeAI, assistant.Role)
	require.Len(t, assistant.Parts, 1)
	call := assistant.Parts[0].(llms.ToolCall)
	assert.Equal(t, "call-1", call.ID)
	assert.Equal(t, `{"ageGroup":"toddler"}`, call.FunctionCall.Arguments)

	tool := content[2]
	assert.Equal(t, llms.ChatMessageTypeTool, tool.Role)
	assert.Equal(t, llms.ToolCallResponse{ToolCallID: "call-1", Name: "selectTopic", Content: `{"topic":"sleep"}`}, tool.Parts[0])
}

func TestFinishReason(t *testing.T) {
	assert.Equal(t, "stop", finishReason(""))
	assert.Equal(t, "stop", finishReason("STOP"))
	assert.Equal(t, "length", finishReason("length"))
	assert.Equal(t, "content-filter", finishReason("SAFETY"))
	assert.Equal(t, "other", finishReason("RECITATION"))
}
