package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/RichardoC/parentpal/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// promptConcerns are the topics offered in conversation, in the order parents
// see them. The catalog carries more topics for the structured generators.
var promptConcerns = []string{
	"Sleep",
	"Feeding/Nutrition",
	"Behavior",
	"Development",
	"Education",
	"Screen time",
	"Social skills",
	"Emotional well-being",
}

func systemPrompt(now time.Time) string {
	var b strings.Builder
	b.WriteString("You are a parenting expert who helps parents with their questions.\n\n")

	b.WriteString("Initial interaction:\n")
	b.WriteString("1. Ask for child's age group, presenting these options:\n")
	for _, g := range models.AgeGroups {
		fmt.Fprintf(&b, "   • %q\n", g.Label)
	}
	b.WriteString("\n2. After age is selected, ask about specific concerns:\n")
	for _, concern := range promptConcerns {
		fmt.Fprintf(&b, "   • %q\n", concern)
	}

	b.WriteString(`
Guidelines:
- Keep responses concise and practical
- Focus on evidence-based advice
- Be empathetic and supportive
`)
	fmt.Fprintf(&b, "- Today's date is %s\n", now.Format("1/2/2006"))
	b.WriteString(`- Ask relevant follow-up questions based on selected concerns
- Avoid medical advice and refer to healthcare providers when appropriate
- Provide age-appropriate suggestions
- Include quick tips and actionable steps
- Suggest reliable resources when relevant

If this is the first message, start by introducing yourself and asking for the child's age group.
Present options as plain text with bullet points.
`)
	return b.String()
}

// toMessageContent converts chat history into model input. Messages that
// would carry no parts are dropped.
func toMessageContent(messages []models.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			parts := textParts(msg.Content)
			parts = append(parts, attachmentParts(msg.Attachments)...)
			if len(parts) > 0 {
				out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
			}
		case models.RoleAssistant:
			out = append(out, assistantContent(msg)...)
		case models.RoleSystem:
			if parts := textParts(msg.Content); len(parts) > 0 {
				out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeSystem, Parts: parts})
			}
		}
	}
	return out
}

// assistantContent splits an assistant turn into the assistant message with
// its tool calls and a tool message holding the results.
func assistantContent(msg models.Message) []llms.MessageContent {
	parts := textParts(msg.Content)
	var results []llms.ContentPart
	for _, inv := range msg.ToolInvocations {
		if !inv.HasResult() {
			continue
		}
		args := string(inv.Args)
		if args == "" {
			args = "{}"
		}
		parts = append(parts, llms.ToolCall{
			ID:   inv.ToolCallID,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      inv.ToolName,
				Arguments: args,
			},
		})
		results = append(results, llms.ToolCallResponse{
			ToolCallID: inv.ToolCallID,
			Name:       inv.ToolName,
			Content:    string(inv.Result),
		})
	}

	var out []llms.MessageContent
	if len(parts) > 0 {
		out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts})
	}
	if len(results) > 0 {
		out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeTool, Parts: results})
	}
	return out
}

func textParts(s string) []llms.ContentPart {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []llms.ContentPart{llms.TextContent{Text: s}}
}

func attachmentParts(attachments []models.Attachment) []llms.ContentPart {
	parts := make([]llms.ContentPart, 0, len(attachments))
	for _, a := range attachments {
		if a.URL == "" {
			continue
		}
		if a.IsImage() {
			parts = append(parts, llms.ImageURLContent{URL: a.URL})
			continue
		}
		parts = append(parts, llms.TextContent{
			Text: fmt.Sprintf("Attached file %q (%s): %s", a.Name, a.ContentType, a.URL),
		})
	}
	return parts
}
