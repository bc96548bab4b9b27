package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{name: "no messages", want: "New chat"},
		{
			name: "first user message",
			messages: []Message{
				{Role: RoleAssistant, Content: "Hi there"},
				{Role: RoleUser, Content: "  My toddler\n won't   sleep "},
				{Role: RoleUser, Content: "second"},
			},
			want: "My toddler won't sleep",
		},
		{
			name:     "blank user messages are skipped",
			messages: []Message{{Role: RoleUser, Content: "   "}, {Role: RoleUser, Content: "Picky eater"}},
			want:     "Picky eater",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.messages))
		})
	}
}

func TestDeriveTitleTruncates(t *testing.T) {
	title := DeriveTitle([]Message{{Role: RoleUser, Content: strings.Repeat("ä", 200)}})
	assert.Equal(t, 80, len([]rune(title)))
	assert.True(t, strings.HasSuffix(title, "…"))
}

func TestMessageEmpty(t *testing.T) {
	assert.True(t, Message{Role: RoleUser, Content: " \n"}.Empty())
	assert.False(t, Message{Role: RoleUser, Content: "hi"}.Empty())
	assert.False(t, Message{Role: RoleUser, Attachments: []Attachment{{URL: "https://example.com/a.png", ContentType: "image/png"}}}.Empty())
	assert.True(t, Message{Role: RoleAssistant, ToolInvocations: []ToolInvocation{{State: ToolStateCall, ToolName: "weather"}}}.Empty())
	assert.False(t, Message{Role: RoleAssistant, ToolInvocations: []ToolInvocation{{State: ToolStateResult, ToolName: "weather", Result: json.RawMessage(`{"temp":20}`)}}}.Empty())

	got := NonEmpty([]Message{{ID: "a", Content: "x"}, {ID: "b"}, {ID: "c", Content: "y"}})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestMessageAttachmentsJSON(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "m1",
		"role": "user",
		"content": "What is this rash?",
		"experimental_attachments": [{"url": "https://example.com/r.jpg", "contentType": "image/jpeg"}]
	}`), &m))
	require.Len(t, m.Attachments, 1)
	assert.True(t, m.Attachments[0].IsImage())
}

func TestExtends(t *testing.T) {
	history := []Message{
		{ID: "a", Role: RoleUser, Content: "Help with naps"},
		{ID: "b", Role: RoleAssistant, Content: "How old is she?"},
	}

	assert.True(t, Extends(history, history))
	assert.True(t, Extends(append(history, Message{Role: RoleUser, Content: "Two"}), history))
	assert.True(t, Extends([]Message{
		{ID: "x", Role: RoleUser, Content: "Help with naps"},
		{ID: "y", Role: RoleAssistant, Content: "How old is she?"},
	}, history), "ids are not compared")
	assert.True(t, Extends(history, nil))

	assert.False(t, Extends(history[:1], history))
	assert.False(t, Extends([]Message{
		{Role: RoleUser, Content: "Help with naps please"},
		{Role: RoleAssistant, Content: "How old is she?"},
	}, history))
	assert.False(t, Extends([]Message{
		{Role: RoleUser, Content: "Help with naps"},
		{Role: RoleUser, Content: "How old is she?"},
	}, history))
}

func TestChatOwnedBy(t *testing.T) {
	chat := &Chat{UserID: "user-1"}
	assert.True(t, chat.OwnedBy("user-1"))
	assert.False(t, chat.OwnedBy("user-2"))
	assert.False(t, (&Chat{}).OwnedBy(""))
}

func TestParentingAdviceValidate(t *testing.T) {
	valid := ParentingAdvice{
		Title:           "Bedtime",
		Summary:         "Keep it consistent.",
		Tips:            []string{"a", "b", "c"},
		Recommendations: []string{"x", "y"},
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Tips = []string{"a", " ", "c"}
	short.Recommendations = nil
	err := short.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 tips")
	assert.Contains(t, err.Error(), "2 recommendations")
}

func TestGeneratedObjectsValidate(t *testing.T) {
	assert.Error(t, (&DevelopmentMilestones{Physical: []string{"walks"}}).Validate())
	assert.NoError(t, (&DevelopmentMilestones{
		Physical: []string{"walks"}, Cognitive: []string{}, Social: []string{}, Language: []string{},
	}).Validate())

	assert.Error(t, (&CommonChallenges{}).Validate())
	assert.Error(t, (&CommonChallenges{Challenges: []Challenge{{Issue: "Biting"}}}).Validate())

	assert.Error(t, (&RoutinePlan{RoutineName: "Bedtime"}).Validate())
	assert.NoError(t, (&RoutinePlan{RoutineName: "Bedtime", Steps: []RoutineStep{{Step: "Bath"}}}).Validate())
}

func TestLookup(t *testing.T) {
	assert.Equal(t, "Toddler (1-3 years)", LookupAgeGroup("toddler"))
	assert.Equal(t, "Toddler (1-3 years)", LookupAgeGroup(" toddler (1-3 YEARS) "))
	assert.Equal(t, "Feeding/Nutrition", LookupTopic("nutrition"))
	assert.Equal(t, "potty training", LookupTopic(" potty training "))
}
