package services

import (
	"encoding/json"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmchat/backend-go/internal/models"
)

func TestCompose_SystemFirstUserLast(t *testing.T) {
	composer := NewPromptComposer(6)

	messages := composer.Compose("When should I sow wheat?", nil, nil, nil, "")
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, "When should I sow wheat?", messages[1].Content)
}

func TestCompose_IncludesToolDataAndKnowledge(t *testing.T) {
	composer := NewPromptComposer(6)

	toolResults := map[string]json.RawMessage{
		ToolWeather: json.RawMessage(`{"temp":31,"rain_chance":0.6}`),
	}
	knowledge := []KnowledgeSnippet{
		{Topic: "rabi_crops", Content: "Rabi crops are winter season crops.", Score: 2},
	}

	messages := composer.Compose("Will it rain on my wheat?", nil, toolResults, knowledge, "2.5 acres in Ludhiana")
	system := messages[0].Content

	assert.Contains(t, system, "Weather data")
	assert.Contains(t, system, `"rain_chance":0.6`)
	assert.Contains(t, system, "Rabi crops are winter season crops.")
	assert.Contains(t, system, "2.5 acres in Ludhiana")
}

func TestCompose_ToolBlockOrderIsStable(t *testing.T) {
	composer := NewPromptComposer(6)

	toolResults := map[string]json.RawMessage{
		ToolWeather:   json.RawMessage(`{}`),
		ToolCropPrice: json.RawMessage(`{}`),
	}

	messages := composer.Compose("price and weather", nil, toolResults, nil, "")
	system := messages[0].Content

	priceIdx := strings.Index(system, "Crop price data")
	weatherIdx := strings.Index(system, "Weather data")
	require.NotEqual(t, -1, priceIdx)
	require.NotEqual(t, -1, weatherIdx)
	assert.Less(t, priceIdx, weatherIdx)
}

func TestCompose_HistoryWindow(t *testing.T) {
	composer := NewPromptComposer(2)

	history := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
		{Role: "assistant", Content: "fourth"},
	}

	messages := composer.Compose("fifth", history, nil, nil, "")
	// system + 2条历史 + 当前消息
	require.Len(t, messages, 4)
	assert.Equal(t, "third", messages[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	assert.Equal(t, "fourth", messages[2].Content)
	assert.Equal(t, "fifth", messages[3].Content)
}
