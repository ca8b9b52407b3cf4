package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/farmchat/backend-go/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// systemPersona 多语言农业顾问人设
const systemPersona = `You are an expert agricultural advisor helping farmers in India. ` +
	`Give practical, actionable advice grounded in the data provided. ` +
	`Answer in the same language the farmer uses. ` +
	`Only answer questions related to farming, crops, livestock, soil, irrigation, weather, pests, fertilizers and agricultural markets. ` +
	`Keep answers concise and farmer-friendly.`

// toolBlockLabels 工具数据块标签
var toolBlockLabels = map[string]string{
	ToolCropPrice:      "Crop price data",
	ToolMandiPrice:     "Mandi price data",
	ToolWeather:        "Weather data",
	ToolSoilHealth:     "Soil health data",
	ToolPestIdentifier: "Pest identification data",
	ToolWebSearch:      "Web search results",
}

// PromptComposer 提示词组装器
type PromptComposer struct {
	historyWindow int
}

// NewPromptComposer 创建组装器，historyWindow为包含的历史轮数
func NewPromptComposer(historyWindow int) *PromptComposer {
	if historyWindow <= 0 {
		historyWindow = 6
	}
	return &PromptComposer{historyWindow: historyWindow}
}

// Compose 组装LLM消息序列：人设 → 知识片段 → 工具数据 → 历史 → 用户消息
func (pc *PromptComposer) Compose(
	userMessage string,
	history []models.ChatMessage,
	toolResults map[string]json.RawMessage,
	knowledge []KnowledgeSnippet,
	profileContext string,
) []openai.ChatCompletionMessage {
	var system strings.Builder
	system.WriteString(systemPersona)

	if profileContext != "" {
		system.WriteString("\n\nFarmer profile: ")
		system.WriteString(profileContext)
	}

	if len(knowledge) > 0 {
		system.WriteString("\n\nRelevant agricultural knowledge:")
		for _, snippet := range knowledge {
			system.WriteString("\n- ")
			system.WriteString(snippet.Content)
		}
	}

	if len(toolResults) > 0 {
		system.WriteString("\n\nReal-time data for this query:")
		// 按固定的工具表顺序输出，保证组装结果稳定
		for _, entry := range toolKeywords {
			data, ok := toolResults[entry.tool]
			if !ok {
				continue
			}
			label := toolBlockLabels[entry.tool]
			if label == "" {
				label = entry.tool
			}
			system.WriteString(fmt.Sprintf("\n%s: %s", label, string(data)))
		}
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system.String()},
	}

	// 截取最近N条历史
	start := 0
	if len(history) > pc.historyWindow {
		start = len(history) - pc.historyWindow
	}
	for _, msg := range history[start:] {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	return messages
}
