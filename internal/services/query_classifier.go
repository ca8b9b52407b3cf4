package services

import (
	"strings"
	"unicode"
)

// 工具标识
const (
	ToolCropPrice      = "crop-price"
	ToolMandiPrice     = "mandi-price"
	ToolWeather        = "weather"
	ToolSoilHealth     = "soil-health"
	ToolPestIdentifier = "pest-identifier"
	ToolWebSearch      = "web-search"
)

// toolKeywords 工具关键词表，匹配顺序即输出顺序
var toolKeywords = []struct {
	tool     string
	keywords []string
}{
	{ToolCropPrice, []string{"price", "cost", "rate", "msp", "कीमत", "दाम", "भाव"}},
	{ToolMandiPrice, []string{"mandi", "market", "apmc", "मंडी", "बाजार"}},
	{ToolWeather, []string{"weather", "rain", "temperature", "forecast", "monsoon", "humidity", "मौसम", "बारिश"}},
	{ToolSoilHealth, []string{"soil", "npk", "ph", "nutrient", "मिट्टी", "मृदा"}},
	{ToolPestIdentifier, []string{"pest", "insect", "disease", "fungus", "infestation", "कीट", "रोग"}},
	{ToolWebSearch, []string{"latest", "news", "recent", "current", "research", "scheme"}},
}

// QueryClassifier 基于关键词的工具选择器
type QueryClassifier struct{}

// NewQueryClassifier 创建分类器
func NewQueryClassifier() *QueryClassifier {
	return &QueryClassifier{}
}

// Classify 返回与消息相关的工具标识列表，顺序稳定且去重。
// 零匹配是合法结果，表示纯LLM回答。
func (c *QueryClassifier) Classify(message string) []string {
	lower := strings.ToLower(message)

	matched := make([]string, 0, len(toolKeywords))
	seen := make(map[string]bool)

	for _, entry := range toolKeywords {
		if seen[entry.tool] {
			continue
		}
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, entry.tool)
				seen[entry.tool] = true
				break
			}
		}
	}

	return matched
}

// DetectLanguage 基于字符区间的启发式语言检测，
// 仅在调用方未提供语言时使用，默认英文。
func (c *QueryClassifier) DetectLanguage(message string) string {
	for _, r := range message {
		switch {
		case unicode.In(r, unicode.Devanagari):
			return "hi"
		case unicode.In(r, unicode.Tamil):
			return "ta"
		case unicode.In(r, unicode.Telugu):
			return "te"
		case unicode.In(r, unicode.Bengali):
			return "bn"
		case unicode.In(r, unicode.Gujarati):
			return "gu"
		case unicode.In(r, unicode.Kannada):
			return "kn"
		case unicode.In(r, unicode.Malayalam):
			return "ml"
		case unicode.In(r, unicode.Gurmukhi):
			return "pa"
		case unicode.In(r, unicode.Oriya):
			return "or"
		}
	}
	return "en"
}
