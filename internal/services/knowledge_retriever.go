package services

import (
	"sort"
	"strings"
)

// KnowledgeSnippet 农业知识片段
type KnowledgeSnippet struct {
	Topic   string  `json:"topic"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// knowledgeEntry 静态知识库条目
type knowledgeEntry struct {
	topic    string
	content  string
	keywords []string
}

// 静态农业知识库，关键词重合度打分检索
var knowledgeBase = []knowledgeEntry{
	{
		topic:    "crop_rotation",
		content:  "Crop rotation is the practice of growing different types of crops in the same area across different seasons. Benefits include improved soil health, reduced pest and disease pressure, and better nutrient management.",
		keywords: []string{"rotation", "different crops", "seasons", "soil health"},
	},
	{
		topic:    "rabi_crops",
		content:  "Rabi crops are winter season crops sown in October-December and harvested in March-May. Main rabi crops include wheat, barley, peas, gram, mustard. They require cool weather for growth and warm weather for ripening.",
		keywords: []string{"rabi", "winter", "wheat", "barley", "cool weather"},
	},
	{
		topic:    "kharif_crops",
		content:  "Kharif crops are monsoon season crops sown in June-July and harvested in September-October. Main kharif crops include rice, cotton, sugarcane, maize, bajra. They depend on monsoon rainfall.",
		keywords: []string{"kharif", "monsoon", "rice", "cotton", "rainfall"},
	},
	{
		topic:    "soil_health",
		content:  "Soil health refers to the continued capacity of soil to function as a vital living ecosystem. Key indicators include organic matter content, pH level, nutrient availability (NPK), soil structure, and biological activity.",
		keywords: []string{"soil", "health", "organic matter", "ph", "npk", "nutrients"},
	},
	{
		topic:    "irrigation_methods",
		content:  "Common irrigation methods include flood irrigation, sprinkler irrigation, drip irrigation, and furrow irrigation. Drip irrigation is most water-efficient, while flood irrigation is traditional but less efficient.",
		keywords: []string{"irrigation", "water", "drip", "sprinkler", "flood", "efficient"},
	},
	{
		topic:    "pest_management",
		content:  "Integrated Pest Management (IPM) combines biological, cultural, physical, and chemical tools to manage pests effectively while minimizing environmental impact. Prevention is better than cure.",
		keywords: []string{"pest", "ipm", "management", "biological", "chemical", "prevention"},
	},
	{
		topic:    "fertilizer_application",
		content:  "Balanced fertilizer application based on soil testing is crucial. NPK (Nitrogen, Phosphorus, Potassium) are primary nutrients. Organic fertilizers improve soil structure while chemical fertilizers provide quick nutrients.",
		keywords: []string{"fertilizer", "npk", "nitrogen", "phosphorus", "potassium", "organic"},
	},
	{
		topic:    "water_management",
		content:  "Efficient water management includes proper irrigation scheduling, mulching to reduce evaporation, rainwater harvesting, and choosing drought-resistant varieties. Water is precious in agriculture.",
		keywords: []string{"water", "irrigation", "mulching", "rainwater", "drought", "efficient"},
	},
}

// KnowledgeRetriever 静态农业知识检索器
type KnowledgeRetriever struct {
	topK int
}

// NewKnowledgeRetriever 创建检索器
func NewKnowledgeRetriever(topK int) *KnowledgeRetriever {
	if topK <= 0 {
		topK = 2
	}
	return &KnowledgeRetriever{topK: topK}
}

// Retrieve 按关键词重合度返回top-k知识片段，零命中返回空切片
func (kr *KnowledgeRetriever) Retrieve(query string) []KnowledgeSnippet {
	queryLower := strings.ToLower(query)

	var snippets []KnowledgeSnippet
	for _, entry := range knowledgeBase {
		score := 0.0
		for _, kw := range entry.keywords {
			if strings.Contains(queryLower, kw) {
				score++
			}
		}
		if score > 0 {
			snippets = append(snippets, KnowledgeSnippet{
				Topic:   entry.topic,
				Content: entry.content,
				Score:   score,
			})
		}
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})

	if len(snippets) > kr.topK {
		snippets = snippets[:kr.topK]
	}
	return snippets
}
