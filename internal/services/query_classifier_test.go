package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_SingleTool(t *testing.T) {
	classifier := NewQueryClassifier()

	tools := classifier.Classify("What is the price of wheat today?")
	assert.Equal(t, []string{ToolCropPrice}, tools)
}

func TestClassify_MultipleTools(t *testing.T) {
	classifier := NewQueryClassifier()

	tools := classifier.Classify("What is the mandi rate for rice and will it rain tomorrow?")
	// 顺序跟随关键词表，而非消息中出现的顺序
	assert.Equal(t, []string{ToolCropPrice, ToolMandiPrice, ToolWeather}, tools)
}

func TestClassify_NoMatch(t *testing.T) {
	classifier := NewQueryClassifier()

	tools := classifier.Classify("Tell me about crop rotation benefits")
	assert.Empty(t, tools)
}

func TestClassify_HindiKeywords(t *testing.T) {
	classifier := NewQueryClassifier()

	tools := classifier.Classify("गेहूं की कीमत क्या है?")
	assert.Contains(t, tools, ToolCropPrice)

	tools = classifier.Classify("कल मौसम कैसा रहेगा?")
	assert.Contains(t, tools, ToolWeather)
}

func TestClassify_Dedupe(t *testing.T) {
	classifier := NewQueryClassifier()

	// price和cost均命中crop-price，只应出现一次
	tools := classifier.Classify("price and cost of onion")
	assert.Equal(t, []string{ToolCropPrice}, tools)
}

func TestDetectLanguage(t *testing.T) {
	classifier := NewQueryClassifier()

	tests := []struct {
		message string
		want    string
	}{
		{"What fertilizer should I use?", "en"},
		{"गेहूं कब बोना चाहिए?", "hi"},
		{"நெல் விலை என்ன?", "ta"},
		{"వరి ధర ఎంత?", "te"},
		{"ধানের দাম কত?", "bn"},
		{"ਕਣਕ ਦਾ ਭਾਅ ਕੀ ਹੈ?", "pa"},
		{"", "en"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifier.DetectLanguage(tt.message), tt.message)
	}
}
