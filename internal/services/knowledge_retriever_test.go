package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieve_TopicMatch(t *testing.T) {
	retriever := NewKnowledgeRetriever(2)

	snippets := retriever.Retrieve("when should I sow rabi crops like wheat")
	require.NotEmpty(t, snippets)
	assert.Equal(t, "rabi_crops", snippets[0].Topic)
}

func TestRetrieve_ScoreOrdering(t *testing.T) {
	retriever := NewKnowledgeRetriever(3)

	// "soil health organic matter ph npk" 命中soil_health的多个关键词
	snippets := retriever.Retrieve("how to improve soil health organic matter ph npk")
	require.NotEmpty(t, snippets)
	assert.Equal(t, "soil_health", snippets[0].Topic)
	for i := 1; i < len(snippets); i++ {
		assert.GreaterOrEqual(t, snippets[i-1].Score, snippets[i].Score)
	}
}

func TestRetrieve_TopKLimit(t *testing.T) {
	retriever := NewKnowledgeRetriever(1)

	snippets := retriever.Retrieve("water irrigation drip efficient mulching")
	assert.Len(t, snippets, 1)
}

func TestRetrieve_NoMatch(t *testing.T) {
	retriever := NewKnowledgeRetriever(2)

	snippets := retriever.Retrieve("how do I file my income tax return")
	assert.Empty(t, snippets)
}

func TestNewKnowledgeRetriever_DefaultTopK(t *testing.T) {
	retriever := NewKnowledgeRetriever(0)
	assert.Equal(t, 2, retriever.topK)
}
