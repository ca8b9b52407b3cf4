package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus指标集合
var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_chat_requests_total",
		Help: "Total chat requests by outcome",
	}, []string{"outcome"})

	chatRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "farmchat_chat_request_duration_seconds",
		Help:    "End-to-end chat request latency",
		Buckets: prometheus.DefBuckets,
	})

	toolInvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_tool_invocations_total",
		Help: "Tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	llmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "farmchat_llm_latency_seconds",
		Help:    "LLM completion latency",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
	})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_llm_tokens_total",
		Help: "LLM token usage by direction",
	}, []string{"direction"})

	workflowStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_workflow_steps_total",
		Help: "Workflow step executions by workflow type and result",
	}, []string{"workflow_type", "result"})

	transcriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_voice_transcriptions_total",
		Help: "Voice transcriptions by outcome",
	}, []string{"outcome"})

	mediaAnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmchat_media_analyses_total",
		Help: "Media analyses by file type and outcome",
	}, []string{"file_type", "outcome"})
)

// MetricsService 指标记录服务
type MetricsService struct{}

// NewMetricsService 创建指标服务
func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// ServeHTTP 以Prometheus文本格式输出指标
func (m *MetricsService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordChatRequest 记录一次对话请求
func (m *MetricsService) RecordChatRequest(outcome string, elapsed time.Duration) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
	chatRequestDuration.Observe(elapsed.Seconds())
}

// RecordToolInvocation 记录一次工具调用
func (m *MetricsService) RecordToolInvocation(tool, outcome string) {
	toolInvocationsTotal.WithLabelValues(tool, outcome).Inc()
}

// RecordLLMCall 记录一次LLM调用
func (m *MetricsService) RecordLLMCall(elapsed time.Duration, promptTokens, completionTokens int) {
	llmLatency.Observe(elapsed.Seconds())
	llmTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	llmTokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
}

// RecordWorkflowStep 记录一次工作流步骤执行
func (m *MetricsService) RecordWorkflowStep(workflowType, result string) {
	workflowStepsTotal.WithLabelValues(workflowType, result).Inc()
}

// RecordTranscription 记录一次语音转写
func (m *MetricsService) RecordTranscription(outcome string) {
	transcriptionsTotal.WithLabelValues(outcome).Inc()
}

// RecordMediaAnalysis 记录一次媒体分析
func (m *MetricsService) RecordMediaAnalysis(fileType, outcome string) {
	mediaAnalysesTotal.WithLabelValues(fileType, outcome).Inc()
}
