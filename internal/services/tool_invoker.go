package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/database"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/mcp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cacheableTools 结果短期可复用的工具
var cacheableTools = map[string]bool{
	ToolWeather:    true,
	ToolCropPrice:  true,
	ToolMandiPrice: true,
}

// ToolInvoker 工具调用器，负责并发分发与故障隔离
type ToolInvoker struct {
	client   *mcp.Client
	redis    *redis.Client
	cacheTTL time.Duration
	timeout  time.Duration
}

// NewToolInvoker 创建工具调用器
func NewToolInvoker(client *mcp.Client, rdb *redis.Client) *ToolInvoker {
	cfg := config.AppConfig

	cacheTTL := 5 * time.Minute
	timeout := 10 * time.Second
	if cfg != nil {
		if cfg.Redis.ToolCacheTTL > 0 {
			cacheTTL = time.Duration(cfg.Redis.ToolCacheTTL) * time.Second
		}
		if cfg.MCP.ToolTimeoutSec > 0 {
			timeout = time.Duration(cfg.MCP.ToolTimeoutSec) * time.Second
		}
	}

	return &ToolInvoker{
		client:   client,
		redis:    rdb,
		cacheTTL: cacheTTL,
		timeout:  timeout,
	}
}

// NewDefaultToolInvoker 使用全局客户端创建工具调用器
func NewDefaultToolInvoker() *ToolInvoker {
	return NewToolInvoker(mcp.GetGlobalClient(), database.RedisClient)
}

// InvokeAll 并发调用所有工具，等待全部完成。
// 单个工具失败只记录日志并从结果中剔除，不影响其他调用。
func (ti *ToolInvoker) InvokeAll(ctx context.Context, tools []string, params map[string]interface{}) map[string]json.RawMessage {
	results := make(map[string]json.RawMessage)
	if len(tools) == 0 || ti.client == nil {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, tool := range tools {
		wg.Add(1)
		go func(toolName string) {
			defer wg.Done()

			data, err := ti.invokeOne(ctx, toolName, params)
			if err != nil {
				logger.Warn("工具调用失败，结果忽略",
					zap.String("tool", toolName),
					zap.Error(err))
				return
			}

			mu.Lock()
			results[toolName] = data
			mu.Unlock()
		}(tool)
	}

	wg.Wait()
	return results
}

// invokeOne 调用单个工具：缓存命中直接返回，否则经熔断器转发网关
func (ti *ToolInvoker) invokeOne(ctx context.Context, toolName string, params map[string]interface{}) (json.RawMessage, error) {
	cacheKey := ti.cacheKey(toolName, params)

	if cacheableTools[toolName] && ti.redis != nil {
		if cached, err := ti.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			logger.Debug("工具结果缓存命中", zap.String("tool", toolName))
			return json.RawMessage(cached), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, ti.timeout)
	defer cancel()

	var data json.RawMessage
	breaker := GetCircuitBreaker("tool:" + toolName)
	err := breaker.Call(func() error {
		var callErr error
		data, callErr = ti.client.InvokeTool(callCtx, toolName, params)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if cacheableTools[toolName] && ti.redis != nil {
		if err := ti.redis.Set(ctx, cacheKey, []byte(data), ti.cacheTTL).Err(); err != nil {
			logger.Debug("缓存工具结果失败", zap.String("tool", toolName), zap.Error(err))
		}
	}

	return data, nil
}

// cacheKey 按工具名与参数生成稳定缓存键
func (ti *ToolInvoker) cacheKey(toolName string, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha1.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, params[k])
	}
	return fmt.Sprintf("tool:%s:%s", toolName, hex.EncodeToString(h.Sum(nil)))
}
