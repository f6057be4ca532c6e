package reflection

import (
	"fmt"
	"os"

	"github.com/StoneJar/habit-stones-backend/internal/platform/config"
	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/StoneJar/habit-stones-backend/pkg/lifecycle"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/serpapi"
)

// ConfigureModule 在应用启动时显式构造反思模块的全部依赖：
// LLM客户端、搜索工具、三级策略链和调度器队列。
// 这里是生成流水线的composition root，凭证缺失只会让对应策略不可用，
// 不会阻止应用启动。
func ConfigureModule(cfg *config.Config) error {
	llm, err := NewLLMClient(cfg.LLM)
	if err != nil {
		return err
	}

	searchTool := newSearchTool(cfg.Search)

	agent, err := NewAgentStrategy(llm, searchTool, cfg.LLM.Temperature)
	if err != nil {
		return err
	}

	// 策略顺序固定：Agent增强 → 直连生成 → 静态兜底
	pipeline = NewPipeline(
		agent,
		NewDirectStrategy(llm, cfg.LLM.Temperature, cfg.LLM.MaxTokens),
		NewFallbackStrategy(),
	)

	initializeScheduler(cfg.Prefetch.QueueSize)
	return nil
}

// newSearchTool 构造Agent策略的搜索工具。
// 凭证缺失时返回nil，Agent策略随之不可用。
func newSearchTool(cfg config.SearchConfig) tools.Tool {
	if cfg.SerpAPIKey == "" {
		fmt.Println("反思模块: 未配置搜索API Key，Agent策略不可用。")
		return nil
	}

	// serpapi客户端从环境变量读取凭证
	os.Setenv("SERPAPI_API_KEY", cfg.SerpAPIKey)
	tool, err := serpapi.New()
	if err != nil {
		fmt.Printf("反思模块: 无法初始化搜索工具，Agent策略不可用: %v\n", err)
		return nil
	}
	return tool
}

// PrimeCachedDB 负责初始化reflection模块的数据库部分并预热Redis
func PrimeCachedDB() error {
	if err := database.DB.AutoMigrate(&CacheEntry{}); err != nil {
		return fmt.Errorf("无法迁移reflection_cache表: %w", err)
	}
	fmt.Println("ReflectionCache数据库表迁移成功。")

	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

// StartScheduler 启动后台预生成调度器。
// 它接收两个handle来管理两阶段停机。
func StartScheduler(cfg config.PrefetchConfig, gracefulHandle, forcefulHandle *lifecycle.Handle) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	go startScheduler(workers, gracefulHandle, forcefulHandle)
}
