package reflection

import (
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/platform/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewLLMClient 按配置构造生成后端的客户端（OpenAI兼容API）。
// APIKey未配置时返回(nil, nil)：策略在Attempt时把nil客户端视为不可用，
// 由流水线降级处理，应用本身照常启动。
func NewLLMClient(cfg config.LLMConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		fmt.Println("反思模块: 未配置LLM API Key，生成策略将直接降级到兜底内容。")
		return nil, nil
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("无法构造LLM客户端: %w", err)
	}
	return llm, nil
}
