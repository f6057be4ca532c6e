package reflection

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// defaultDirectMaxTokens 是直连策略令牌预算的默认值。
// 期望输出包含多层嵌套条目，预算给足；后端截断导致JSON残缺时
// 解析会失败，策略按失败处理而不是返回残缺结构。
const defaultDirectMaxTokens = 2048

// directStrategy 直接对生成后端发起一次结构化生成调用。
type directStrategy struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
}

// NewDirectStrategy 构造直连策略。llm为nil时策略不可用，
// maxTokens未配置（<=0）时使用默认预算。
func NewDirectStrategy(llm llms.Model, temperature float64, maxTokens int) Strategy {
	if maxTokens <= 0 {
		maxTokens = defaultDirectMaxTokens
	}
	return &directStrategy{llm: llm, temperature: temperature, maxTokens: maxTokens}
}

func (s *directStrategy) Name() string { return "direct" }

func (s *directStrategy) Attempt(ctx context.Context, gctx *GenerationContext) (*Items, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: 缺少LLM客户端", ErrStrategyUnavailable)
	}

	raw, err := llms.GenerateFromSinglePrompt(ctx, s.llm, renderItemsPrompt(gctx),
		llms.WithTemperature(s.temperature),
		llms.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("生成后端调用失败: %w", err)
	}

	return parseItems(raw)
}
