package reflection

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// agentStrategy 用带搜索工具的ReAct Agent生成反思内容。
// Agent可以检索外部资料（James Clear / Atomic Habits相关内容）来丰富输出。
// LLM或搜索工具缺失时策略不可用，与运行时失败同样处理。
type agentStrategy struct {
	executor    *agents.Executor
	temperature float64
}

// NewAgentStrategy 构造Agent策略。
// llm或searchTool为nil时返回一个永远不可用的策略占位，
// 这样流水线的链条结构不随配置变化。
func NewAgentStrategy(llm llms.Model, searchTool tools.Tool, temperature float64) (Strategy, error) {
	if llm == nil || searchTool == nil {
		return &agentStrategy{}, nil
	}

	executor, err := agents.Initialize(
		llm,
		[]tools.Tool{searchTool},
		agents.ZeroShotReactDescription,
		agents.WithMaxIterations(5),
	)
	if err != nil {
		return nil, fmt.Errorf("无法初始化反思Agent: %w", err)
	}
	return &agentStrategy{executor: &executor, temperature: temperature}, nil
}

func (s *agentStrategy) Name() string { return "agent" }

func (s *agentStrategy) Attempt(ctx context.Context, gctx *GenerationContext) (*Items, error) {
	if s.executor == nil {
		return nil, fmt.Errorf("%w: 缺少LLM客户端或搜索工具", ErrStrategyUnavailable)
	}

	answer, err := chains.Run(ctx, *s.executor, renderAgentPrompt(gctx),
		chains.WithTemperature(s.temperature))
	if err != nil {
		return nil, fmt.Errorf("Agent执行失败: %w", err)
	}

	return parseItems(answer)
}
