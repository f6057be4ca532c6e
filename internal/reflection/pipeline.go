package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrGenerationExhausted 表示流水线里的所有策略都失败了。
// 链尾配置了兜底策略时这个错误不可能出现；一旦出现就作为硬错误上报。
var ErrGenerationExhausted = errors.New("所有生成策略都失败了")

// ErrStrategyUnavailable 表示某个策略因为能力或凭证缺失而不可用。
// 流水线对它的处理与运行时失败完全相同：跳到下一个策略。
var ErrStrategyUnavailable = errors.New("生成策略不可用")

// Strategy 是生成流水线中单个策略的能力接口。
// Attempt要么返回一份通过形状校验的内容，要么返回错误，
// 失败以返回值表达，不允许用panic传递控制流。
type Strategy interface {
	// Name 返回策略名，用于日志
	Name() string
	// Attempt 基于给定上下文尝试生成一份结构化反思内容
	Attempt(ctx context.Context, gctx *GenerationContext) (*Items, error)
}

// Pipeline 按顺序尝试一组策略，第一个成功的结果立即返回。
// 每个策略的失败都被记录并吞掉，不向上传播，直到整条链耗尽。
type Pipeline struct {
	strategies []Strategy
}

// NewPipeline 按给定顺序构造生成流水线。
// 调用方应把永不失败的兜底策略放在链尾。
func NewPipeline(strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies}
}

// Generate 依次执行各策略，返回第一个成功的结果。
// 只有所有策略都失败时才返回ErrGenerationExhausted。
func (p *Pipeline) Generate(ctx context.Context, gctx *GenerationContext) (*Items, error) {
	for _, s := range p.strategies {
		items, err := s.Attempt(ctx, gctx)
		if err != nil {
			fmt.Printf("生成流水线: 策略 [%s] 失败，降级到下一级: %v\n", s.Name(), err)
			continue
		}
		return items, nil
	}
	return nil, ErrGenerationExhausted
}

// extractJSON 剥离生成结果外层可能存在的markdown代码块包装。
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// parseItems 把生成后端返回的原始文本解析成Items并做形状校验。
// JSON不合法或形状违规都是该策略的失败。
func parseItems(raw string) (*Items, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("生成结果为空文本")
	}

	var items Items
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("生成结果不是合法的JSON: %w", err)
	}
	if err := items.Validate(); err != nil {
		return nil, fmt.Errorf("生成结果形状校验失败: %w", err)
	}
	return &items, nil
}
