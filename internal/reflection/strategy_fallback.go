package reflection

import (
	"context"
)

// fallbackStrategy 返回预先编写的兜底内容，永不失败。
// 它保证整条流水线总能成功结束，生成问题对用户完全不可见。
type fallbackStrategy struct{}

// NewFallbackStrategy 构造兜底策略。
func NewFallbackStrategy() Strategy {
	return fallbackStrategy{}
}

func (fallbackStrategy) Name() string { return "fallback" }

func (fallbackStrategy) Attempt(_ context.Context, _ *GenerationContext) (*Items, error) {
	return FallbackItems(), nil
}
