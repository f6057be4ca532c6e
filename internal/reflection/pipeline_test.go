package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy 是测试用的桩策略，记录自己是否被调用过
type stubStrategy struct {
	name   string
	items  *Items
	err    error
	called bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(ctx context.Context, gctx *GenerationContext) (*Items, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func validItems() *Items {
	return &Items{
		Insights: []Insight{{Emoji: "🔥", Text: "Three days in a row."}},
		Questions: Questions{
			Question1: "What worked?",
			Question2: "What got in the way?",
		},
		Suggestions: []Suggestion{
			{Type: SuggestionTypeAnchor, Title: "a", SuggestedText: "after breakfast"},
			{Type: SuggestionTypeEnvironment, Title: "b", SuggestedText: "shoes by the door"},
			{Type: SuggestionTypeEnjoyment, Title: "c", SuggestedText: "favorite podcast"},
		},
	}
}

func TestPipeline_FirstSuccessShortCircuits(t *testing.T) {
	want := validItems()
	first := &stubStrategy{name: "first", items: want}
	second := &stubStrategy{name: "second", items: validItems()}
	p := NewPipeline(first, second)

	got, err := p.Generate(context.Background(), &GenerationContext{})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.True(t, first.called)
	assert.False(t, second.called, "前一级成功后不应再尝试后续策略")
}

func TestPipeline_FailureFallsThroughInOrder(t *testing.T) {
	first := &stubStrategy{name: "agent", err: errors.New("boom")}
	second := &stubStrategy{name: "direct", err: ErrStrategyUnavailable}
	third := &stubStrategy{name: "fallback", items: validItems()}
	p := NewPipeline(first, second, third)

	got, err := p.Generate(context.Background(), &GenerationContext{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, first.called)
	assert.True(t, second.called)
	assert.True(t, third.called)
}

func TestPipeline_AllFailuresExhausted(t *testing.T) {
	p := NewPipeline(
		&stubStrategy{name: "a", err: errors.New("boom")},
		&stubStrategy{name: "b", err: ErrStrategyUnavailable},
	)

	got, err := p.Generate(context.Background(), &GenerationContext{})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestPipeline_FallbackStrategyNeverFails(t *testing.T) {
	p := NewPipeline(
		&stubStrategy{name: "agent", err: errors.New("boom")},
		NewFallbackStrategy(),
	)

	got, err := p.Generate(context.Background(), &GenerationContext{})
	require.NoError(t, err)
	assert.Equal(t, FallbackItems(), got)
	assert.NoError(t, got.Validate(), "兜底内容自身必须通过形状校验")
}

func TestFallbackItems_ReturnsFreshCopy(t *testing.T) {
	a := FallbackItems()
	a.Insights[0].Text = "mutated"
	b := FallbackItems()
	assert.NotEqual(t, a.Insights[0].Text, b.Insights[0].Text)
}

func TestValidate_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(items *Items)
	}{
		{"洞察超过两条", func(items *Items) {
			items.Insights = append(items.Insights,
				Insight{Text: "x"}, Insight{Text: "y"})
		}},
		{"建议不足三条", func(items *Items) {
			items.Suggestions = items.Suggestions[:2]
		}},
		{"建议类型重复", func(items *Items) {
			items.Suggestions[1].Type = SuggestionTypeAnchor
		}},
		{"未知建议类型", func(items *Items) {
			items.Suggestions[0].Type = "motivation"
		}},
		{"建议缺少具体内容", func(items *Items) {
			items.Suggestions[2].SuggestedText = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := validItems()
			tt.mutate(items)
			assert.Error(t, items.Validate())
		})
	}
}

func TestValidate_AcceptsMinimalShape(t *testing.T) {
	items := validItems()
	items.Insights = nil // 洞察允许为空
	assert.NoError(t, items.Validate())
}

func TestExtractJSON_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, extractJSON(raw))

	raw = "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, extractJSON(raw))

	assert.Equal(t, `{"a": 1}`, extractJSON("  {\"a\": 1}  "))
}

func TestParseItems(t *testing.T) {
	data, err := json.Marshal(validItems())
	require.NoError(t, err)

	got, err := parseItems("```json\n" + string(data) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, validItems(), got)

	_, err = parseItems("")
	assert.Error(t, err)

	_, err = parseItems("I could not produce JSON this time.")
	assert.Error(t, err)

	// 合法JSON但形状违规同样是策略失败
	_, err = parseItems(`{"insights": [], "experimentSuggestions": []}`)
	assert.Error(t, err)
}
