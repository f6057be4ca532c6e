package reflection

import (
	"fmt"
)

// 实验建议的类型构成一个封闭集合，三条建议各占一类
const (
	SuggestionTypeAnchor      = "anchor"
	SuggestionTypeEnvironment = "environment"
	SuggestionTypeEnjoyment   = "enjoyment"
)

// maxInsights 是一份反思内容中洞察条目的上限
const maxInsights = 2

// Insight 是一条关于用户本周表现的简短观察
type Insight struct {
	Emoji     string `json:"emoji"`
	Text      string `json:"text"`
	Highlight string `json:"highlight,omitempty"`
}

// Questions 是反思流程中的两个开放式问题
type Questions struct {
	Question1 string `json:"question1"`
	Question2 string `json:"question2"`
}

// Suggestion 是一条具体的小实验建议
type Suggestion struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	CurrentValue  string `json:"currentValue"`
	SuggestedText string `json:"suggestedText"`
	Why           string `json:"why"`
}

// Items 是生成流水线的结构化输出：洞察、反思问题和实验建议。
// 这个结构的JSON形状由生成后端的契约决定，缓存层只把它当作不透明负载。
type Items struct {
	Insights    []Insight    `json:"insights"`
	Questions   Questions    `json:"reflectionQuestions"`
	Suggestions []Suggestion `json:"experimentSuggestions"`
}

// Validate 校验一份生成结果的结构形状：
//   - 洞察最多2条
//   - 实验建议恰好3条，anchor/environment/enjoyment各一条
//   - 每条建议必须给出具体的实验内容
//
// 任何违反都让该策略视为失败，绝不静默截断。
func (items *Items) Validate() error {
	if items == nil {
		return fmt.Errorf("生成结果为空")
	}
	if len(items.Insights) > maxInsights {
		return fmt.Errorf("洞察条目过多: %d (最多%d条)", len(items.Insights), maxInsights)
	}
	if len(items.Suggestions) != 3 {
		return fmt.Errorf("实验建议必须恰好3条，实际%d条", len(items.Suggestions))
	}

	seen := make(map[string]bool, 3)
	for _, s := range items.Suggestions {
		switch s.Type {
		case SuggestionTypeAnchor, SuggestionTypeEnvironment, SuggestionTypeEnjoyment:
		default:
			return fmt.Errorf("未知的实验建议类型: %q", s.Type)
		}
		if seen[s.Type] {
			return fmt.Errorf("实验建议类型重复: %q", s.Type)
		}
		seen[s.Type] = true
		if s.SuggestedText == "" {
			return fmt.Errorf("类型为%q的实验建议缺少具体内容", s.Type)
		}
	}
	return nil
}

// FallbackItems 返回预先编写的兜底反思内容。
// 它是流水线的最后一级策略，保证任何生成失败都不会暴露给用户。
// 每次调用返回一份新的拷贝，调用方可以安全持有。
func FallbackItems() *Items {
	return &Items{
		Insights: []Insight{
			{
				Emoji:     "💪",
				Text:      "You showed up this week — that's the whole game.",
				Highlight: "Every check-in is a vote for the person you want to become.",
			},
		},
		Questions: Questions{
			Question1: "What helped you show up — even a little? (optional)",
			Question2: "On days it didn't happen, what made starting feel harder? (optional)",
		},
		Suggestions: []Suggestion{
			{
				Type:          SuggestionTypeAnchor,
				Title:         "Strengthen your anchor",
				CurrentValue:  "Your current anchor",
				SuggestedText: "At 5:30pm when I close my laptop",
				Why:           "A specific time creates a sharper trigger than a vague \"after work\" — your brain knows exactly when to switch modes.",
			},
			{
				Type:          SuggestionTypeEnvironment,
				Title:         "Prep your environment",
				CurrentValue:  "Your current setup",
				SuggestedText: "Gym bag packed with clothes + water + shoes inside, on the front seat of my car",
				Why:           "When everything is ready and visible, there's nothing left to decide — you just go.",
			},
			{
				Type:          SuggestionTypeEnjoyment,
				Title:         "Make it more enjoyable",
				CurrentValue:  "What you enjoy",
				SuggestedText: "Play my hype gym playlist the moment I get in the car",
				Why:           "Pairing something you love with the habit makes starting feel like a reward, not a chore.",
			},
		},
	}
}
