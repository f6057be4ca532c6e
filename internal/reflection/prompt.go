package reflection

import (
	"fmt"
	"strings"
	"time"
)

// 提示词组装是纯字符串拼接，对流水线而言是不透明的。
// 提示词本身使用英文，与生成后端的训练语料保持一致。

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not set"
	}
	return s
}

func formatLastCheckIn(t *time.Time) string {
	if t == nil {
		return "None yet"
	}
	return t.Format("2006-01-02")
}

// renderContextBlock 渲染习惯计划和打卡数据的公共段落
func renderContextBlock(gctx *GenerationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HABIT PLAN:\n")
	fmt.Fprintf(&b, "- Identity: %q\n", gctx.Habit.Identity)
	fmt.Fprintf(&b, "- Starting idea: %s\n", gctx.Habit.StartingIdea)
	fmt.Fprintf(&b, "- Starter habit: %s\n", gctx.Habit.StarterHabit)
	fmt.Fprintf(&b, "- Full habit: %s\n", gctx.Habit.FullHabit)
	fmt.Fprintf(&b, "- Anchor/cue: %s\n", orNotSet(gctx.Habit.HabitStack))
	fmt.Fprintf(&b, "- Environment setup: %s\n", orNotSet(gctx.Habit.HabitEnvironment))
	fmt.Fprintf(&b, "- Enjoyment/fun elements: %s\n", orNotSet(gctx.Habit.Enjoyment))
	fmt.Fprintf(&b, "\nSTREAK DATA:\n")
	fmt.Fprintf(&b, "- Current streak: %d days\n", gctx.Streak.CurrentStreak)
	fmt.Fprintf(&b, "- Longest streak: %d days\n", gctx.Streak.LongestStreak)
	fmt.Fprintf(&b, "- Total stones (check-ins): %d\n", gctx.Streak.TotalCheckIns)
	fmt.Fprintf(&b, "- Last check-in: %s\n", formatLastCheckIn(gctx.Streak.LastCheckInDate))
	return b.String()
}

// jsonShapeBlock 描述生成后端必须返回的JSON形状
const jsonShapeBlock = `{
  "insights": [
    { "emoji": "💪", "text": "One short observation about their week or resilience.", "highlight": "Optional one-sentence takeaway." }
  ],
  "reflectionQuestions": {
    "question1": "What helped you show up — even a little? (optional)",
    "question2": "On days it didn't happen, what made starting feel harder? (optional)"
  },
  "experimentSuggestions": [
    { "type": "anchor", "title": "Strengthen your anchor", "currentValue": "...", "suggestedText": "...", "why": "..." },
    { "type": "environment", "title": "Prep your environment", "currentValue": "...", "suggestedText": "...", "why": "..." },
    { "type": "enjoyment", "title": "Make it more enjoyable", "currentValue": "...", "suggestedText": "...", "why": "..." }
  ]
}`

// rulesBlock 是对生成结果的结构约束说明，与Items.Validate保持一致
const rulesBlock = `RULES:
- insights: 0 to 2 items. Only add insights that are relevant. Use short, warm, second-person text.
- reflectionQuestions: keep question1 and question2 as prompts that invite short optional answers. You may rephrase slightly for this habit.
- experimentSuggestions: exactly 3 items, one for type "anchor", one "environment", one "enjoyment". Use their actual current values for currentValue. suggestedText must be one concrete, small experiment (1-2 sentences). why is one short sentence.
- Return only the JSON object, no other text.`

// renderItemsPrompt 渲染直连策略使用的提示词
func renderItemsPrompt(gctx *GenerationContext) string {
	var b strings.Builder
	b.WriteString("You are a supportive habit coach. Based on this user's habit plan and streak data, generate reflection items for a weekly reflection flow.\n\n")
	b.WriteString(renderContextBlock(gctx))
	b.WriteString("\nGenerate a JSON object with exactly this structure (no markdown, no code block wrapper):\n\n")
	b.WriteString(jsonShapeBlock)
	b.WriteString("\n\n")
	b.WriteString(rulesBlock)
	return b.String()
}

// renderAgentPrompt 渲染Agent策略使用的提示词。
// Agent可以使用搜索工具查找James Clear / Atomic Habits的内容来丰富输出，
// 最终回答必须是同样形状的JSON对象。
func renderAgentPrompt(gctx *GenerationContext) string {
	var b strings.Builder
	b.WriteString("You are a supportive habit coach who helps users reflect on their habits using evidence-based ideas from James Clear (Atomic Habits) and similar sources.\n\n")
	b.WriteString("You have access to a web search tool. You may use it to find relevant James Clear quotes, Atomic Habits principles, or habit-building advice that could enrich the insights or experiment suggestions. Do not overuse search; one or two targeted searches are enough.\n\n")
	b.WriteString("Generate reflection items for this user's weekly reflection.\n\n")
	b.WriteString(renderContextBlock(gctx))
	b.WriteString("\nYour final answer must be a single valid JSON object (no markdown, no code fence) with exactly this structure:\n\n")
	b.WriteString(jsonShapeBlock)
	b.WriteString("\n\n")
	b.WriteString(rulesBlock)
	return b.String()
}
