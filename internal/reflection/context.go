package reflection

import (
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
)

// GenerationContext 是一次生成所需的全部输入：
// 习惯偏好的快照加上连续打卡的快照。
// 它由调用方独占，策略之间不共享可变状态。
type GenerationContext struct {
	UserID  string
	HabitID string
	Habit   habit.Context
	Streak  streak.Snapshot
}

// BuildGenerationContext 从文档存储组装一次生成的上下文。
// 习惯不存在时返回错误——没有偏好就没有可反思的内容。
func BuildGenerationContext(userID, habitID string) (*GenerationContext, error) {
	habitCtx, found, err := habit.GetContext(userID, habitID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("习惯不存在: userId=%s habitId=%s", userID, habitID)
	}

	record, err := streak.GetStreak(userID, habitID)
	if err != nil {
		return nil, err
	}

	return &GenerationContext{
		UserID:  userID,
		HabitID: habitID,
		Habit:   habitCtx,
		Streak:  record.ToSnapshot(),
	}, nil
}
