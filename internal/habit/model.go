package habit

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯偏好在文档存储中的持久化模型。
// 每个(UserID, HabitID)组合唯一对应一条记录，偏好字段全部是自由文本，允许为空。
type Habit struct {
	ID uint `gorm:"primarykey"`

	// UserID 与 HabitID 共同构成业务主键
	UserID  string `gorm:"type:varchar(64);uniqueIndex:idx_user_habit;not null"`
	HabitID string `gorm:"type:varchar(64);uniqueIndex:idx_user_habit;not null"`

	// 习惯偏好的七个自由文本字段，来自引导流程
	StartingIdea     string // 最初的想法
	Identity         string // 想成为的身份
	Enjoyment        string // 喜欢的元素
	StarterHabit     string // 起步习惯
	FullHabit        string // 完整习惯
	HabitStack       string // 习惯锚点/叠加
	HabitEnvironment string // 环境准备

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Context 是组装提示词时使用的习惯上下文快照。
// 它只是偏好字段的一份只读拷贝，不携带任何持久化信息。
type Context struct {
	StartingIdea     string `json:"startingIdea"`
	Identity         string `json:"identity"`
	Enjoyment        string `json:"enjoyment"`
	StarterHabit     string `json:"starterHabit"`
	FullHabit        string `json:"fullHabit"`
	HabitStack       string `json:"habitStack"`
	HabitEnvironment string `json:"habitEnvironment"`
}

// ToContext 从持久化模型提取提示词上下文。
func (h *Habit) ToContext() Context {
	return Context{
		StartingIdea:     h.StartingIdea,
		Identity:         h.Identity,
		Enjoyment:        h.Enjoyment,
		StarterHabit:     h.StarterHabit,
		FullHabit:        h.FullHabit,
		HabitStack:       h.HabitStack,
		HabitEnvironment: h.HabitEnvironment,
	}
}
