package streak

import (
	"time"

	"gorm.io/gorm"
)

// Streak 定义了连续打卡记录在文档存储中的持久化模型。
// 每个(UserID, HabitID)组合唯一对应一条记录。
type Streak struct {
	ID uint `gorm:"primarykey"`

	UserID  string `gorm:"type:varchar(64);uniqueIndex:idx_streak_user_habit;not null"`
	HabitID string `gorm:"type:varchar(64);uniqueIndex:idx_streak_user_habit;not null"`

	// CurrentStreak 是以LastCheckInDate结尾的连续打卡天数
	CurrentStreak int `gorm:"not null;default:0"`

	// LongestStreak 是历史最长连续天数，只增不减，
	// 任何更新之后都满足 LongestStreak >= CurrentStreak
	LongestStreak int `gorm:"not null;default:0"`

	// TotalCheckIns 是累计打卡次数（产品术语：石子），同一天重复打卡不计入
	TotalCheckIns int `gorm:"not null;default:0"`

	// LastCheckInDate 是最近一次打卡的日期（UTC零点），尚未打卡时为空
	LastCheckInDate *time.Time

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Snapshot 是提供给生成流水线的连续打卡快照，不携带持久化信息。
type Snapshot struct {
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	TotalCheckIns   int        `json:"totalCheckIns"`
	LastCheckInDate *time.Time `json:"lastCheckInDate"`
}

// ToSnapshot 从持久化模型提取快照。
func (s *Streak) ToSnapshot() Snapshot {
	return Snapshot{
		CurrentStreak:   s.CurrentStreak,
		LongestStreak:   s.LongestStreak,
		TotalCheckIns:   s.TotalCheckIns,
		LastCheckInDate: s.LastCheckInDate,
	}
}
