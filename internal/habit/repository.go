package habit

import (
	"errors"
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// findByID 按(userID, habitID)查询一条习惯记录，找不到时返回(nil, nil)
func findByID(userID, habitID string) (*Habit, error) {
	var h Habit
	err := database.DB.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询习惯记录失败: %w", err)
	}
	return &h, nil
}

// upsert 以(user_id, habit_id)为冲突键原子地插入或更新一条习惯记录
func upsert(h *Habit) error {
	err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"starting_idea", "identity", "enjoyment",
			"starter_habit", "full_habit", "habit_stack", "habit_environment",
			"updated_at",
		}),
	}).Create(h).Error
	if err != nil {
		return fmt.Errorf("写入习惯记录失败: %w", err)
	}
	return nil
}

// listByUser 返回一个用户的全部习惯记录
func listByUser(userID string) ([]Habit, error) {
	var habits []Habit
	if err := database.DB.Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("查询用户习惯列表失败: %w", err)
	}
	return habits, nil
}

// deleteByID 删除一条习惯记录（软删除），记录不存在时不报错
func deleteByID(userID, habitID string) error {
	err := database.DB.Where("user_id = ? AND habit_id = ?", userID, habitID).Delete(&Habit{}).Error
	if err != nil {
		return fmt.Errorf("删除习惯记录失败: %w", err)
	}
	return nil
}
