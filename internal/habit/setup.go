package habit

import (
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
)

// PrimeDB 是habit模块的初始化总入口，负责迁移数据库表结构
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Habit{}); err != nil {
		return fmt.Errorf("无法迁移habit表: %w", err)
	}
	fmt.Println("Habit数据库表迁移成功。")
	return nil
}
