package streak

import (
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
)

// PrimeDB 是streak模块的初始化总入口，负责迁移数据库表结构
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Streak{}); err != nil {
		return fmt.Errorf("无法迁移streak表: %w", err)
	}
	fmt.Println("Streak数据库表迁移成功。")
	return nil
}
