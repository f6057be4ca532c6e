package startup

import (
	"fmt"

	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/reflection"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
)

// InitializeApplication 是应用首次启动时执行的总入口
// 按依赖顺序初始化各模块：迁移表结构，然后预热缓存
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := habit.PrimeDB(); err != nil {
		return err
	}
	if err := streak.PrimeDB(); err != nil {
		return err
	}
	if err := reflection.PrimeCachedDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
