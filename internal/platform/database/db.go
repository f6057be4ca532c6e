package database

import (
	"fmt"
	"log"
	"os"

	"github.com/StoneJar/habit-stones-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的GORM实例，作为整个应用的文档存储(Document Store)
var DB *gorm.DB

// InitDB 根据配置初始化数据库连接
// driver为"postgres"时连接PostgreSQL，否则使用本地SQLite文件
func InitDB(cfg config.DatabaseConfig) error {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN)
	default:
		dialector = sqlite.Open(cfg.Sqlite.Path)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	fmt.Println("数据库连接成功！")
	return nil
}
