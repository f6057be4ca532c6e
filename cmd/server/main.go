package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/StoneJar/habit-stones-backend/api"
	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/platform/config"
	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/StoneJar/habit-stones-backend/internal/platform/shutdown"
	"github.com/StoneJar/habit-stones-backend/internal/platform/startup"
	"github.com/StoneJar/habit-stones-backend/internal/reflection"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
	"github.com/StoneJar/habit-stones-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env是可选的，凭证也可以直接来自进程环境
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	if err := database.InitDB(cfg.Database); err != nil {
		panic(err)
	}
	if err := database.InitRedis(cfg.Database.Redis); err != nil {
		panic(err)
	}

	// 1. 显式构造反思模块的依赖（LLM客户端、搜索工具、策略链、队列）
	if err := reflection.ConfigureModule(cfg); err != nil {
		panic(fmt.Sprintf("反思模块配置失败: %v", err))
	}

	// 2. 执行应用首次启动初始化流程（迁移 + 缓存预热）
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 跨模块事件挂钩，在这里集中接线以保持模块间依赖单向
	streak.SetCheckInHook(reflection.ScheduleAfterCheckIn)
	habit.SetPreferenceChangedHook(func(userID, habitID string) {
		// 偏好实质变化：旧内容作废，后台重建
		if err := reflection.Invalidate(userID, habitID); err != nil {
			fmt.Printf("偏好变化后清理反思缓存失败: %v\n", err)
		}
		reflection.SchedulePrefetch(userID, habitID)
	})
	habit.SetHabitDeletedHook(func(userID, habitID string) {
		if err := reflection.Invalidate(userID, habitID); err != nil {
			fmt.Printf("习惯删除后清理反思缓存失败: %v\n", err)
		}
	})

	// 4. 创建两阶段停机的生命周期管理器，并启动后台调度器
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	gracefulHandle, err := gracefulMgr.NewServiceHandle("prefetch-scheduler")
	if err != nil {
		panic(err)
	}
	forcefulHandle, err := forcefulMgr.NewServiceHandle("prefetch-scheduler")
	if err != nil {
		panic(err)
	}
	reflection.StartScheduler(cfg.Prefetch, gracefulHandle, forcefulHandle)

	// 5. 组装HTTP服务
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("无法启动HTTP服务器: " + err.Error())
		}
	}()

	// 6. 阻塞等待停机信号，执行两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
