package api

import (
	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/reflection"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 习惯偏好相关的路由组 /api/habits
		habitRoutes := api.Group("/habits")
		{
			habitRoutes.POST("/preference", habit.SavePreferenceHandler)
			habitRoutes.GET("", habit.GetHabitHandler)
			habitRoutes.DELETE("", habit.DeleteHabitHandler)
		}

		// 连续打卡相关的路由组 /api/streaks
		streakRoutes := api.Group("/streaks")
		{
			streakRoutes.GET("", streak.GetStreakHandler)
			streakRoutes.PUT("/checkin", streak.CheckInHandler)
		}

		// 反思内容相关的路由组 /api/reflections
		reflectionRoutes := api.Group("/reflections")
		{
			reflectionRoutes.GET("/items", reflection.GetItemsHandler)
			reflectionRoutes.POST("/prefetch", reflection.PrefetchHandler)
		}
	}
}
