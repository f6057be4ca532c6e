package habit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PreferenceRequestBody 定义了保存习惯偏好时请求体的JSON结构
type PreferenceRequestBody struct {
	UserID           string `json:"userId" binding:"required"`
	HabitID          string `json:"habitId"`
	StartingIdea     string `json:"startingIdea"`
	Identity         string `json:"identity"`
	Enjoyment        string `json:"enjoyment"`
	StarterHabit     string `json:"starterHabit"`
	FullHabit        string `json:"fullHabit"`
	HabitStack       string `json:"habitStack"`
	HabitEnvironment string `json:"habitEnvironment"`
}

// HabitResponse 定义了习惯偏好的API响应模型
type HabitResponse struct {
	UserID           string `json:"userId"`
	HabitID          string `json:"habitId"`
	StartingIdea     string `json:"startingIdea"`
	Identity         string `json:"identity"`
	Enjoyment        string `json:"enjoyment"`
	StarterHabit     string `json:"starterHabit"`
	FullHabit        string `json:"fullHabit"`
	HabitStack       string `json:"habitStack"`
	HabitEnvironment string `json:"habitEnvironment"`
}

func toResponse(h *Habit) HabitResponse {
	return HabitResponse{
		UserID:           h.UserID,
		HabitID:          h.HabitID,
		StartingIdea:     h.StartingIdea,
		Identity:         h.Identity,
		Enjoyment:        h.Enjoyment,
		StarterHabit:     h.StarterHabit,
		FullHabit:        h.FullHabit,
		HabitStack:       h.HabitStack,
		HabitEnvironment: h.HabitEnvironment,
	}
}

// SavePreferenceHandler 处理保存/更新习惯偏好的请求
func SavePreferenceHandler(c *gin.Context) {
	var body PreferenceRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	record, err := SavePreference(body.UserID, body.HabitID, Context{
		StartingIdea:     body.StartingIdea,
		Identity:         body.Identity,
		Enjoyment:        body.Enjoyment,
		StarterHabit:     body.StarterHabit,
		FullHabit:        body.FullHabit,
		HabitStack:       body.HabitStack,
		HabitEnvironment: body.HabitEnvironment,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存习惯偏好失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(record))
}

// GetHabitHandler 按(userId, habitId)查询习惯偏好
func GetHabitHandler(c *gin.Context) {
	userID := c.Query("userId")
	habitID := c.Query("habitId")
	if userID == "" || habitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少userId或habitId参数"})
		return
	}

	record, err := GetHabit(userID, habitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询习惯偏好失败: " + err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "习惯不存在"})
		return
	}

	c.JSON(http.StatusOK, toResponse(record))
}

// DeleteHabitHandler 删除一个习惯并级联清理其反思缓存
func DeleteHabitHandler(c *gin.Context) {
	userID := c.Query("userId")
	habitID := c.Query("habitId")
	if userID == "" || habitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少userId或habitId参数"})
		return
	}

	if err := DeleteHabit(userID, habitID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除习惯失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "习惯已删除"})
}
