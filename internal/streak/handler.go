package streak

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// checkInHook 在一次成功打卡之后被调用（用于调度反思内容的后台预生成）。
// 由composition root在启动时注入，避免streak包依赖reflection包。
var checkInHook func(userID, habitID string)

// SetCheckInHook 注册打卡成功后的回调。
func SetCheckInHook(hook func(userID, habitID string)) {
	checkInHook = hook
}

// CheckInRequestBody 定义了打卡请求体的JSON结构
type CheckInRequestBody struct {
	UserID      string `json:"userId" binding:"required"`
	HabitID     string `json:"habitId" binding:"required"`
	CheckInDate string `json:"checkInDate" binding:"required"`
}

// StreakResponse 定义了连续打卡记录的API响应模型
type StreakResponse struct {
	UserID          string `json:"userId"`
	HabitID         string `json:"habitId"`
	CurrentStreak   int    `json:"currentStreak"`
	LongestStreak   int    `json:"longestStreak"`
	TotalCheckIns   int    `json:"totalCheckIns"`
	LastCheckInDate string `json:"lastCheckInDate,omitempty"`
}

func toResponse(record *Streak) StreakResponse {
	resp := StreakResponse{
		UserID:        record.UserID,
		HabitID:       record.HabitID,
		CurrentStreak: record.CurrentStreak,
		LongestStreak: record.LongestStreak,
		TotalCheckIns: record.TotalCheckIns,
	}
	if record.LastCheckInDate != nil {
		resp.LastCheckInDate = record.LastCheckInDate.Format(checkInDateLayout)
	}
	return resp
}

// GetStreakHandler 查询(userId, habitId)的连续打卡记录，
// 记录不存在时返回零值记录而不是404
func GetStreakHandler(c *gin.Context) {
	userID := c.Query("userId")
	habitID := c.Query("habitId")
	if userID == "" || habitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少userId或habitId参数"})
		return
	}

	record, err := GetStreak(userID, habitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询连续打卡失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(record))
}

// CheckInHandler 处理一次打卡，更新连续打卡记录后触发后台预生成
func CheckInHandler(c *gin.Context) {
	var body CheckInRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	record, err := UpdateByCheckIn(body.UserID, body.HabitID, body.CheckInDate)
	if err != nil {
		if errors.Is(err, ErrInvalidDateFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "处理打卡失败: " + err.Error()})
		return
	}

	// 打卡已经落库，预生成是尽力而为的后台任务，失败不会影响本次响应
	if checkInHook != nil {
		checkInHook(body.UserID, body.HabitID)
	}

	c.JSON(http.StatusOK, toResponse(record))
}
