package reflection

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetItemsHandler 返回(userId, habitId)的反思内容。
// 缓存命中直接返回，未命中时同步生成后返回——
// 兜底策略保证这个接口不会因为生成问题失败。
func GetItemsHandler(c *gin.Context) {
	userID := c.Query("userId")
	habitID := c.Query("habitId")
	if userID == "" || habitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少userId或habitId参数"})
		return
	}

	items, err := GetReflection(c.Request.Context(), userID, habitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取反思内容失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

// PrefetchRequestBody 定义了预生成请求体的JSON结构
type PrefetchRequestBody struct {
	UserID string `json:"userId" binding:"required"`
}

// PrefetchHandler 为一个用户的全部习惯触发后台预生成，立即返回统计结果
func PrefetchHandler(c *gin.Context) {
	var body PrefetchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := PrefetchAll(body.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "触发预生成失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
