package reflection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Redis 键名常量 ---

const (
	// DataKey 是一个 Redis Hash 的键，缓存序列化后的反思内容。
	// Field: "userId:habitId"
	// Value: cachePayload 结构体的JSON序列化字符串
	DataKey = "reflection:data"

	// CachedAtKey 是一个 Redis Hash 的键，单独存放每个条目的写入时间（unix秒）。
	// IsFresh只读这个Hash，新鲜度检查不需要传输内容本身。
	CachedAtKey = "reflection:cached_at"
)

// CacheTTL 是缓存条目的逻辑有效期。
// 条目年龄在TTL之内时缓存是权威的，必须跳过生成。
const CacheTTL = time.Hour

// physicalTTL 是Redis字段的物理清理时限。
// 它比逻辑TTL宽松，新鲜度永远以代码里的cachedAt比较为准，
// 所以一个条目可以仍然存在于存储中但读取时按过期处理。
const physicalTTL = 2 * CacheTTL

// nowFunc 允许测试注入时钟
var nowFunc = time.Now

// CacheEntry 定义了反思缓存在文档存储中的持久化模型。
// 它是Redis热层的落盘副本，重启后用于预热，Redis降级时用于兜底读取。
type CacheEntry struct {
	ID uint `gorm:"primarykey"`

	UserID  string `gorm:"type:varchar(64);uniqueIndex:idx_cache_user_habit;not null"`
	HabitID string `gorm:"type:varchar(64);uniqueIndex:idx_cache_user_habit;not null"`

	// Data 是反思内容的JSON序列化字符串，缓存层不关心其内部结构
	Data string `gorm:"type:text;not null"`

	// CachedAt 是写入时间，新鲜度判断的唯一依据
	CachedAt time.Time `gorm:"not null"`
}

// cachePayload 定义了在Redis DataKey Hash中存储的JSON结构
type cachePayload struct {
	Data     *Items    `json:"data"`
	CachedAt time.Time `json:"cachedAt"`
}

// cacheField 组装Redis Hash的field名
func cacheField(userID, habitID string) string {
	return userID + ":" + habitID
}

// entryFresh 判断写入时间在now视角下是否仍然新鲜
func entryFresh(cachedAt, now time.Time) bool {
	return now.Sub(cachedAt) <= CacheTTL
}

// GetCached 返回(userID, habitID)的缓存反思内容。
// 条目不存在或已过期时返回(nil, nil)——缓存未命中是正常状态，不是错误，
// 调用方此时应该走生成流水线。
// 优先读Redis；Redis未命中或出错时降级读文档存储里的落盘副本。
func GetCached(userID, habitID string) (*Items, error) {
	result, err := database.RDB.HGet(database.Ctx, DataKey, cacheField(userID, habitID)).Result()
	if err == nil {
		var payload cachePayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			return nil, fmt.Errorf("反序列化缓存内容失败: %w", err)
		}
		if !entryFresh(payload.CachedAt, nowFunc()) {
			return nil, nil
		}
		return payload.Data, nil
	}
	if err != redis.Nil {
		fmt.Printf("反思缓存: 读取Redis失败，降级到文档存储: %v\n", err)
	}

	// Redis未命中：可能是重启后尚未预热，也可能确实没有，落盘副本说了算
	entry, err := findEntry(userID, habitID)
	if err != nil {
		return nil, err
	}
	if entry == nil || !entryFresh(entry.CachedAt, nowFunc()) {
		return nil, nil
	}

	var items Items
	if err := json.Unmarshal([]byte(entry.Data), &items); err != nil {
		return nil, fmt.Errorf("反序列化缓存内容失败: %w", err)
	}
	return &items, nil
}

// SaveCached 把一份反思内容写入缓存，整体替换旧条目并刷新写入时间。
// 写入顺序：先落盘到文档存储，再写Redis热层。
func SaveCached(userID, habitID string, items *Items) error {
	now := nowFunc()

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("序列化反思内容失败: %w", err)
	}

	entry := CacheEntry{
		UserID:   userID,
		HabitID:  habitID,
		Data:     string(data),
		CachedAt: now,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "cached_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("落盘反思缓存失败: %w", err)
	}

	payload, err := json.Marshal(cachePayload{Data: items, CachedAt: now})
	if err != nil {
		return fmt.Errorf("序列化缓存负载失败: %w", err)
	}

	field := cacheField(userID, habitID)
	pipe := database.RDB.Pipeline()
	pipe.HSet(database.Ctx, DataKey, field, payload)
	pipe.HSet(database.Ctx, CachedAtKey, field, strconv.FormatInt(now.Unix(), 10))
	// 物理清理交给Redis，逻辑新鲜度始终由cachedAt比较决定
	pipe.HExpire(database.Ctx, DataKey, physicalTTL, field)
	pipe.HExpire(database.Ctx, CachedAtKey, physicalTTL, field)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		// 落盘已经成功，热层写失败只影响读取性能，不影响正确性
		fmt.Printf("反思缓存: 写入Redis热层失败: %v\n", err)
	}

	return nil
}

// Invalidate 无条件删除(userID, habitID)的缓存条目。
// 在习惯被删除或偏好发生实质变化时调用，避免继续提供与习惯脱节的内容。
func Invalidate(userID, habitID string) error {
	err := database.DB.Unscoped().
		Where("user_id = ? AND habit_id = ?", userID, habitID).
		Delete(&CacheEntry{}).Error
	if err != nil {
		return fmt.Errorf("删除反思缓存失败: %w", err)
	}

	field := cacheField(userID, habitID)
	pipe := database.RDB.Pipeline()
	pipe.HDel(database.Ctx, DataKey, field)
	pipe.HDel(database.Ctx, CachedAtKey, field)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("反思缓存: 清理Redis热层失败: %v\n", err)
	}
	return nil
}

// IsFresh 只做存在性+新鲜度检查，不传输内容本身。
// 调度器用它来跳过不必要的重新生成。
func IsFresh(userID, habitID string) bool {
	result, err := database.RDB.HGet(database.Ctx, CachedAtKey, cacheField(userID, habitID)).Result()
	if err == nil {
		unix, parseErr := strconv.ParseInt(result, 10, 64)
		if parseErr == nil {
			return entryFresh(time.Unix(unix, 0), nowFunc())
		}
	} else if err != redis.Nil {
		fmt.Printf("反思缓存: 读取Redis新鲜度失败，降级到文档存储: %v\n", err)
	}

	entry, err := findEntry(userID, habitID)
	if err != nil || entry == nil {
		return false
	}
	return entryFresh(entry.CachedAt, nowFunc())
}

// findEntry 读取文档存储里的落盘副本，找不到时返回(nil, nil)
func findEntry(userID, habitID string) (*CacheEntry, error) {
	var entry CacheEntry
	err := database.DB.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询反思缓存失败: %w", err)
	}
	return &entry, nil
}

// WarmupCache 把文档存储里仍然新鲜的缓存条目预热到Redis。
// 在应用启动时调用一次。
func WarmupCache() error {
	var entries []CacheEntry
	cutoff := nowFunc().Add(-CacheTTL)
	if err := database.DB.Where("cached_at > ?", cutoff).Find(&entries).Error; err != nil {
		return fmt.Errorf("无法从文档存储读取反思缓存: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("无新鲜的反思缓存条目，无需预热。")
		return nil
	}

	pipe := database.RDB.Pipeline()
	for _, entry := range entries {
		var items Items
		if err := json.Unmarshal([]byte(entry.Data), &items); err != nil {
			fmt.Printf("反思缓存: 跳过无法解析的落盘条目 %s:%s: %v\n", entry.UserID, entry.HabitID, err)
			continue
		}
		payload, err := json.Marshal(cachePayload{Data: &items, CachedAt: entry.CachedAt})
		if err != nil {
			continue
		}
		field := cacheField(entry.UserID, entry.HabitID)
		pipe.HSet(database.Ctx, DataKey, field, payload)
		pipe.HSet(database.Ctx, CachedAtKey, field, strconv.FormatInt(entry.CachedAt.Unix(), 10))
		pipe.HExpire(database.Ctx, DataKey, physicalTTL, field)
		pipe.HExpire(database.Ctx, CachedAtKey, physicalTTL, field)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		// 预热只是读性能优化，落盘副本才是权威；热层写失败不阻止应用启动
		fmt.Printf("反思缓存: 预热到Redis热层失败: %v\n", err)
		return nil
	}

	fmt.Printf("成功预热 %d 条反思缓存到Redis。\n", len(entries))
	return nil
}
