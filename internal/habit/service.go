package habit

import (
	"fmt"

	"github.com/google/uuid"
)

// preferenceChangedHook 在习惯偏好发生实质变化后被调用。
// 由composition root在启动时注入（反思模块的缓存失效+重新生成），
// 避免habit包反向依赖reflection包。
var preferenceChangedHook func(userID, habitID string)

// habitDeletedHook 在习惯被删除后被调用，用于级联清理反思缓存。
var habitDeletedHook func(userID, habitID string)

// SetPreferenceChangedHook 注册偏好变化后的回调。
func SetPreferenceChangedHook(hook func(userID, habitID string)) {
	preferenceChangedHook = hook
}

// SetHabitDeletedHook 注册习惯删除后的回调。
func SetHabitDeletedHook(hook func(userID, habitID string)) {
	habitDeletedHook = hook
}

// SavePreference 保存或更新一个习惯的偏好。
// habitID为空时生成一个新的UUID v7作为习惯ID。
// 偏好发生实质变化时触发preferenceChangedHook。
func SavePreference(userID, habitID string, prefs Context) (*Habit, error) {
	if habitID == "" {
		newUUID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("无法生成UUID v7: %w", err)
		}
		habitID = newUUID.String()
	}

	existing, err := findByID(userID, habitID)
	if err != nil {
		return nil, err
	}

	record := &Habit{
		UserID:           userID,
		HabitID:          habitID,
		StartingIdea:     prefs.StartingIdea,
		Identity:         prefs.Identity,
		Enjoyment:        prefs.Enjoyment,
		StarterHabit:     prefs.StarterHabit,
		FullHabit:        prefs.FullHabit,
		HabitStack:       prefs.HabitStack,
		HabitEnvironment: prefs.HabitEnvironment,
	}
	if err := upsert(record); err != nil {
		return nil, err
	}

	// 偏好实质变化时，缓存里的反思内容已经不再反映当前习惯
	if existing != nil && existing.ToContext() != prefs {
		if preferenceChangedHook != nil {
			preferenceChangedHook(userID, habitID)
		}
	}

	return record, nil
}

// GetHabit 按ID读取一条习惯记录，找不到时返回(nil, nil)。
func GetHabit(userID, habitID string) (*Habit, error) {
	return findByID(userID, habitID)
}

// GetContext 返回组装提示词所需的习惯上下文。
// 第二个返回值表示习惯是否存在。
func GetContext(userID, habitID string) (Context, bool, error) {
	h, err := findByID(userID, habitID)
	if err != nil {
		return Context{}, false, err
	}
	if h == nil {
		return Context{}, false, nil
	}
	return h.ToContext(), true, nil
}

// ListHabitIDs 返回一个用户全部习惯的ID列表，供预生成调度器遍历。
func ListHabitIDs(userID string) ([]string, error) {
	habits, err := listByUser(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.HabitID)
	}
	return ids, nil
}

// DeleteHabit 删除一个习惯，并级联触发反思缓存的失效。
func DeleteHabit(userID, habitID string) error {
	if err := deleteByID(userID, habitID); err != nil {
		return err
	}
	if habitDeletedHook != nil {
		habitDeletedHook(userID, habitID)
	}
	return nil
}
