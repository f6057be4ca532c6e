package habit

import (
	"path/filepath"
	"testing"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为当前测试准备一个独立的SQLite文档存储，并复位模块级挂钩。
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Habit{}))
	database.DB = db

	t.Cleanup(func() {
		preferenceChangedHook = nil
		habitDeletedHook = nil
	})
}

func TestSavePreference_GeneratesHabitID(t *testing.T) {
	setupTestDB(t)

	record, err := SavePreference("u1", "", Context{StarterHabit: "put on running shoes"})
	require.NoError(t, err)
	require.NotEmpty(t, record.HabitID)

	parsed, err := uuid.Parse(record.HabitID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSavePreference_UpsertKeepsSingleRecord(t *testing.T) {
	setupTestDB(t)

	_, err := SavePreference("u1", "h1", Context{StarterHabit: "one pushup"})
	require.NoError(t, err)
	_, err = SavePreference("u1", "h1", Context{StarterHabit: "five pushups", Identity: "an athlete"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, database.DB.Model(&Habit{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := GetHabit("u1", "h1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "five pushups", got.StarterHabit)
	assert.Equal(t, "an athlete", got.Identity)
}

func TestSavePreference_HookFiresOnlyOnMaterialChange(t *testing.T) {
	setupTestDB(t)

	var fired int
	SetPreferenceChangedHook(func(userID, habitID string) { fired++ })

	prefs := Context{StarterHabit: "one pushup"}

	// 新建习惯不触发挂钩
	_, err := SavePreference("u1", "h1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// 保存完全相同的偏好也不触发
	_, err = SavePreference("u1", "h1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// 实质变化触发一次
	prefs.HabitEnvironment = "mat next to the bed"
	_, err = SavePreference("u1", "h1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestGetContext(t *testing.T) {
	setupTestDB(t)

	_, found, err := GetContext("u1", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	prefs := Context{StarterHabit: "one pushup", Enjoyment: "music"}
	_, err = SavePreference("u1", "h1", prefs)
	require.NoError(t, err)

	got, found, err := GetContext("u1", "h1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, prefs, got)
}

func TestListHabitIDs(t *testing.T) {
	setupTestDB(t)

	_, err := SavePreference("u1", "h1", Context{})
	require.NoError(t, err)
	_, err = SavePreference("u1", "h2", Context{})
	require.NoError(t, err)
	_, err = SavePreference("u2", "h3", Context{})
	require.NoError(t, err)

	ids, err := ListHabitIDs("u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"h1", "h2"}, ids)

	ids, err = ListHabitIDs("nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteHabit_FiresHookAndRemovesRecord(t *testing.T) {
	setupTestDB(t)

	var deleted []string
	SetHabitDeletedHook(func(userID, habitID string) {
		deleted = append(deleted, userID+":"+habitID)
	})

	_, err := SavePreference("u1", "h1", Context{})
	require.NoError(t, err)

	require.NoError(t, DeleteHabit("u1", "h1"))
	assert.Equal(t, []string{"u1:h1"}, deleted)

	got, err := GetHabit("u1", "h1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 删除不存在的习惯不报错，但仍触发级联清理
	require.NoError(t, DeleteHabit("u1", "gone"))
	assert.Len(t, deleted, 2)
}
