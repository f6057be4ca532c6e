package reflection

import (
	"context"
	"testing"

	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGenerationContext(t *testing.T) {
	setupCacheTest(t)
	require.NoError(t, database.DB.AutoMigrate(&habit.Habit{}, &streak.Streak{}))

	_, err := BuildGenerationContext("u1", "missing")
	assert.Error(t, err, "习惯不存在时无法组装生成上下文")

	createHabit(t, "u1", "h1")
	_, err = streak.UpdateByCheckIn("u1", "h1", "2024-01-01")
	require.NoError(t, err)
	_, err = streak.UpdateByCheckIn("u1", "h1", "2024-01-02")
	require.NoError(t, err)

	gctx, err := BuildGenerationContext("u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, "put on running shoes", gctx.Habit.StarterHabit)
	assert.Equal(t, 2, gctx.Streak.CurrentStreak)
	assert.Equal(t, 2, gctx.Streak.TotalCheckIns)

	// 从未打卡的习惯同样可以生成，只是快照是零值
	createHabit(t, "u1", "h2")
	gctx, err = BuildGenerationContext("u1", "h2")
	require.NoError(t, err)
	assert.Equal(t, 0, gctx.Streak.CurrentStreak)
	assert.Nil(t, gctx.Streak.LastCheckInDate)
}

func TestGetReflection_ReadThrough(t *testing.T) {
	setupSchedulerTest(t)
	createHabit(t, "u1", "h1")

	counting := &stubStrategy{name: "counting", items: validItems()}
	pipeline = NewPipeline(counting, NewFallbackStrategy())

	// 未命中：同步生成并写入缓存
	got, err := GetReflection(context.Background(), "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, validItems(), got)
	assert.True(t, counting.called)
	assert.True(t, IsFresh("u1", "h1"))

	// 命中：直接返回缓存，不再触发生成
	counting.called = false
	got, err = GetReflection(context.Background(), "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, validItems(), got)
	assert.False(t, counting.called)
}

func TestGenerateAndCache_FallsBackWhenPrimaryFails(t *testing.T) {
	setupSchedulerTest(t)
	createHabit(t, "u1", "h1")

	failing := &stubStrategy{name: "llm", err: assert.AnError}
	pipeline = NewPipeline(failing, NewFallbackStrategy())

	got, err := GenerateAndCache(context.Background(), "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, FallbackItems(), got)

	cached, err := GetCached("u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, FallbackItems(), cached, "兜底内容同样会被缓存")
}
