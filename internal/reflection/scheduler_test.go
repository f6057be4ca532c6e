package reflection

import (
	"testing"
	"time"

	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"github.com/StoneJar/habit-stones-backend/internal/streak"
	"github.com/StoneJar/habit-stones-backend/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSchedulerTest 在缓存测试环境之上准备习惯、打卡表和流水线。
func setupSchedulerTest(t *testing.T) {
	t.Helper()
	setupCacheTest(t)
	require.NoError(t, database.DB.AutoMigrate(&habit.Habit{}, &streak.Streak{}))

	oldPipeline := pipeline
	pipeline = NewPipeline(NewFallbackStrategy())
	t.Cleanup(func() {
		pipeline = oldPipeline
		globalScheduler = nil
	})
}

func createHabit(t *testing.T, userID, habitID string) {
	t.Helper()
	require.NoError(t, database.DB.Create(&habit.Habit{
		UserID:       userID,
		HabitID:      habitID,
		StarterHabit: "put on running shoes",
	}).Error)
}

func TestPrefetchAll_SkipsFreshTriggersStale(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(8)

	createHabit(t, "u1", "fresh")
	createHabit(t, "u1", "stale")
	createHabit(t, "u1", "missing")
	require.NoError(t, SaveCached("u1", "fresh", validItems()))

	result, err := PrefetchAll("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Triggered)

	// 没有worker在消费，触发的任务都应该还在队列里
	assert.Equal(t, 2, len(globalScheduler.jobChan))
}

func TestPrefetchAll_UserWithoutHabits(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(8)

	result, err := PrefetchAll("nobody")
	require.NoError(t, err)
	assert.Equal(t, PrefetchResult{}, result)
}

func TestSubmit_DropsWhenQueueFull(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(1)

	// 队列容量为1，第二个任务应该被放弃而不是阻塞
	done := make(chan struct{})
	go func() {
		defer close(done)
		globalScheduler.submit(prefetchJob{userID: "u1", habitID: "h1", readyAt: time.Now()})
		globalScheduler.submit(prefetchJob{userID: "u1", habitID: "h2", readyAt: time.Now()})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("队列已满时submit不应阻塞")
	}
	assert.Equal(t, 1, len(globalScheduler.jobChan))
}

func TestSubmit_DropsAfterShutdown(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(1)

	globalScheduler.shutdownMutex.Lock()
	globalScheduler.isShutdown = true
	globalScheduler.shutdownMutex.Unlock()

	globalScheduler.submit(prefetchJob{userID: "u1", habitID: "h1", readyAt: time.Now()})
	assert.Equal(t, 0, len(globalScheduler.jobChan))
}

func TestScheduler_WorkerGeneratesAndCaches(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(8)
	createHabit(t, "u1", "h1")

	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()
	gracefulHandle, err := gracefulMgr.NewServiceHandle("prefetch-scheduler")
	require.NoError(t, err)
	forcefulHandle, err := forcefulMgr.NewServiceHandle("prefetch-scheduler")
	require.NoError(t, err)

	go startScheduler(2, gracefulHandle, forcefulHandle)

	SchedulePrefetch("u1", "h1")

	assert.Eventually(t, func() bool {
		return IsFresh("u1", "h1")
	}, 2*time.Second, 10*time.Millisecond, "后台任务应该在短时间内填充缓存")

	items, err := GetCached("u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, FallbackItems(), items)

	gracefulMgr.Shutdown()
	assert.Empty(t, gracefulMgr.WaitWithTimeout(2*time.Second))
	forcefulMgr.Shutdown()
	assert.Empty(t, forcefulMgr.WaitWithTimeout(time.Second))

	// 停机之后新任务被放弃，不会panic
	SchedulePrefetch("u1", "h1")
}

func TestScheduler_DrainsQueuedJobsOnGracefulShutdown(t *testing.T) {
	setupSchedulerTest(t)
	initializeScheduler(8)
	createHabit(t, "u1", "h1")
	createHabit(t, "u1", "h2")

	// 先入队再启动worker并立即优雅停机：排空模式应处理完存量任务
	SchedulePrefetch("u1", "h1")
	SchedulePrefetch("u1", "h2")

	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()
	gracefulHandle, err := gracefulMgr.NewServiceHandle("prefetch-scheduler")
	require.NoError(t, err)
	forcefulHandle, err := forcefulMgr.NewServiceHandle("prefetch-scheduler")
	require.NoError(t, err)

	gracefulMgr.Shutdown()
	go startScheduler(1, gracefulHandle, forcefulHandle)

	assert.Empty(t, gracefulMgr.WaitWithTimeout(2*time.Second))
	assert.True(t, IsFresh("u1", "h1"))
	assert.True(t, IsFresh("u1", "h2"))
}
