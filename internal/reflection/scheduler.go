package reflection

import (
	"fmt"
	"sync"
	"time"

	"github.com/StoneJar/habit-stones-backend/internal/habit"
	"github.com/StoneJar/habit-stones-backend/pkg/lifecycle"
)

// checkInPrefetchDelay 是打卡后到开始后台生成的固定延迟，
// 避免和打卡写入争抢同一条文档。
const checkInPrefetchDelay = 500 * time.Millisecond

// prefetchJob 是一次后台生成任务
type prefetchJob struct {
	userID  string
	habitID string
	// readyAt 之前任务不会开始执行
	readyAt time.Time
}

// PrefetchResult 是PrefetchAll的统计结果
type PrefetchResult struct {
	Triggered int `json:"triggered"`
	Skipped   int `json:"skipped"`
	Total     int `json:"total"`
}

// prefetchScheduler 是后台预生成的调度器：有界任务队列加一组worker。
// 任务是fire-and-forget的：失败只记日志，绝不回传给已经拿到响应的调用方。
type prefetchScheduler struct {
	jobChan       chan prefetchJob
	isShutdown    bool
	shutdownMutex sync.Mutex
}

// globalScheduler 是一个私有的、全局的调度器实例，由setup初始化
var globalScheduler *prefetchScheduler

// initializeScheduler 初始化全局的调度器实例
func initializeScheduler(queueSize int) {
	globalScheduler = &prefetchScheduler{
		jobChan: make(chan prefetchJob, queueSize),
	}
}

// startScheduler 启动全部worker，并在它们都退出后关闭生命周期句柄
func startScheduler(workers int, gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	fmt.Printf("预生成调度器 (Prefetch Scheduler) 已启动，worker数量: %d。\n", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			globalScheduler.runWorker(gracefulHandle, forcefulHandle)
		}()
	}
	wg.Wait()
	fmt.Println("预生成调度器: 所有worker已退出。")
}

// submit 向队列提交一个任务，队列已满或已停机时放弃任务
func (ps *prefetchScheduler) submit(job prefetchJob) {
	ps.shutdownMutex.Lock()
	defer ps.shutdownMutex.Unlock()
	if ps.isShutdown {
		fmt.Printf("警告: 预生成调度器已停机，放弃任务 %s:%s\n", job.userID, job.habitID)
		return
	}
	select {
	case ps.jobChan <- job:
	default:
		fmt.Printf("警告: 预生成队列已满，放弃任务 %s:%s\n", job.userID, job.habitID)
	}
}

// runWorker 是单个worker的主循环，响应两阶段停机
func (ps *prefetchScheduler) runWorker(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-gracefulHandle.Done():
			// 收到第一停机信号，进入"排空队列"模式
			ps.drainQueue(forcefulHandle)
			return
		case job, ok := <-ps.jobChan:
			if !ok {
				// 另一个worker已经进入排空模式并关闭了队列
				return
			}
			ps.waitAndProcess(job, gracefulHandle, forcefulHandle)
		}
	}
}

// drainQueue 在收到优雅停机信号后，尽力处理完队列中的剩余任务。
// 排空模式下不再等待readyAt延迟，收到强制停机信号则立刻中断。
func (ps *prefetchScheduler) drainQueue(forcefulHandle *lifecycle.Handle) {
	// 关闭channel，不再接收新任务（只能关闭一次，多个worker并发排空）
	ps.shutdownMutex.Lock()
	if !ps.isShutdown {
		ps.isShutdown = true
		close(ps.jobChan)
	}
	ps.shutdownMutex.Unlock()

	for job := range ps.jobChan {
		select {
		case <-forcefulHandle.Done():
			fmt.Println("预生成调度器: 收到强制停机信号，排空队列被中断。")
			return
		default:
		}
		ps.process(job, forcefulHandle)
	}
}

// waitAndProcess 等到任务的readyAt时刻再执行它
func (ps *prefetchScheduler) waitAndProcess(job prefetchJob, gracefulHandle, forcefulHandle *lifecycle.Handle) {
	if delay := time.Until(job.readyAt); delay > 0 {
		// 延迟期间收到优雅停机信号时不再等待，直接执行（尽力完成已接受的任务）
		_ = gracefulHandle.Sleep(delay)
	}
	select {
	case <-forcefulHandle.Done():
		return
	default:
	}
	ps.process(job, forcefulHandle)
}

// process 执行一次生成并写入缓存。失败只记日志，不向任何调用方传播。
func (ps *prefetchScheduler) process(job prefetchJob, forcefulHandle *lifecycle.Handle) {
	// 任务排队期间缓存可能已经被其他路径填充
	if IsFresh(job.userID, job.habitID) {
		return
	}
	if _, err := GenerateAndCache(forcefulHandle.Ctx(), job.userID, job.habitID); err != nil {
		fmt.Printf("预生成调度器: 后台生成失败 %s:%s: %v\n", job.userID, job.habitID, err)
	}
}

// ScheduleAfterCheckIn 在一次打卡之后调度一次后台生成。
// 任务带固定延迟，立即返回，不阻塞打卡请求。
func ScheduleAfterCheckIn(userID, habitID string) {
	if globalScheduler == nil {
		return
	}
	globalScheduler.submit(prefetchJob{
		userID:  userID,
		habitID: habitID,
		readyAt: time.Now().Add(checkInPrefetchDelay),
	})
}

// SchedulePrefetch 立即调度一次后台生成（无延迟），
// 用于偏好变化后的缓存重建。
func SchedulePrefetch(userID, habitID string) {
	if globalScheduler == nil {
		return
	}
	globalScheduler.submit(prefetchJob{
		userID:  userID,
		habitID: habitID,
		readyAt: time.Now(),
	})
}

// PrefetchAll 为一个用户的全部习惯触发预生成。
// 缓存仍然新鲜的习惯计为skipped，其余的异步调度后计为triggered。
// 函数立即返回，后台任务各自独立执行，不向调用方汇报完成状态。
func PrefetchAll(userID string) (PrefetchResult, error) {
	habitIDs, err := habit.ListHabitIDs(userID)
	if err != nil {
		return PrefetchResult{}, err
	}

	var result PrefetchResult
	result.Total = len(habitIDs)
	for _, habitID := range habitIDs {
		if IsFresh(userID, habitID) {
			result.Skipped++
			continue
		}
		SchedulePrefetch(userID, habitID)
		result.Triggered++
	}
	return result, nil
}
