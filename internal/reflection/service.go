package reflection

import (
	"context"
	"fmt"
)

// pipeline 是模块级的生成流水线实例。
// 它在启动时由ConfigureModule显式构造并注入，不存在惰性初始化。
var pipeline *Pipeline

// GenerateAndCache 执行一次完整的生成并写入缓存，返回生成的内容。
// 这是后台任务和缓存未命中时共用的生成路径。
func GenerateAndCache(ctx context.Context, userID, habitID string) (*Items, error) {
	gctx, err := BuildGenerationContext(userID, habitID)
	if err != nil {
		return nil, err
	}

	items, err := pipeline.Generate(ctx, gctx)
	if err != nil {
		// 链尾有兜底策略时不应该到达这里
		return nil, err
	}

	if err := SaveCached(userID, habitID, items); err != nil {
		// 内容已经生成，缓存写失败不应该让调用方拿不到结果
		fmt.Printf("反思服务: 写入缓存失败 %s:%s: %v\n", userID, habitID, err)
	}
	return items, nil
}

// GetReflection 是读路径的总入口（read-through）：
// 先查缓存，命中且新鲜则直接返回；否则同步生成、写缓存后返回。
// 注意：同一个key的并发未命中会各自触发生成，最后一次写入获胜。
// 生成调用足够幂等且单用户频率很低，这里刻意不做single-flight。
func GetReflection(ctx context.Context, userID, habitID string) (*Items, error) {
	items, err := GetCached(userID, habitID)
	if err != nil {
		// 缓存读取错误按未命中处理，生成路径兜底
		fmt.Printf("反思服务: 读取缓存失败 %s:%s: %v\n", userID, habitID, err)
	}
	if items != nil {
		return items, nil
	}

	return GenerateAndCache(ctx, userID, habitID)
}
