package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Bt1Cut/db"
	"Bt1Cut/model"

	"github.com/go-redis/redis/v8"
)

// SnapshotCache 自动保存缓存：每个项目一份JSON时间线快照，带TTL。
// 会话重新连接时优先从这里恢复，失效后回落到MySQL快照。
type SnapshotCache struct {
	ttl time.Duration
}

// NewSnapshotCache 创建自动保存缓存
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

// snapshotKey 根据项目ID生成Redis键
func snapshotKey(key string) string {
	return fmt.Sprintf("autosave:%s", key)
}

// SaveSnapshot 写入一份时间线快照
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, key string, tl *model.Timeline) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline snapshot: %w", err)
	}

	if err := db.RedisClient.Set(ctx, snapshotKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store timeline snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot 读取一份时间线快照，miss返回 (nil, nil)
func (c *SnapshotCache) LoadSnapshot(ctx context.Context, key string) (*model.Timeline, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := db.RedisClient.Get(ctx, snapshotKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline snapshot: %w", err)
	}

	tl := &model.Timeline{}
	if err := json.Unmarshal(data, tl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline snapshot: %w", err)
	}
	return tl, nil
}

// DropSnapshot 删除快照（会话正常关闭并落库后调用）
func (c *SnapshotCache) DropSnapshot(ctx context.Context, key string) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return db.RedisClient.Del(ctx, snapshotKey(key)).Err()
}
