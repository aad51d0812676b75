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

// 素材描述缓存：时间线解析 mediaRef 时先查这里，避免每次拖入都打数据库。
const assetTTL = 30 * time.Minute

// assetKey 根据素材ID生成Redis键
func assetKey(assetID string) string {
	return fmt.Sprintf("asset:%s", assetID)
}

// StoreAsset 缓存一条素材描述
func StoreAsset(ctx context.Context, asset *model.MediaAsset) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset descriptor: %w", err)
	}
	if err := db.RedisClient.Set(ctx, assetKey(asset.ID), data, assetTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache asset descriptor: %w", err)
	}
	return nil
}

// GetAsset 读取一条素材描述，miss返回 (nil, nil)
func GetAsset(ctx context.Context, assetID string) (*model.MediaAsset, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := db.RedisClient.Get(ctx, assetKey(assetID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read asset descriptor: %w", err)
	}

	asset := &model.MediaAsset{}
	if err := json.Unmarshal(data, asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset descriptor: %w", err)
	}
	return asset, nil
}

// DropAsset 删除素材描述缓存
func DropAsset(ctx context.Context, assetID string) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return db.RedisClient.Del(ctx, assetKey(assetID)).Err()
}
