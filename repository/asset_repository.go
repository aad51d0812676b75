package repository

import (
	"context"

	"Bt1Cut/model"

	"gorm.io/gorm"
)

// AssetRepository 素材描述数据访问接口
type AssetRepository interface {
	Create(ctx context.Context, asset *model.MediaAsset) error
	GetByID(ctx context.Context, id string) (*model.MediaAsset, error)
	ListByUserID(ctx context.Context, userID int64) ([]*model.MediaAsset, error)
	GetBySourceRef(ctx context.Context, userID int64, sourceRef string) (*model.MediaAsset, error)
	Delete(ctx context.Context, id string) error
}

// gormAssetRepository GORM 实现
type gormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository 创建 GORM 素材仓库
func NewGormAssetRepository(db *gorm.DB) AssetRepository {
	return &gormAssetRepository{db: db}
}

// Create 创建素材描述
func (r *gormAssetRepository) Create(ctx context.Context, asset *model.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

// GetByID 根据ID获取素材描述
func (r *gormAssetRepository) GetByID(ctx context.Context, id string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

// ListByUserID 列出用户的素材库
func (r *gormAssetRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.MediaAsset, error) {
	var assets []*model.MediaAsset
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

// GetBySourceRef 按来源路径查重，避免监控目录重复导入
func (r *gormAssetRepository) GetBySourceRef(ctx context.Context, userID int64, sourceRef string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND source_ref = ?", userID, sourceRef).
		First(&asset).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

// Delete 删除素材描述
func (r *gormAssetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MediaAsset{}).Error
}
