package repository

import (
	"context"
	"sort"
	"time"

	"Bt1Cut/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository 项目快照数据访问接口。
// 快照是有序的轨道列表，每条轨道携带有序的片段列表。
type ProjectRepository interface {
	// 项目 CRUD
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByUserID(ctx context.Context, userID int64) ([]*model.Project, error)
	Delete(ctx context.Context, id string) error

	// 快照存取
	SaveTimeline(ctx context.Context, projectID string, tl *model.Timeline) error
	LoadTimeline(ctx context.Context, project *model.Project) (*model.Timeline, error)
}

// gormProjectRepository GORM 实现
type gormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository 创建 GORM 项目仓库
func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

// Create 创建项目
func (r *gormProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID 根据ID获取项目
func (r *gormProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListByUserID 列出用户的所有项目
func (r *gormProjectRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// Delete 删除项目及其快照
func (r *gormProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trackIDs []string
		if err := tx.Model(&model.TrackRow{}).
			Where("project_id = ?", id).
			Pluck("id", &trackIDs).Error; err != nil {
			return err
		}
		if len(trackIDs) > 0 {
			if err := tx.Where("track_id IN ?", trackIDs).Delete(&model.ClipRow{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.TrackRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Project{}).Error
	})
}

// SaveTimeline 全量写入一份时间线快照：先清旧行，再按显示顺序重建
func (r *gormProjectRepository) SaveTimeline(ctx context.Context, projectID string, tl *model.Timeline) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldTrackIDs []string
		if err := tx.Model(&model.TrackRow{}).
			Where("project_id = ?", projectID).
			Pluck("id", &oldTrackIDs).Error; err != nil {
			return err
		}
		if len(oldTrackIDs) > 0 {
			if err := tx.Where("track_id IN ?", oldTrackIDs).Delete(&model.ClipRow{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&model.TrackRow{}).Error; err != nil {
				return err
			}
		}

		for pos, tr := range tl.Tracks {
			row := model.TrackRow{
				ID:        tr.ID,
				ProjectID: projectID,
				Type:      tr.Type,
				Name:      tr.Name,
				Visible:   tr.Visible,
				Locked:    tr.Locked,
				Position:  pos,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
			for _, c := range tr.Clips {
				clipRow := model.ClipRow{
					ID:        c.ID,
					TrackID:   tr.ID,
					Type:      c.Type,
					Name:      c.Name,
					StartTime: c.StartTime,
					Duration:  c.Duration,
					MediaRef:  c.MediaRef,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&clipRow).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&model.Project{}).
			Where("id = ?", projectID).
			Update("updated_at", now).Error
	})
}

// LoadTimeline 读取一份时间线快照，轨道按位置、片段按起始时间排序
func (r *gormProjectRepository) LoadTimeline(ctx context.Context, project *model.Project) (*model.Timeline, error) {
	var trackRows []model.TrackRow
	err := r.db.WithContext(ctx).
		Where("project_id = ?", project.ID).
		Order("position ASC").
		Find(&trackRows).Error
	if err != nil {
		return nil, err
	}

	tl := &model.Timeline{
		ID:       project.ID,
		Name:     project.Name,
		Duration: project.Duration,
		Tracks:   make([]*model.Track, 0, len(trackRows)),
	}

	for _, row := range trackRows {
		track := &model.Track{
			ID:      row.ID,
			Type:    row.Type,
			Name:    row.Name,
			Visible: row.Visible,
			Locked:  row.Locked,
		}

		var clipRows []model.ClipRow
		if err := r.db.WithContext(ctx).
			Where("track_id = ?", row.ID).
			Find(&clipRows).Error; err != nil {
			return nil, err
		}
		sort.Slice(clipRows, func(i, j int) bool {
			return clipRows[i].StartTime < clipRows[j].StartTime
		})

		for _, cr := range clipRows {
			track.Clips = append(track.Clips, &model.Clip{
				ID:        cr.ID,
				TrackID:   row.ID,
				Type:      cr.Type,
				Name:      cr.Name,
				StartTime: cr.StartTime,
				Duration:  cr.Duration,
				MediaRef:  cr.MediaRef,
			})
		}
		tl.Tracks = append(tl.Tracks, track)
	}

	return tl, nil
}
