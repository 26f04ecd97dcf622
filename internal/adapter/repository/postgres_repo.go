package repository

import (
	"context"
	"errors"
	"fmt"

	"github-achievement-miner/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepo 实现了 port.AchievementStore 接口
type AchievementRepo struct {
	db *gorm.DB
}

// NewAchievementRepo 初始化数据库连接并自动迁移表结构
func NewAchievementRepo(dsn string) (*AchievementRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移：建表 + 维护 (user_id, type, repo_name, pr_number) 唯一索引
	err = db.AutoMigrate(&domain.Achievement{})
	if err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return &AchievementRepo{db: db}, nil
}

// NewAchievementRepoWithDB wires an existing GORM handle, used by tests.
func NewAchievementRepoWithDB(db *gorm.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// mutableColumns are the only fields a re-run of the classifier may
// change on an existing row. Identity, occurred_at and published are
// never overwritten.
var mutableColumns = []string{"score", "repo_stars", "impact_data", "updated_at"}

// Upsert creates or updates an achievement keyed by
// (user_id, type, repo_name, pr_number), so reclassifying overlapping
// event windows never duplicates rows.
func (r *AchievementRepo) Upsert(ctx context.Context, a *domain.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if a.PRNumber != nil {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "type"},
				{Name: "repo_name"},
				{Name: "pr_number"},
			},
			DoUpdates: clause.AssignmentColumns(mutableColumns),
		}).Create(a)
		return result.Error
	}

	// Rows without a PR number can't use the conflict target: Postgres
	// treats NULLs in a unique index as distinct. Fall back to a lookup
	// on the same identity (plus issue_number) and update in place.
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND repo_name = ? AND pr_number IS NULL",
			a.UserID, a.Type, a.RepoName)
	if a.IssueNumber != nil {
		query = query.Where("issue_number = ?", *a.IssueNumber)
	} else {
		query = query.Where("issue_number IS NULL")
	}

	var existing domain.Achievement
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(a).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&domain.Achievement{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"score":       a.Score,
			"repo_stars":  a.RepoStars,
			"impact_data": a.ImpactData,
		}).Error
}

// ListTop 返回指定用户分数最高的成就
func (r *AchievementRepo) ListTop(ctx context.Context, userID string, limit int) ([]*domain.Achievement, error) {
	var achievements []*domain.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC").
		Limit(limit).
		Find(&achievements).Error
	return achievements, err
}

// ListUnpublished 返回还没推送过的成就，按分数排序
func (r *AchievementRepo) ListUnpublished(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	var achievements []*domain.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND published = ?", userID, false).
		Order("score DESC").
		Find(&achievements).Error
	return achievements, err
}

// GetByID 查询单条成就
func (r *AchievementRepo) GetByID(ctx context.Context, id string) (*domain.Achievement, error) {
	var a domain.Achievement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkPublished 标记成就为已推送
func (r *AchievementRepo) MarkPublished(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Achievement{}).
		Where("id = ?", id).
		Update("published", true)
	return result.Error
}
