package repository

import (
	"github.com/dinepromo/internal/models"

	"gorm.io/gorm"
)

// RedemptionLogRepository 核销审计记录数据访问接口
type RedemptionLogRepository interface {
	Create(log *models.RedemptionLog) error
	ListByPromotion(promotionID uint, page, pageSize int) ([]models.RedemptionLog, int64, error)
	CountByPromotion(promotionID uint) (int64, error)
}

// GormRedemptionLogRepository GORM 实现
type GormRedemptionLogRepository struct {
	db *gorm.DB
}

// NewRedemptionLogRepository 创建核销审计记录仓库
func NewRedemptionLogRepository(db *gorm.DB) *GormRedemptionLogRepository {
	return &GormRedemptionLogRepository{db: db}
}

// Create 创建审计记录
func (r *GormRedemptionLogRepository) Create(log *models.RedemptionLog) error {
	return r.db.Create(log).Error
}

// ListByPromotion 获取指定活动的核销记录
func (r *GormRedemptionLogRepository) ListByPromotion(promotionID uint, page, pageSize int) ([]models.RedemptionLog, int64, error) {
	query := r.db.Model(&models.RedemptionLog{}).Where("promotion_id = ?", promotionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var logs []models.RedemptionLog
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CountByPromotion 统计指定活动的核销次数
func (r *GormRedemptionLogRepository) CountByPromotion(promotionID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.RedemptionLog{}).
		Where("promotion_id = ?", promotionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
