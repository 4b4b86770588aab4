package repository

import (
	"errors"
	"time"

	"github.com/dinepromo/internal/constants"
	"github.com/dinepromo/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销活动数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByCode(code string) (*models.Promotion, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) (bool, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	ListActive(now time.Time) ([]models.Promotion, error)
	AtomicIncrementUsage(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// PromotionListFilter 促销活动列表筛选
type PromotionListFilter struct {
	Scope    string // all/active/upcoming/expired
	Now      time.Time
	Page     int
	PageSize int
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销活动仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取促销活动
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByCode 根据优惠码获取促销活动（大小写敏感匹配）
func (r *GormPromotionRepository) GetByCode(code string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.Where("promo_code = ?", code).First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// Create 创建促销活动
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销活动
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Save(promotion).Error
}

// Delete 硬删除促销活动，返回是否存在
func (r *GormPromotionRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.Promotion{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取促销活动列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := r.db.Model(&models.Promotion{})
	switch filter.Scope {
	case "", constants.PromoFilterAll:
		// 不过滤
	case constants.PromoFilterActive:
		query = query.Where("status = ?", constants.PromoStatusActive).
			Where("start_at <= ?", now).
			Where("end_at >= ?", now)
	case constants.PromoFilterUpcoming:
		query = query.Where("start_at > ?", now)
	case constants.PromoFilterExpired:
		query = query.Where("end_at < ?", now)
	default:
		return nil, 0, ErrUnknownListFilter
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var promotions []models.Promotion
	if err := query.Order("id desc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// ListActive 获取当前生效的促销活动
func (r *GormPromotionRepository) ListActive(now time.Time) ([]models.Promotion, error) {
	promotions, _, err := r.List(PromotionListFilter{
		Scope: constants.PromoFilterActive,
		Now:   now,
	})
	return promotions, err
}

// AtomicIncrementUsage 原子消耗一次使用额度。
// 校验与自增必须在同一条 UPDATE 内完成，依赖存储层的行级串行化，
// 绝不能拆成应用层的先读后写。RowsAffected == 0 表示额度已用尽。
func (r *GormPromotionRepository) AtomicIncrementUsage(id uint) (bool, error) {
	result := r.db.Model(&models.Promotion{}).
		Where("id = ?", id).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
