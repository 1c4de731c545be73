package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// ListingLogic 挂单业务逻辑
type ListingLogic struct {
	db *gorm.DB
}

// NewListingLogic 创建挂单业务逻辑
func NewListingLogic(db *gorm.DB) *ListingLogic {
	return &ListingLogic{db: db}
}

// CreateListing 创建挂单
func (l *ListingLogic) CreateListing(listing *model.ListingModel) error {
	if err := l.db.Create(listing).Error; err != nil {
		return fmt.Errorf("创建挂单失败: %w", err)
	}
	return nil
}

// CloseListing 成交关闭挂单, 取该卖家在该集合下最早的未成交挂单
func (l *ListingLogic) CloseListing(collectionId int64, seller, buyer string) error {
	var listing model.ListingModel
	err := l.db.Where("collection_id = ? AND seller_address = ? AND buyer_address IS NULL",
		collectionId, seller).
		Order("created_at ASC").
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("关闭挂单失败: 卖家%s在集合%d下无未成交挂单", seller, collectionId)
	}
	if err != nil {
		return fmt.Errorf("获取挂单失败: %w", err)
	}

	if err := l.db.Model(&model.ListingModel{}).
		Where("id = ?", listing.Id).
		Update("buyer_address", buyer).Error; err != nil {
		return fmt.Errorf("更新挂单失败: %w", err)
	}
	return nil
}

// GetOpenListings 获取全部未成交挂单
func (l *ListingLogic) GetOpenListings() ([]model.ListingModel, error) {
	var listings []model.ListingModel
	if err := l.db.Where("buyer_address IS NULL").
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("获取挂单列表失败: %w", err)
	}
	return listings, nil
}
