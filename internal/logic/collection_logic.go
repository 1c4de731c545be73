package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionLogic 证书集合业务逻辑
type CollectionLogic struct {
	db *gorm.DB
}

// NewCollectionLogic 创建证书集合业务逻辑
func NewCollectionLogic(db *gorm.DB) *CollectionLogic {
	return &CollectionLogic{db: db}
}

// GetByFilecoinTokenId 按主链token id获取集合
// 处理转移/赎回/上架事件时集合必须已存在, 缺失说明摄入顺序被破坏
func (c *CollectionLogic) GetByFilecoinTokenId(tokenId string) (*model.CollectionModel, error) {
	var collection model.CollectionModel
	err := c.db.Where("filecoin_token_id = ?", tokenId).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("集合不存在: filecoin token %s", tokenId)
	}
	if err != nil {
		return nil, fmt.Errorf("获取集合失败: %w", err)
	}
	return &collection, nil
}

// GetById 按主键获取集合
func (c *CollectionLogic) GetById(id int64) (*model.CollectionModel, error) {
	var collection model.CollectionModel
	err := c.db.Where("id = ?", id).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("集合不存在: id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("获取集合失败: %w", err)
	}
	return &collection, nil
}

// UpsertMinted 为mint事件落集合
// 对账器可能已经按metadata预建了集合行, 此时只补filecoin token id;
// 否则按token id幂等创建
func (c *CollectionLogic) UpsertMinted(tokenId string, metadataId *int64) (*model.CollectionModel, error) {
	if metadataId != nil {
		var collection model.CollectionModel
		err := c.db.Where("metadata_id = ?", *metadataId).First(&collection).Error
		if err == nil {
			if collection.FilecoinTokenId == nil {
				if err := c.db.Model(&model.CollectionModel{}).
					Where("id = ?", collection.Id).
					Update("filecoin_token_id", tokenId).Error; err != nil {
					return nil, fmt.Errorf("更新集合失败: %w", err)
				}
				collection.FilecoinTokenId = &tokenId
			} else if *collection.FilecoinTokenId != tokenId {
				return nil, fmt.Errorf("集合%d已绑定filecoin token %s, 不能重绑为%s",
					collection.Id, *collection.FilecoinTokenId, tokenId)
			}
			return &collection, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("获取集合失败: %w", err)
		}
	}

	var collection model.CollectionModel
	err := c.db.Where("filecoin_token_id = ?", tokenId).First(&collection).Error
	if err == nil {
		return &collection, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("获取集合失败: %w", err)
	}

	collection = model.CollectionModel{
		FilecoinTokenId: &tokenId,
		MetadataId:      metadataId,
	}
	if err := c.db.Create(&collection).Error; err != nil {
		return nil, fmt.Errorf("创建集合失败: %w", err)
	}
	return &collection, nil
}

// CreateIgnoreDuplicates 对账器按metadata预建集合行, 已存在时跳过
func (c *CollectionLogic) CreateIgnoreDuplicates(collection *model.CollectionModel) error {
	if err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "metadata_id"}},
		DoNothing: true,
	}).Create(collection).Error; err != nil {
		return fmt.Errorf("创建集合失败: %w", err)
	}
	return nil
}

// GetCollections 分页获取集合
func (c *CollectionLogic) GetCollections(page, pageSize int) ([]model.CollectionModel, int64, error) {
	var collections []model.CollectionModel
	var total int64

	if err := c.db.Model(&model.CollectionModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取集合总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := c.db.Offset(offset).Limit(pageSize).Order("created_at DESC").
		Find(&collections).Error; err != nil {
		return nil, 0, fmt.Errorf("获取集合列表失败: %w", err)
	}

	return collections, total, nil
}
