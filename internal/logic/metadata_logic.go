package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetadataLogic 证书元数据业务逻辑
type MetadataLogic struct {
	db *gorm.DB
}

// NewMetadataLogic 创建证书元数据业务逻辑
func NewMetadataLogic(db *gorm.DB) *MetadataLogic {
	return &MetadataLogic{db: db}
}

// FindByCid 按cid获取元数据, 不存在时返回nil
func (m *MetadataLogic) FindByCid(cid string) (*model.MetadataModel, error) {
	var metadata model.MetadataModel
	err := m.db.Where("cid = ?", cid).First(&metadata).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取元数据失败: %w", err)
	}
	return &metadata, nil
}

// CreateIgnoreDuplicates 对账器写入元数据, cid已存在时跳过
func (m *MetadataLogic) CreateIgnoreDuplicates(metadata *model.MetadataModel) error {
	if err := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cid"}},
		DoNothing: true,
	}).Create(metadata).Error; err != nil {
		return fmt.Errorf("创建元数据失败: %w", err)
	}
	return nil
}

// MarkMinted 标记元数据对应证书已在主链铸造
func (m *MetadataLogic) MarkMinted(cid string) error {
	if err := m.db.Model(&model.MetadataModel{}).
		Where("cid = ?", cid).
		Update("minted", true).Error; err != nil {
		return fmt.Errorf("标记元数据已铸造失败: %w", err)
	}
	return nil
}
