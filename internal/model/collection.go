package model

import (
	"time"
)

// CollectionModel REC集合, 跨两条链标识同一批证书
type CollectionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 主链token id, mint后唯一且不可变
	FilecoinTokenId *string `json:"filecoin_token_id" gorm:"uniqueIndex"`
	// 副链证书id集合
	EnergyWebTokenIds []string `json:"energy_web_token_ids" gorm:"type:text;serializer:json"`
	// 一对一关联metadata
	MetadataId          *int64  `json:"metadata_id" gorm:"uniqueIndex"`
	RedemptionStatement *string `json:"redemption_statement"`
}

// TableName 自定义表名
func (CollectionModel) TableName() string {
	return "collection"
}
