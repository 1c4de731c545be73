package model

import (
	"time"
)

// MetadataModel 链下metadata记录, 核心只关心存在性与minted标记
type MetadataModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cid                 string `json:"cid" gorm:"not null;uniqueIndex"`
	RedemptionStatement string `json:"redemption_statement"`
	Volume              string `json:"volume"`
	CreatedBy           string `json:"created_by"`
	Minted              bool   `json:"minted" gorm:"default:false"`
}

// TableName 自定义表名
func (MetadataModel) TableName() string {
	return "metadata"
}
