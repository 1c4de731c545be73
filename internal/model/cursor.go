package model

import (
	"time"
)

// CursorModel 每条链一行的水位线, 保存下一个未处理区块高度
// 只在区块事件全部落库后推进, 进程重启从这里恢复
type CursorModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chain       Chain  `json:"chain" gorm:"not null;uniqueIndex"`
	BlockHeight string `json:"block_height" gorm:"not null"`
}

// TableName 自定义表名
func (CursorModel) TableName() string {
	return "cursor"
}
