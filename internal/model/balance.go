package model

import (
	"time"
)

// BalanceModel 用户在某个集合下的当前持仓
// 金额使用十进制字符串, 避免超过int64精度丢失
type BalanceModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserAddress  string `json:"user_address" gorm:"not null;uniqueIndex:idx_balance_owner"`
	CollectionId int64  `json:"collection_id" gorm:"not null;uniqueIndex:idx_balance_owner"`
	Amount       string `json:"amount" gorm:"not null;default:'0'"`
	Redeemed     string `json:"redeemed" gorm:"not null;default:'0'"`
}

// TableName 自定义表名
func (BalanceModel) TableName() string {
	return "balance"
}
