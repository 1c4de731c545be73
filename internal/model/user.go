package model

import (
	"time"
)

// UserModel 地址与角色登记
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address    string `json:"address" gorm:"not null;uniqueIndex"`
	IsAdmin    bool   `json:"is_admin" gorm:"default:false"`
	IsMinter   bool   `json:"is_minter" gorm:"default:false"`
	IsRedeemer bool   `json:"is_redeemer" gorm:"default:false"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user"
}
