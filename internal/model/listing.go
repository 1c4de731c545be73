package model

import (
	"time"
)

// ListingModel 市场挂单, Buy事件成交后写入买家地址
type ListingModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SellerAddress string  `json:"seller_address" gorm:"not null"`
	BuyerAddress  *string `json:"buyer_address"`
	CollectionId  int64   `json:"collection_id" gorm:"not null"`
	Amount        string  `json:"amount" gorm:"not null"`
	UnitPrice     string  `json:"unit_price" gorm:"not null"`
}

// TableName 自定义表名
func (ListingModel) TableName() string {
	return "listing"
}
