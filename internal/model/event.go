package model

import (
	"time"
)

// Chain 事件来源链
type Chain string

const (
	ChainFilecoin  Chain = "FILECOIN"   // 主链(交易市场)
	ChainEnergyWeb Chain = "ENERGY_WEB" // 副链(证书登记)
)

// EventType 事件类型, 封闭集合
type EventType string

const (
	EventTypeMint            EventType = "MINT"
	EventTypeTransfer        EventType = "TRANSFER"
	EventTypeRedeem          EventType = "REDEEM"
	EventTypeList            EventType = "LIST"
	EventTypeBuy             EventType = "BUY"
	EventTypeGrantRole       EventType = "GRANT_ROLE"
	EventTypeRevokeRole      EventType = "REVOKE_ROLE"
	EventTypeBatchMinted     EventType = "BATCH_MINTED"
	EventTypeRedemptionSet   EventType = "REDEMPTION_SET"
	EventTypeClaimSingle     EventType = "CLAIM_SINGLE"
	EventTypeAgreementSigned EventType = "AGREEMENT_SIGNED"
	EventTypeAgreementFilled EventType = "AGREEMENT_FILLED"
)

// EventModel 链上事件记录
// (chain, block_height, transaction_hash, log_index) 为幂等键, 重复摄入走upsert
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chain           Chain     `json:"chain" gorm:"not null;uniqueIndex:idx_event_identity"`
	TokenId         *string   `json:"token_id"`
	EventType       EventType `json:"event_type" gorm:"not null"`
	Data            string    `json:"data" gorm:"type:text"`
	BlockHeight     string    `json:"block_height" gorm:"not null;uniqueIndex:idx_event_identity"`
	TransactionHash string    `json:"transaction_hash" gorm:"not null;uniqueIndex:idx_event_identity"`
	LogIndex        int       `json:"log_index" gorm:"uniqueIndex:idx_event_identity"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
