package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransactionType 桥接交易类型
type TransactionType string

const (
	TransactionTypeMint TransactionType = "MINT"
)

// TransactionModel 待重放到主链的桥接交易
// hash在提交确认前为空, cid作为自然键保证重复入队被跳过
type TransactionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TransactionType TransactionType `json:"transaction_type" gorm:"not null"`
	Cid             string          `json:"cid" gorm:"not null;uniqueIndex"`
	RawArgs         string          `json:"raw_args" gorm:"type:text;not null"`
	Hash            *string         `json:"hash"`
	Success         *bool           `json:"success"`
}

// TableName 自定义表名
func (TransactionModel) TableName() string {
	return "transaction"
}

// MintArgs mintAndAllocate调用的位置参数, 是与桥接重放器之间的线上契约
// 序列化为定长JSON数组: [cid, 总量, 接收人列表, 每人数量, 每人已赎回标记]
type MintArgs struct {
	Cid        string
	Amount     string
	Recipients []string
	Amounts    []string
	Redeemed   []bool
}

// MarshalJSON 按位置序列化参数
func (a MintArgs) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Cid, a.Amount, a.Recipients, a.Amounts, a.Redeemed})
}

// UnmarshalJSON 按位置反序列化参数
func (a *MintArgs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("expected 5 positional args, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.Cid); err != nil {
		return fmt.Errorf("invalid cid arg: %w", err)
	}
	if err := json.Unmarshal(raw[1], &a.Amount); err != nil {
		return fmt.Errorf("invalid amount arg: %w", err)
	}
	if err := json.Unmarshal(raw[2], &a.Recipients); err != nil {
		return fmt.Errorf("invalid recipients arg: %w", err)
	}
	if err := json.Unmarshal(raw[3], &a.Amounts); err != nil {
		return fmt.Errorf("invalid amounts arg: %w", err)
	}
	if err := json.Unmarshal(raw[4], &a.Redeemed); err != nil {
		return fmt.Errorf("invalid redeemed arg: %w", err)
	}
	return nil
}
