package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionLogic 桥接交易队列业务逻辑
type TransactionLogic struct {
	db *gorm.DB
}

// NewTransactionLogic 创建桥接交易队列业务逻辑
func NewTransactionLogic(db *gorm.DB) *TransactionLogic {
	return &TransactionLogic{db: db}
}

// Enqueue 批量入队, cid冲突的记录跳过, 返回实际入队条数
// 对账器重跑同一批次时靠这里保证不重复入队
func (t *TransactionLogic) Enqueue(transactions []model.TransactionModel) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cid"}},
		DoNothing: true,
	}).Create(&transactions)
	if result.Error != nil {
		return 0, fmt.Errorf("入队桥接交易失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// NextPending 取最早的未确认交易, 队列为空时返回nil
func (t *TransactionLogic) NextPending() (*model.TransactionModel, error) {
	var transaction model.TransactionModel
	err := t.db.Where("hash IS NULL").Order("id ASC").First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取待处理交易失败: %w", err)
	}
	return &transaction, nil
}

// MarkConfirmed 记录链上确认结果, 已确认的交易再次标记是幂等的
func (t *TransactionLogic) MarkConfirmed(id int64, hash string, success bool) error {
	if err := t.db.Model(&model.TransactionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"hash":    hash,
			"success": success,
		}).Error; err != nil {
		return fmt.Errorf("更新交易确认状态失败: %w", err)
	}
	return nil
}
