package logic

import (
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventLogic 事件业务逻辑
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic 创建事件业务逻辑
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// UpsertEvent 按幂等键(chain, block_height, transaction_hash, log_index)写入事件
// 重复摄入同一条日志只会原地更新, 不会产生第二行
func (e *EventLogic) UpsertEvent(event *model.EventModel) error {
	if err := e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chain"},
			{Name: "block_height"},
			{Name: "transaction_hash"},
			{Name: "log_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"token_id", "event_type", "data", "updated_at"}),
	}).Create(event).Error; err != nil {
		return fmt.Errorf("写入事件记录失败: %w", err)
	}

	return nil
}

// CreateIfAbsent 按幂等键插入事件, 已存在时跳过
// 返回是否真正插入, 处理器据此决定要不要执行状态变更,
// 保证重放同一事件不会重复记账
func (e *EventLogic) CreateIfAbsent(event *model.EventModel) (bool, error) {
	result := e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chain"},
			{Name: "block_height"},
			{Name: "transaction_hash"},
			{Name: "log_index"},
		},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, fmt.Errorf("写入事件记录失败: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetEventsByTokenId 获取token相关事件列表
func (e *EventLogic) GetEventsByTokenId(tokenId string) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("token_id = ?", tokenId).
		Order("block_height ASC, log_index ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, nil
}

// GetByType 按链和事件类型获取事件, 按入库顺序
func (e *EventLogic) GetByType(chain model.Chain, eventType model.EventType) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("chain = ? AND event_type = ?", chain, eventType).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, nil
}

// GetByTypeAndToken 按链/事件类型/token获取事件, 按入库顺序
func (e *EventLogic) GetByTypeAndToken(chain model.Chain, eventType model.EventType, tokenId string) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("chain = ? AND event_type = ? AND token_id = ?", chain, eventType, tokenId).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, nil
}

// GetEvents 分页获取事件
func (e *EventLogic) GetEvents(chain model.Chain, page, pageSize int) ([]model.EventModel, int64, error) {
	var events []model.EventModel
	var total int64

	query := e.db.Model(&model.EventModel{})
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, total, nil
}
