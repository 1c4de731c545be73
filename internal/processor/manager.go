package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// Manager 事件处理器入口, 按事件载荷类型分发到具体处理器
// 每个事件的全部状态变更在同一个数据库事务内完成,
// 事务失败时事件行也不会落库, 重放后可以完整重做
type Manager struct {
	eventLogic  *logic.EventLogic
	rec         *RecProcessor
	marketplace *MarketplaceProcessor
	role        *RoleProcessor
}

// NewManager 创建事件处理器入口
func NewManager(db *gorm.DB, uriReader TokenURIReader, roles event.Roles) *Manager {
	return &Manager{
		eventLogic:  logic.NewEventLogic(db),
		rec:         NewRecProcessor(db, uriReader),
		marketplace: NewMarketplaceProcessor(db),
		role:        NewRoleProcessor(db, roles),
	}
}

// Dispatch 处理一条已解码事件
// 副链事件只做事件留痕, 关系状态由对账任务负责
func (m *Manager) Dispatch(ctx context.Context, d *event.Decoded) error {
	if d.Chain != model.ChainFilecoin {
		return m.Record(d)
	}

	switch data := d.Data.(type) {
	case *event.MintData:
		return m.rec.Mint(ctx, d, data)
	case *event.TransferData:
		return m.rec.Transfer(d, data)
	case *event.RedeemData:
		return m.rec.Redeem(d, data)
	case *event.ListData:
		return m.marketplace.List(d, data)
	case *event.BuyData:
		return m.marketplace.Buy(d, data)
	case *event.GrantRoleData:
		return m.role.Grant(d, data)
	case *event.RevokeRoleData:
		return m.role.Revoke(d, data)
	default:
		return m.Record(d)
	}
}

// Record 只落事件行, 不做任何关系状态变更
func (m *Manager) Record(d *event.Decoded) error {
	eventModel, err := buildEventModel(d)
	if err != nil {
		return err
	}
	_, err = m.eventLogic.CreateIfAbsent(eventModel)
	return err
}

// buildEventModel 把已解码事件转成待落库的事件行
func buildEventModel(d *event.Decoded) (*model.EventModel, error) {
	payload, err := json.Marshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("序列化事件载荷失败: %w", err)
	}

	return &model.EventModel{
		Chain:           d.Chain,
		TokenId:         d.TokenId(),
		EventType:       d.Data.EventType(),
		Data:            string(payload),
		BlockHeight:     strconv.FormatUint(d.BlockHeight, 10),
		TransactionHash: d.TransactionHash,
		LogIndex:        d.LogIndex,
	}, nil
}
