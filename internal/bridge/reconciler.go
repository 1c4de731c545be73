package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/metrics"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CertificateSource 对账需要的副链事件读取能力
type CertificateSource interface {
	Events(ctx context.Context, fromBlock uint64) ([]*event.Decoded, error)
	StartBlock() uint64
}

// batch 一个待桥接的证书批次, 由四类事件关联而成
type batch struct {
	batchId        string
	statement      string
	certificateIds []string
	recipients     []string
	amounts        []string
}

// Reconciler 副链批量对账器
// 从水位线起增量拉取副链事件, 把已赎回的证书批次折算成
// 主链mintAndAllocate任务入队, 全程幂等, 重跑不产生重复任务
//
// 赎回声明是批次的最后一个事件, 以它为驱动做关联;
// 铸造和认领可能落在更早的拉取窗口, 从事件表回查补齐
type Reconciler struct {
	db       *gorm.DB
	source   CertificateSource
	operator string
}

// NewReconciler 创建对账器, operator为桥接签名账户地址
func NewReconciler(db *gorm.DB, source CertificateSource, operator string) *Reconciler {
	return &Reconciler{db: db, source: source, operator: operator}
}

// Run 执行一轮对账
func (r *Reconciler) Run(ctx context.Context) error {
	runId := uuid.NewString()

	from, ok, err := logic.NewCursorLogic(r.db).Get(model.ChainEnergyWeb)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return err
	}
	if ok {
		from++
	} else {
		from = r.source.StartBlock()
	}

	events, err := r.source.Events(ctx, from)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("拉取副链事件失败: %w", err)
	}
	logger.Info("对账开始: run=%s 起始高度=%d 事件数=%d", runId, from, len(events))

	if len(events) == 0 {
		metrics.ReconcileRuns.WithLabelValues("empty").Inc()
		return nil
	}

	var maxHeight uint64
	for _, d := range events {
		if d.BlockHeight > maxHeight {
			maxHeight = d.BlockHeight
		}
	}

	// 事件留痕/元数据/集合/入队/水位线在同一事务内落库,
	// 崩溃后重跑要么重做整轮, 要么全部已就位
	err = r.db.Transaction(func(tx *gorm.DB) error {
		eventLogic := logic.NewEventLogic(tx)
		for _, d := range events {
			eventModel, err := toEventModel(d)
			if err != nil {
				return err
			}
			if err := eventLogic.UpsertEvent(eventModel); err != nil {
				return err
			}
		}

		batchCount := 0
		enqueued := int64(0)
		for _, d := range events {
			statement, ok := d.Data.(*event.RedemptionSetData)
			if !ok {
				continue
			}

			b, err := r.assembleBatch(tx, statement)
			if err != nil {
				return err
			}
			if b == nil {
				continue
			}

			n, err := r.materialize(tx, b)
			if err != nil {
				return err
			}
			batchCount++
			enqueued += n
		}

		if err := logic.NewCursorLogic(tx).Advance(model.ChainEnergyWeb, maxHeight); err != nil {
			return err
		}

		logger.Info("对账完成: run=%s 批次数=%d 新入队=%d 水位线=%d",
			runId, batchCount, enqueued, maxHeight)
		return nil
	})
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return err
	}

	metrics.ReconcileRuns.WithLabelValues("ok").Inc()
	return nil
}

// assembleBatch 从事件表回查批次的铸造与认领记录, 不完整时返回nil
// 同一批次可能拆成多条批次铸造事件, 证书id取并集;
// 证书必须有登记合约的铸造事件才算存在, 没有的不桥接, 它的认领一并忽略
func (r *Reconciler) assembleBatch(tx *gorm.DB, statement *event.RedemptionSetData) (*batch, error) {
	eventLogic := logic.NewEventLogic(tx)

	mintedEvents, err := eventLogic.GetByType(model.ChainEnergyWeb, model.EventTypeBatchMinted)
	if err != nil {
		return nil, err
	}

	var certificateIds []string
	found := false
	for _, e := range mintedEvents {
		var data event.BatchMintedData
		if err := json.Unmarshal([]byte(e.Data), &data); err != nil {
			return nil, fmt.Errorf("批次铸造事件%d数据损坏: %w", e.Id, err)
		}
		if data.BatchId == statement.BatchId {
			certificateIds = append(certificateIds, data.CertificateIds...)
			found = true
		}
	}
	if !found {
		logger.Warn("批次%s有赎回声明但没有铸造记录, 跳过", statement.BatchId)
		return nil, nil
	}

	b := &batch{
		batchId:        statement.BatchId,
		statement:      statement.RedemptionStatement,
		certificateIds: certificateIds,
	}
	for _, certId := range certificateIds {
		mintEvents, err := eventLogic.GetByTypeAndToken(model.ChainEnergyWeb, model.EventTypeMint, certId)
		if err != nil {
			return nil, err
		}
		if len(mintEvents) == 0 {
			logger.Warn("批次%s证书%s没有铸造事件, 不桥接", statement.BatchId, certId)
			continue
		}

		claimEvents, err := eventLogic.GetByTypeAndToken(model.ChainEnergyWeb, model.EventTypeClaimSingle, certId)
		if err != nil {
			return nil, err
		}
		for _, e := range claimEvents {
			var claim event.ClaimSingleData
			if err := json.Unmarshal([]byte(e.Data), &claim); err != nil {
				return nil, fmt.Errorf("认领事件%d数据损坏: %w", e.Id, err)
			}
			b.recipients = append(b.recipients, claim.ClaimSubject)
			b.amounts = append(b.amounts, claim.Value)
		}
	}

	return b, nil
}

// materialize 把一个批次落成元数据+集合+桥接任务
func (r *Reconciler) materialize(tx *gorm.DB, b *batch) (int64, error) {
	if len(b.recipients) == 0 {
		logger.Warn("批次%s有赎回声明但没有认领记录, 跳过", b.batchId)
		return 0, nil
	}

	total := decimal.Zero
	for _, a := range b.amounts {
		v, err := decimal.NewFromString(a)
		if err != nil {
			return 0, fmt.Errorf("批次%s认领数量非法: %q: %w", b.batchId, a, err)
		}
		total = total.Add(v)
	}

	cid := deriveCid(b.batchId, b.statement)

	metadataLogic := logic.NewMetadataLogic(tx)
	if err := metadataLogic.CreateIgnoreDuplicates(&model.MetadataModel{
		Cid:                 cid,
		RedemptionStatement: b.statement,
		Volume:              total.String(),
		CreatedBy:           r.operator,
	}); err != nil {
		return 0, err
	}
	metadata, err := metadataLogic.FindByCid(cid)
	if err != nil {
		return 0, err
	}
	if metadata == nil {
		return 0, fmt.Errorf("批次%s元数据写入后查询不到: cid=%s", b.batchId, cid)
	}

	if err := logic.NewCollectionLogic(tx).CreateIgnoreDuplicates(&model.CollectionModel{
		EnergyWebTokenIds:   b.certificateIds,
		MetadataId:          &metadata.Id,
		RedemptionStatement: &b.statement,
	}); err != nil {
		return 0, err
	}

	redeemed := make([]bool, len(b.recipients))
	for i := range redeemed {
		redeemed[i] = true
	}
	rawArgs, err := json.Marshal(model.MintArgs{
		Cid:        cid,
		Amount:     total.String(),
		Recipients: b.recipients,
		Amounts:    b.amounts,
		Redeemed:   redeemed,
	})
	if err != nil {
		return 0, fmt.Errorf("序列化批次%s桥接参数失败: %w", b.batchId, err)
	}

	return logic.NewTransactionLogic(tx).Enqueue([]model.TransactionModel{{
		TransactionType: model.TransactionTypeMint,
		Cid:             cid,
		RawArgs:         string(rawArgs),
	}})
}

// deriveCid 由批次id和赎回声明确定性派生cid, 重跑对账得到同一个值
func deriveCid(batchId, statement string) string {
	return crypto.Keccak256Hash([]byte(batchId), []byte(statement)).Hex()
}

// toEventModel 把已解码事件转成事件行
func toEventModel(d *event.Decoded) (*model.EventModel, error) {
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
