package task

import (
	"context"
	"encoding/json"

	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/metrics"
	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// TransactionSubmitter 主链交易提交能力
type TransactionSubmitter interface {
	Submit(ctx context.Context, args model.MintArgs) (string, bool, error)
}

// BridgeJob 桥接重放任务
// 每轮按入队顺序提交未确认交易, 提交失败就停下,
// 下一轮从同一笔交易重试, 确认过的交易不会重复提交
type BridgeJob struct {
	transactionLogic *logic.TransactionLogic
	submitter        TransactionSubmitter
}

// NewBridgeJob 创建桥接重放任务
func NewBridgeJob(db *gorm.DB, submitter TransactionSubmitter) *BridgeJob {
	return &BridgeJob{
		transactionLogic: logic.NewTransactionLogic(db),
		submitter:        submitter,
	}
}

// Run 执行一轮重放
func (j *BridgeJob) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		pending, err := j.transactionLogic.NextPending()
		if err != nil {
			logger.Error("获取待重放交易失败: %v", err)
			return
		}
		if pending == nil {
			return
		}

		var args model.MintArgs
		if err := json.Unmarshal([]byte(pending.RawArgs), &args); err != nil {
			// 参数损坏无法自愈, 留在队首等人工处理
			logger.Error("交易%d参数损坏: %v", pending.Id, err)
			metrics.BridgeFailures.Inc()
			return
		}

		hash, success, err := j.submitter.Submit(ctx, args)
		if err != nil {
			logger.Error("提交交易%d失败, 下一轮重试: %v", pending.Id, err)
			metrics.BridgeFailures.Inc()
			return
		}

		if err := j.transactionLogic.MarkConfirmed(pending.Id, hash, success); err != nil {
			logger.Error("更新交易%d确认状态失败: %v", pending.Id, err)
			return
		}

		metrics.BridgeSubmissions.Inc()
		if success {
			logger.Info("交易%d已确认: hash=%s", pending.Id, hash)
		} else {
			logger.Warn("交易%d上链但执行失败: hash=%s", pending.Id, hash)
		}
	}
}
