package task

import (
	"context"

	"github.com/polyphene/recs-monorepo/internal/bridge"
	"github.com/polyphene/recs-monorepo/internal/logger"
)

// ReconcileJob 副链对账任务
type ReconcileJob struct {
	reconciler *bridge.Reconciler
}

// NewReconcileJob 创建对账任务
func NewReconcileJob(reconciler *bridge.Reconciler) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler}
}

// Run 执行一轮对账
func (j *ReconcileJob) Run(ctx context.Context) {
	if err := j.reconciler.Run(ctx); err != nil {
		logger.Error("对账失败: %v", err)
	}
}
