package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/polyphene/recs-monorepo/internal/logger"
)

// Manager 定时任务管理器
type Manager struct {
	scheduler gocron.Scheduler
}

// NewManager 创建定时任务管理器
func NewManager() (*Manager, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("创建任务调度器失败: %w", err)
	}
	return &Manager{scheduler: scheduler}, nil
}

// RegisterBridgeJob 注册桥接重放任务
// 单例模式保证任何时刻只有一个重放在跑, 上一轮没结束就顺延
func (m *Manager) RegisterBridgeJob(ctx context.Context, interval time.Duration, job *BridgeJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job.Run, ctx),
		gocron.WithName("bridge-replay"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("注册桥接重放任务失败: %w", err)
	}
	return nil
}

// RegisterReconcileJob 注册启动即执行的一次性对账任务
func (m *Manager) RegisterReconcileJob(ctx context.Context, job *ReconcileJob) error {
	_, err := m.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
		gocron.NewTask(job.Run, ctx),
		gocron.WithName("batch-reconcile"),
	)
	if err != nil {
		return fmt.Errorf("注册对账任务失败: %w", err)
	}
	return nil
}

// Start 启动调度
func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("任务调度器已启动")
}

// Stop 停止调度
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("任务调度器关闭失败: %v", err)
	}
}
