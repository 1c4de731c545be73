package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/polyphene/recs-monorepo/internal/bridge"
	"github.com/polyphene/recs-monorepo/internal/chain"
	"github.com/polyphene/recs-monorepo/internal/config"
	"github.com/polyphene/recs-monorepo/internal/database"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/polyphene/recs-monorepo/internal/monitor"
	"github.com/polyphene/recs-monorepo/internal/processor"
	"github.com/polyphene/recs-monorepo/internal/router"
	"github.com/polyphene/recs-monorepo/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("初始化数据库失败: %v", err)
	}

	// 初始化链客户端
	filecoin, err := chain.NewFilecoin(cfg.Filecoin)
	if err != nil {
		logger.Fatal("初始化主链客户端失败: %v", err)
	}
	energyWeb, err := chain.NewEnergyWeb(cfg.EnergyWeb)
	if err != nil {
		logger.Fatal("初始化副链客户端失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 事件处理器
	roles := event.NewRoles()
	manager := processor.NewManager(db, filecoin, roles)

	// 主链巡块器
	backoff := time.Duration(cfg.Filecoin.BackoffSeconds) * time.Second
	walker := monitor.NewWalker(db, model.ChainFilecoin, filecoin, manager, backoff)
	go func() {
		if err := walker.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal("巡块器退出: %v", err)
		}
	}()

	// 副链订阅器
	pool, err := ants.NewPool(16)
	if err != nil {
		logger.Fatal("创建协程池失败: %v", err)
	}
	defer pool.Release()

	subscriber := monitor.NewSubscriber(energyWeb, manager, pool)
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("副链订阅器退出: %v", err)
		}
	}()

	// 定时任务: 启动时对账一次, 桥接重放周期执行
	taskManager, err := task.NewManager()
	if err != nil {
		logger.Fatal("创建任务管理器失败: %v", err)
	}

	operator := filecoin.GetAccountAddress().Hex()
	reconciler := bridge.NewReconciler(db, energyWeb, operator)
	if err := taskManager.RegisterReconcileJob(ctx, task.NewReconcileJob(reconciler)); err != nil {
		logger.Fatal("注册对账任务失败: %v", err)
	}

	interval := time.Duration(cfg.Bridge.Interval) * time.Second
	if err := taskManager.RegisterBridgeJob(ctx, interval, task.NewBridgeJob(db, filecoin)); err != nil {
		logger.Fatal("注册桥接任务失败: %v", err)
	}

	taskManager.Start()
	defer taskManager.Stop()

	// HTTP服务
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(db)
	go func() {
		logger.Info("HTTP服务启动: 端口%s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("HTTP服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("收到退出信号, 开始关闭")
	cancel()
}

// setupLogger 按配置初始化默认日志器
func setupLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("初始化日志失败: %v", err)
	}

	logger.SetDefaultLogger(l)
}
