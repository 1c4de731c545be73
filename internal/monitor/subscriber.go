package monitor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/metrics"
	"github.com/polyphene/recs-monorepo/internal/model"
)

const resubscribeDelay = 5 * time.Second

// LogSource 可订阅的日志源
type LogSource interface {
	Subscribe(ctx context.Context) (<-chan types.Log, ethereum.Subscription, error)
	DecodeLog(l types.Log) (*event.Decoded, error)
}

// Subscriber 副链实时订阅器
// 推送的事件只做留痕, 掉线期间漏掉的由对账任务补齐
type Subscriber struct {
	source     LogSource
	dispatcher Dispatcher
	pool       *ants.Pool
}

// NewSubscriber 创建副链订阅器
func NewSubscriber(source LogSource, dispatcher Dispatcher, pool *ants.Pool) *Subscriber {
	return &Subscriber{source: source, dispatcher: dispatcher, pool: pool}
}

// Run 启动订阅循环, 订阅断开后自动重连, 直到ctx取消
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Warn("副链订阅断开, %s后重连: %v", resubscribeDelay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(resubscribeDelay):
		}
	}
}

// consume 建立一次订阅并消费到出错为止
func (s *Subscriber) consume(ctx context.Context) error {
	ch, sub, err := s.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("副链订阅建立")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case l := <-ch:
			s.handleLog(ctx, l)
		}
	}
}

// handleLog 在协程池里解码并分发一条日志
func (s *Subscriber) handleLog(ctx context.Context, l types.Log) {
	if err := s.pool.Submit(func() {
		decoded, err := s.source.DecodeLog(l)
		if err != nil {
			logger.Error("解码副链事件失败: tx=%s log=%d err=%v", l.TxHash.Hex(), l.Index, err)
			metrics.HandlerFailures.WithLabelValues(string(model.ChainEnergyWeb)).Inc()
			return
		}
		if decoded == nil {
			return
		}
		metrics.EventsDecoded.WithLabelValues(string(model.ChainEnergyWeb), string(decoded.Data.EventType())).Inc()

		if err := s.dispatcher.Dispatch(ctx, decoded); err != nil {
			logger.Error("处理副链事件失败: type=%s tx=%s log=%d err=%v",
				decoded.Data.EventType(), l.TxHash.Hex(), l.Index, err)
			metrics.HandlerFailures.WithLabelValues(string(model.ChainEnergyWeb)).Inc()
		}
	}); err != nil {
		logger.Error("提交副链事件任务失败: %v", err)
	}
}
