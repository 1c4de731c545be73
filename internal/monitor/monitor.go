package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/polyphene/recs-monorepo/internal/chain"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/metrics"
	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// ChainReader 巡块器需要的链读取能力
type ChainReader interface {
	BlockAt(ctx context.Context, height uint64) (*types.Block, error)
	TransactionLogs(ctx context.Context, txHash common.Hash) ([]types.Log, error)
	ContractAddress() common.Address
	StartBlock() uint64
	Decoder() *event.Decoder
}

// Dispatcher 事件分发能力
type Dispatcher interface {
	Dispatch(ctx context.Context, d *event.Decoded) error
}

// State 巡块器状态
type State string

const (
	// StateFetching 拉取当前高度区块
	StateFetching State = "FETCHING"
	// StateProcessing 处理区块内事件
	StateProcessing State = "PROCESSING"
	// StateAdvancing 推进水位线
	StateAdvancing State = "ADVANCING"
	// StateBackingOff 追上链头, 等待新块
	StateBackingOff State = "BACKING_OFF"
)

// Walker 主链巡块器
// 按高度逐块推进的显式状态机, 水位线记录最后一个处理完成的高度,
// 重启后从水位线+1继续, 事件落库靠幂等键兜底重复
type Walker struct {
	chainName  model.Chain
	reader     ChainReader
	dispatcher Dispatcher
	cursor     *logic.CursorLogic
	backoff    time.Duration
	state      State
}

// NewWalker 创建主链巡块器
func NewWalker(db *gorm.DB, chainName model.Chain, reader ChainReader, dispatcher Dispatcher, backoff time.Duration) *Walker {
	return &Walker{
		chainName:  chainName,
		reader:     reader,
		dispatcher: dispatcher,
		cursor:     logic.NewCursorLogic(db),
		backoff:    backoff,
		state:      StateFetching,
	}
}

// State 当前状态
func (w *Walker) State() State {
	return w.state
}

// Run 启动巡块循环, 直到ctx取消
func (w *Walker) Run(ctx context.Context) error {
	height, err := w.resume()
	if err != nil {
		return err
	}
	logger.Info("巡块器启动: chain=%s 起始高度=%d", w.chainName, height)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.state = StateFetching
		block, err := w.reader.BlockAt(ctx, height)

		switch {
		case errors.Is(err, chain.ErrNullRound):
			// 空轮永远不会有区块, 推进水位线后直接看下一个高度
			metrics.NullRounds.Inc()
			logger.Debug("跳过空轮: chain=%s 高度=%d", w.chainName, height)
			if err := w.advance(height); err != nil {
				return err
			}
			height++
			continue

		case errors.Is(err, chain.ErrBlockNotYetProduced):
			w.state = StateBackingOff
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue

		case err != nil:
			// 其他RPC错误按瞬时故障处理, 等一轮后重试同一高度
			logger.Error("拉取区块失败: chain=%s 高度=%d err=%v", w.chainName, height, err)
			w.state = StateBackingOff
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		w.state = StateProcessing
		if err := w.processBlock(ctx, block); err != nil {
			// 链读取失败不能丢日志, 整块退避重试, 事件落库的幂等键兜底重复分发
			logger.Error("处理区块失败: chain=%s 高度=%d err=%v", w.chainName, height, err)
			w.state = StateBackingOff
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		w.state = StateAdvancing
		if err := w.advance(height); err != nil {
			return err
		}
		metrics.BlocksProcessed.WithLabelValues(string(w.chainName)).Inc()
		height++
	}
}

// processBlock 处理区块内全部合约事件
// 回执拉取失败返回错误让调用方整块重试, 不丢任何日志;
// 单个事件解码或处理失败只留痕不阻塞, 区块照常推进, 靠告警与重放兜底
func (w *Walker) processBlock(ctx context.Context, block *types.Block) error {
	contractAddr := w.reader.ContractAddress()
	decoder := w.reader.Decoder()

	for _, tx := range block.Transactions() {
		logs, err := w.reader.TransactionLogs(ctx, tx.Hash())
		if err != nil {
			return fmt.Errorf("获取交易%s日志失败: %w", tx.Hash().Hex(), err)
		}

		for _, l := range logs {
			if l.Address != contractAddr {
				continue
			}

			decoded, err := decoder.Decode(l)
			if err != nil {
				logger.Error("解码事件失败: chain=%s tx=%s log=%d err=%v",
					w.chainName, tx.Hash().Hex(), l.Index, err)
				metrics.HandlerFailures.WithLabelValues(string(w.chainName)).Inc()
				continue
			}
			if decoded == nil {
				continue
			}
			metrics.EventsDecoded.WithLabelValues(string(w.chainName), string(decoded.Data.EventType())).Inc()

			if err := w.dispatcher.Dispatch(ctx, decoded); err != nil {
				logger.Error("处理事件失败: chain=%s type=%s tx=%s log=%d err=%v",
					w.chainName, decoded.Data.EventType(), tx.Hash().Hex(), l.Index, err)
				metrics.HandlerFailures.WithLabelValues(string(w.chainName)).Inc()
			}
		}
	}

	return nil
}

// resume 计算起始高度: 有水位线从下一个高度继续, 否则从合约部署高度起步
func (w *Walker) resume() (uint64, error) {
	height, ok, err := w.cursor.Get(w.chainName)
	if err != nil {
		return 0, err
	}
	if !ok {
		return w.reader.StartBlock(), nil
	}
	return height + 1, nil
}

// advance 推进水位线
func (w *Walker) advance(height uint64) error {
	return w.cursor.Advance(w.chainName, height)
}

// sleep 可被ctx打断的退避等待
func (w *Walker) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.backoff):
		return nil
	}
}
