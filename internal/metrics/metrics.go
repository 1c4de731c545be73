package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 巡块与桥接的运行指标
var (
	// BlocksProcessed 已处理区块数
	BlocksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "blocks_processed_total",
		Help:      "Number of blocks fully processed per chain.",
	}, []string{"chain"})

	// NullRounds 跳过的空轮数
	NullRounds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "null_rounds_total",
		Help:      "Number of null rounds skipped on the primary chain.",
	})

	// EventsDecoded 已解码事件数
	EventsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "events_decoded_total",
		Help:      "Number of contract events decoded per chain and type.",
	}, []string{"chain", "event_type"})

	// HandlerFailures 处理器失败数
	HandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "handler_failures_total",
		Help:      "Number of event handler failures per chain.",
	}, []string{"chain"})

	// BridgeSubmissions 桥接交易提交数
	BridgeSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "bridge_submissions_total",
		Help:      "Number of bridge transactions submitted to the primary chain.",
	})

	// BridgeFailures 桥接交易失败数
	BridgeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "bridge_failures_total",
		Help:      "Number of bridge transaction submissions that failed.",
	})

	// ReconcileRuns 对账执行数
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "reconcile_runs_total",
		Help:      "Number of reconciliation runs by outcome.",
	}, []string{"outcome"})
)
