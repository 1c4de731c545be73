package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum"
)

// 区块读取的两类可识别错误, 对巡块器来说都是稳态而不是故障
var (
	// ErrBlockNotYetProduced 水位线追上链头, 区块还没产出
	ErrBlockNotYetProduced = errors.New("block not yet produced")
	// ErrNullRound 空轮, 该高度永远不会有区块
	ErrNullRound = errors.New("null round")
)

// classifyBlockErr 把RPC错误归类到可识别错误类
func classifyBlockErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ethereum.NotFound) {
		return ErrBlockNotYetProduced
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "null round") {
		return ErrNullRound
	}
	if strings.Contains(msg, "requested a future epoch") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "out of range") {
		return ErrBlockNotYetProduced
	}

	return err
}
