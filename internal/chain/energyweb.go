package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/polyphene/recs-monorepo/internal/config"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/model"
)

// EnergyWeb 副链客户端, HTTP端点做批量查询, WSS端点做事件订阅
type EnergyWeb struct {
	http *ethclient.Client
	wss  *ethclient.Client

	registryAddr  common.Address
	batchAddr     common.Address
	agreementAddr common.Address

	decoders   map[common.Address]*event.Decoder
	startBlock uint64
}

// NewEnergyWeb 创建副链客户端
func NewEnergyWeb(cfg config.EnergyWebConfig) (*EnergyWeb, error) {
	httpClient, err := ethclient.Dial(cfg.HttpUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to energy web client: %w", err)
	}

	// WSS可选, 不配置时只能做批量对账, 不做实时订阅
	var wssClient *ethclient.Client
	if cfg.WssUrl != "" {
		wssClient, err = ethclient.Dial(cfg.WssUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to energy web wss client: %w", err)
		}
	}

	registryAddr := common.HexToAddress(cfg.RegistryAddress)
	batchAddr := common.HexToAddress(cfg.BatchFactoryAddress)
	agreementAddr := common.HexToAddress(cfg.AgreementFactoryAddress)

	decoders := make(map[common.Address]*event.Decoder)
	for addr, abiJSON := range map[common.Address]string{
		registryAddr:  event.RegistryABI,
		batchAddr:     event.BatchFactoryABI,
		agreementAddr: event.AgreementFactoryABI,
	} {
		decoder, err := event.NewDecoder(abiJSON, model.ChainEnergyWeb)
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder for %s: %w", addr.Hex(), err)
		}
		decoders[addr] = decoder
	}

	return &EnergyWeb{
		http:          httpClient,
		wss:           wssClient,
		registryAddr:  registryAddr,
		batchAddr:     batchAddr,
		agreementAddr: agreementAddr,
		decoders:      decoders,
		startBlock:    cfg.StartBlock,
	}, nil
}

// StartBlock 相关合约部署高度
func (c *EnergyWeb) StartBlock() uint64 {
	return c.startBlock
}

// Events 拉取从fromBlock起三个合约的全部已解码事件, 按(区块, log index)升序
func (c *EnergyWeb) Events(ctx context.Context, fromBlock uint64) ([]*event.Decoded, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.registryAddr, c.batchAddr, c.agreementAddr},
	}

	logs, err := c.http.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter energy web logs: %w", err)
	}

	decoded := make([]*event.Decoded, 0, len(logs))
	for _, l := range logs {
		d, err := c.DecodeLog(l)
		if err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}
		decoded = append(decoded, d)
	}

	sort.Slice(decoded, func(i, j int) bool {
		if decoded[i].BlockHeight != decoded[j].BlockHeight {
			return decoded[i].BlockHeight < decoded[j].BlockHeight
		}
		return decoded[i].LogIndex < decoded[j].LogIndex
	})

	return decoded, nil
}

// DecodeLog 按合约地址选择解码器解析日志
func (c *EnergyWeb) DecodeLog(l types.Log) (*event.Decoded, error) {
	decoder, ok := c.decoders[l.Address]
	if !ok {
		return nil, nil
	}
	return decoder.Decode(l)
}

// Subscribe 通过WSS订阅三个合约的日志推送
func (c *EnergyWeb) Subscribe(ctx context.Context) (<-chan types.Log, ethereum.Subscription, error) {
	if c.wss == nil {
		return nil, nil, fmt.Errorf("no wss endpoint configured for energy web subscription")
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.registryAddr, c.batchAddr, c.agreementAddr},
	}

	ch := make(chan types.Log, 128)
	sub, err := c.wss.SubscribeFilterLogs(ctx, query, ch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to energy web logs: %w", err)
	}

	return ch, sub, nil
}
