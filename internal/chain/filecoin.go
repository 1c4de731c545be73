package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/polyphene/recs-monorepo/internal/config"
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/model"
)

// Filecoin 主链客户端, 负责区块/回执读取与桥接交易提交
type Filecoin struct {
	client          *ethclient.Client
	privateKey      *ecdsa.PrivateKey
	chainId         *big.Int
	marketplaceAddr common.Address
	marketplaceABI  abi.ABI
	decoder         *event.Decoder
	startBlock      uint64
}

// NewFilecoin 创建主链客户端
func NewFilecoin(cfg config.FilecoinConfig) (*Filecoin, error) {
	// 连接链节点
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to filecoin client: %w", err)
	}

	// 解析桥接私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.BridgePrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(event.MarketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse marketplace ABI: %w", err)
	}

	decoder, err := event.NewDecoder(event.MarketplaceABI, model.ChainFilecoin)
	if err != nil {
		return nil, fmt.Errorf("failed to create marketplace decoder: %w", err)
	}

	return &Filecoin{
		client:          client,
		privateKey:      privateKey,
		chainId:         big.NewInt(cfg.ChainId),
		marketplaceAddr: common.HexToAddress(cfg.MarketplaceAddress),
		marketplaceABI:  parsedABI,
		decoder:         decoder,
		startBlock:      cfg.StartBlock,
	}, nil
}

// BlockAt 获取指定高度区块及其全部交易
// 区块未产出和空轮分别返回ErrBlockNotYetProduced/ErrNullRound
func (c *Filecoin) BlockAt(ctx context.Context, height uint64) (*types.Block, error) {
	block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(height))
	if err != nil {
		return nil, classifyBlockErr(err)
	}
	return block, nil
}

// TransactionLogs 获取交易回执中的日志, 按log index升序
func (c *Filecoin) TransactionLogs(ctx context.Context, txHash common.Hash) ([]types.Log, error) {
	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt for %s: %w", txHash.Hex(), err)
	}

	logs := make([]types.Log, 0, len(receipt.Logs))
	for _, l := range receipt.Logs {
		logs = append(logs, *l)
	}
	return logs, nil
}

// ContractAddress 监控的市场合约地址
func (c *Filecoin) ContractAddress() common.Address {
	return c.marketplaceAddr
}

// StartBlock 合约部署高度, 没有水位线时从这里起步
func (c *Filecoin) StartBlock() uint64 {
	return c.startBlock
}

// Decoder 市场合约事件解码器
func (c *Filecoin) Decoder() *event.Decoder {
	return c.decoder
}

// TokenURI 查询token的metadata URI
// 节点可能在mint刚落块时还没索引完, 调用方负责重试
func (c *Filecoin) TokenURI(ctx context.Context, tokenId *big.Int) (string, error) {
	input, err := c.marketplaceABI.Pack("uri", tokenId)
	if err != nil {
		return "", fmt.Errorf("failed to pack uri call: %w", err)
	}

	msg := ethereum.CallMsg{To: &c.marketplaceAddr, Data: input}
	output, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return "", fmt.Errorf("failed to call uri(%s): %w", tokenId.String(), err)
	}

	vals, err := c.marketplaceABI.Unpack("uri", output)
	if err != nil {
		return "", fmt.Errorf("failed to unpack uri result: %w", err)
	}

	return vals[0].(string), nil
}

// Submit 签名提交mintAndAllocate并等待确认
// 返回交易哈希与执行是否成功
func (c *Filecoin) Submit(ctx context.Context, args model.MintArgs) (string, bool, error) {
	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return "", false, fmt.Errorf("invalid mint amount: %s", args.Amount)
	}

	recipients := make([]common.Address, 0, len(args.Recipients))
	for _, r := range args.Recipients {
		recipients = append(recipients, common.HexToAddress(r))
	}

	amounts := make([]*big.Int, 0, len(args.Amounts))
	for _, a := range args.Amounts {
		v, ok := new(big.Int).SetString(a, 10)
		if !ok {
			return "", false, fmt.Errorf("invalid allocation amount: %s", a)
		}
		amounts = append(amounts, v)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return "", false, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(c.marketplaceAddr, c.marketplaceABI, c.client, c.client, c.client)
	tx, err := contract.Transact(auth, "mintAndAllocate", args.Cid, amount, recipients, amounts, args.Redeemed)
	if err != nil {
		return "", false, fmt.Errorf("failed to submit mintAndAllocate: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return "", false, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash().Hex(), err)
	}

	return receipt.TxHash.Hex(), receipt.Status == types.ReceiptStatusSuccessful, nil
}

// GetAccountAddress 桥接签名账户地址
func (c *Filecoin) GetAccountAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}
