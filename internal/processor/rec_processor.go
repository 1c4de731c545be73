package processor

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"gorm.io/gorm"
)

// TokenURIReader 查询token元数据URI
type TokenURIReader interface {
	TokenURI(ctx context.Context, tokenId *big.Int) (string, error)
}

const (
	uriRetryCount = 3
	uriRetryDelay = 2 * time.Second
)

// RecProcessor 证书token事件处理器, 负责mint/transfer/redeem
type RecProcessor struct {
	db         *gorm.DB
	uriReader  TokenURIReader
	retryCount int
	retryDelay time.Duration
}

// NewRecProcessor 创建证书token事件处理器
func NewRecProcessor(db *gorm.DB, uriReader TokenURIReader) *RecProcessor {
	return &RecProcessor{
		db:         db,
		uriReader:  uriReader,
		retryCount: uriRetryCount,
		retryDelay: uriRetryDelay,
	}
}

// Mint 处理铸造事件: 关联元数据, 落集合, 给接收方入账
// uri查询放在事件留痕之后, 重放已落库的事件不再花重试开销;
// 节点对新块的uri查询可能滞后, 重试耗尽后照常落集合, 元数据留待后补
func (p *RecProcessor) Mint(ctx context.Context, d *event.Decoded, data *event.MintData) error {
	eventModel, err := buildEventModel(d)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		inserted, err := logic.NewEventLogic(tx).CreateIfAbsent(eventModel)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		var metadataId *int64
		if cid := p.resolveCid(ctx, data.Id); cid != "" {
			metadata, err := logic.NewMetadataLogic(tx).FindByCid(cid)
			if err != nil {
				return err
			}
			if metadata != nil {
				metadataId = &metadata.Id
				if err := logic.NewMetadataLogic(tx).MarkMinted(cid); err != nil {
					return err
				}
			} else {
				logger.Warn("mint事件找不到cid对应元数据: token=%s cid=%s", data.Id, cid)
			}
		}

		collection, err := logic.NewCollectionLogic(tx).UpsertMinted(data.Id, metadataId)
		if err != nil {
			return err
		}

		return logic.NewBalanceLogic(tx).Credit(data.To, collection.Id, data.Value)
	})
}

// Transfer 处理转移事件: 发送方出账, 接收方入账, 原子完成
func (p *RecProcessor) Transfer(d *event.Decoded, data *event.TransferData) error {
	eventModel, err := buildEventModel(d)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		inserted, err := logic.NewEventLogic(tx).CreateIfAbsent(eventModel)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		collection, err := logic.NewCollectionLogic(tx).GetByFilecoinTokenId(data.Id)
		if err != nil {
			return err
		}

		balanceLogic := logic.NewBalanceLogic(tx)
		if err := balanceLogic.Debit(data.From, collection.Id, data.Value); err != nil {
			return err
		}
		return balanceLogic.Credit(data.To, collection.Id, data.Value)
	})
}

// Redeem 处理赎回事件: 累加持有者已赎回量
func (p *RecProcessor) Redeem(d *event.Decoded, data *event.RedeemData) error {
	eventModel, err := buildEventModel(d)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		inserted, err := logic.NewEventLogic(tx).CreateIfAbsent(eventModel)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		collection, err := logic.NewCollectionLogic(tx).GetByFilecoinTokenId(data.TokenId)
		if err != nil {
			return err
		}

		return logic.NewBalanceLogic(tx).Redeem(data.Owner, collection.Id, data.Amount)
	})
}

// resolveCid 带重试查询token元数据cid, 失败时返回空串
func (p *RecProcessor) resolveCid(ctx context.Context, tokenId string) string {
	id, ok := new(big.Int).SetString(tokenId, 10)
	if !ok {
		logger.Error("非法token id: %s", tokenId)
		return ""
	}

	var lastErr error
	for i := 0; i < p.retryCount; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(p.retryDelay):
			}
		}

		uri, err := p.uriReader.TokenURI(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}
		return strings.TrimPrefix(uri, "ipfs://")
	}

	logger.Error("查询token %s元数据URI失败(重试%d次): %v", tokenId, p.retryCount, lastErr)
	return ""
}
