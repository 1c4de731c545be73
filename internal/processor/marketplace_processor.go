package processor

import (
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// MarketplaceProcessor 市场挂单/成交事件处理器
type MarketplaceProcessor struct {
	db *gorm.DB
}

// NewMarketplaceProcessor 创建市场事件处理器
func NewMarketplaceProcessor(db *gorm.DB) *MarketplaceProcessor {
	return &MarketplaceProcessor{db: db}
}

// List 处理挂单事件
func (p *MarketplaceProcessor) List(d *event.Decoded, data *event.ListData) error {
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

		return logic.NewListingLogic(tx).CreateListing(&model.ListingModel{
			SellerAddress: data.Seller,
			CollectionId:  collection.Id,
			Amount:        data.TokenAmount,
			UnitPrice:     data.Price,
		})
	})
}

// Buy 处理成交事件, 只关闭挂单
// token流转由同一笔交易里的TransferSingle事件负责, 这里不动持仓
func (p *MarketplaceProcessor) Buy(d *event.Decoded, data *event.BuyData) error {
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

		return logic.NewListingLogic(tx).CloseListing(collection.Id, data.Seller, data.Buyer)
	})
}
