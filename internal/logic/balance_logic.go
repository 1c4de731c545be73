package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceLogic 持仓业务逻辑, 所有数量运算走decimal避免精度丢失
type BalanceLogic struct {
	db *gorm.DB
}

// NewBalanceLogic 创建持仓业务逻辑
func NewBalanceLogic(db *gorm.DB) *BalanceLogic {
	return &BalanceLogic{db: db}
}

// Credit 入账, 持仓行不存在时创建
func (b *BalanceLogic) Credit(address string, collectionId int64, value string) error {
	amount, err := parseAmount(value)
	if err != nil {
		return err
	}

	var balance model.BalanceModel
	err = b.db.Where("user_address = ? AND collection_id = ?", address, collectionId).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = model.BalanceModel{
			UserAddress:  address,
			CollectionId: collectionId,
			Amount:       amount.String(),
			Redeemed:     "0",
		}
		if err := b.db.Create(&balance).Error; err != nil {
			return fmt.Errorf("创建持仓记录失败: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("获取持仓记录失败: %w", err)
	}

	held, err := decimal.NewFromString(balance.Amount)
	if err != nil {
		return fmt.Errorf("持仓数据损坏: %q: %w", balance.Amount, err)
	}

	if err := b.db.Model(&model.BalanceModel{}).
		Where("id = ?", balance.Id).
		Update("amount", held.Add(amount).String()).Error; err != nil {
		return fmt.Errorf("更新持仓记录失败: %w", err)
	}
	return nil
}

// Debit 出账, 余额不足说明事件流有缺口, 直接报错
func (b *BalanceLogic) Debit(address string, collectionId int64, value string) error {
	amount, err := parseAmount(value)
	if err != nil {
		return err
	}

	var balance model.BalanceModel
	err = b.db.Where("user_address = ? AND collection_id = ?", address, collectionId).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("出账失败: 地址%s在集合%d下无持仓", address, collectionId)
	}
	if err != nil {
		return fmt.Errorf("获取持仓记录失败: %w", err)
	}

	held, err := decimal.NewFromString(balance.Amount)
	if err != nil {
		return fmt.Errorf("持仓数据损坏: %q: %w", balance.Amount, err)
	}
	if held.LessThan(amount) {
		return fmt.Errorf("出账失败: 地址%s在集合%d下持仓%s不足以扣减%s",
			address, collectionId, held.String(), amount.String())
	}

	if err := b.db.Model(&model.BalanceModel{}).
		Where("id = ?", balance.Id).
		Update("amount", held.Sub(amount).String()).Error; err != nil {
		return fmt.Errorf("更新持仓记录失败: %w", err)
	}
	return nil
}

// Redeem 赎回, 只累加已赎回量, 不动持有量, 已赎回量不能超过持有量
func (b *BalanceLogic) Redeem(address string, collectionId int64, value string) error {
	amount, err := parseAmount(value)
	if err != nil {
		return err
	}

	var balance model.BalanceModel
	err = b.db.Where("user_address = ? AND collection_id = ?", address, collectionId).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("赎回失败: 地址%s在集合%d下无持仓", address, collectionId)
	}
	if err != nil {
		return fmt.Errorf("获取持仓记录失败: %w", err)
	}

	held, err := decimal.NewFromString(balance.Amount)
	if err != nil {
		return fmt.Errorf("持仓数据损坏: %q: %w", balance.Amount, err)
	}
	redeemed, err := decimal.NewFromString(balance.Redeemed)
	if err != nil {
		return fmt.Errorf("持仓数据损坏: %q: %w", balance.Redeemed, err)
	}

	total := redeemed.Add(amount)
	if total.GreaterThan(held) {
		return fmt.Errorf("赎回失败: 地址%s在集合%d下赎回量%s超过持有量%s",
			address, collectionId, total.String(), held.String())
	}

	if err := b.db.Model(&model.BalanceModel{}).
		Where("id = ?", balance.Id).
		Update("redeemed", total.String()).Error; err != nil {
		return fmt.Errorf("更新持仓记录失败: %w", err)
	}
	return nil
}

// GetByAddress 获取地址的全部持仓
func (b *BalanceLogic) GetByAddress(address string) ([]model.BalanceModel, error) {
	var balances []model.BalanceModel
	if err := b.db.Where("user_address = ?", address).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("获取持仓列表失败: %w", err)
	}
	return balances, nil
}

// GetByCollection 获取集合下的全部持仓
func (b *BalanceLogic) GetByCollection(collectionId int64) ([]model.BalanceModel, error) {
	var balances []model.BalanceModel
	if err := b.db.Where("collection_id = ?", collectionId).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("获取持仓列表失败: %w", err)
	}
	return balances, nil
}

// parseAmount 解析非负整数数量
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("非法数量: %q: %w", value, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("非法数量: %q: 不能为负", value)
	}
	return amount, nil
}
