package logic

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

// CursorLogic 链水位线业务逻辑
type CursorLogic struct {
	db *gorm.DB
}

// NewCursorLogic 创建链水位线业务逻辑
func NewCursorLogic(db *gorm.DB) *CursorLogic {
	return &CursorLogic{db: db}
}

// Get 获取某条链的水位线, 第二个返回值表示是否已初始化
func (c *CursorLogic) Get(chain model.Chain) (uint64, bool, error) {
	var cursor model.CursorModel
	err := c.db.Where("chain = ?", chain).First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("获取水位线失败: %w", err)
	}

	height, err := strconv.ParseUint(cursor.BlockHeight, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("水位线数据损坏: %q: %w", cursor.BlockHeight, err)
	}

	return height, true, nil
}

// Advance 推进水位线到height, 水位线只能单调前进, 落后的写入被忽略
func (c *CursorLogic) Advance(chain model.Chain, height uint64) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		var cursor model.CursorModel
		err := tx.Where("chain = ?", chain).First(&cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cursor = model.CursorModel{
				Chain:       chain,
				BlockHeight: strconv.FormatUint(height, 10),
			}
			if err := tx.Create(&cursor).Error; err != nil {
				return fmt.Errorf("初始化水位线失败: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("获取水位线失败: %w", err)
		}

		current, err := strconv.ParseUint(cursor.BlockHeight, 10, 64)
		if err != nil {
			return fmt.Errorf("水位线数据损坏: %q: %w", cursor.BlockHeight, err)
		}
		if height <= current {
			return nil
		}

		if err := tx.Model(&model.CursorModel{}).
			Where("id = ?", cursor.Id).
			Update("block_height", strconv.FormatUint(height, 10)).Error; err != nil {
			return fmt.Errorf("推进水位线失败: %w", err)
		}
		return nil
	})
}
