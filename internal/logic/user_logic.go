package logic

import (
	"errors"
	"fmt"

	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserLogic 用户角色业务逻辑
type UserLogic struct {
	db *gorm.DB
}

// NewUserLogic 创建用户角色业务逻辑
func NewUserLogic(db *gorm.DB) *UserLogic {
	return &UserLogic{db: db}
}

// SetRoleFlag 按地址upsert角色布尔列
// 同一地址重复授予/撤销同一角色是幂等的
func (u *UserLogic) SetRoleFlag(address, column string, value bool) error {
	user := model.UserModel{Address: address}
	switch column {
	case "is_admin":
		user.IsAdmin = value
	case "is_minter":
		user.IsMinter = value
	case "is_redeemer":
		user.IsRedeemer = value
	default:
		return fmt.Errorf("未知角色列: %s", column)
	}

	if err := u.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: value}),
	}).Create(&user).Error; err != nil {
		return fmt.Errorf("更新用户角色失败: %w", err)
	}
	return nil
}

// GetByAddress 按地址获取用户, 不存在时返回全false的零值用户
func (u *UserLogic) GetByAddress(address string) (*model.UserModel, error) {
	var user model.UserModel
	err := u.db.Where("address = ?", address).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserModel{Address: address}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取用户失败: %w", err)
	}
	return &user, nil
}
