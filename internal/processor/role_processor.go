package processor

import (
	"github.com/polyphene/recs-monorepo/internal/event"
	"github.com/polyphene/recs-monorepo/internal/logger"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"gorm.io/gorm"
)

// RoleProcessor 角色授予/撤销事件处理器
type RoleProcessor struct {
	db    *gorm.DB
	roles event.Roles
}

// NewRoleProcessor 创建角色事件处理器
func NewRoleProcessor(db *gorm.DB, roles event.Roles) *RoleProcessor {
	return &RoleProcessor{db: db, roles: roles}
}

// Grant 处理角色授予事件
func (p *RoleProcessor) Grant(d *event.Decoded, data *event.GrantRoleData) error {
	return p.setRole(d, data.Role, data.Account, true)
}

// Revoke 处理角色撤销事件
func (p *RoleProcessor) Revoke(d *event.Decoded, data *event.RevokeRoleData) error {
	return p.setRole(d, data.Role, data.Account, false)
}

// setRole 更新用户角色列并落事件
// 合约上可能出现没有对应用户列的角色, 只留痕不更新
func (p *RoleProcessor) setRole(d *event.Decoded, role, account string, value bool) error {
	eventModel, err := buildEventModel(d)
	if err != nil {
		return err
	}

	column, err := p.roles.Column(role)
	if err != nil {
		logger.Warn("忽略未映射角色: role=%s account=%s", role, account)
		_, err := logic.NewEventLogic(p.db).CreateIfAbsent(eventModel)
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

		return logic.NewUserLogic(tx).SetRoleFlag(account, column, value)
	})
}
