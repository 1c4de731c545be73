package event

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Roles 合约角色标识映射, 启动时构造一次后不可变, 显式传给处理器
type Roles struct {
	Admin    common.Hash
	Minter   common.Hash
	Redeemer common.Hash
	Auditor  common.Hash
}

// NewRoles 计算AccessControl角色标识
// 角色id是角色名的keccak256, admin固定为零哈希
func NewRoles() Roles {
	return Roles{
		Admin:    common.Hash{},
		Minter:   crypto.Keccak256Hash([]byte("MINTER_ROLE")),
		Redeemer: crypto.Keccak256Hash([]byte("REDEEMER_ROLE")),
		Auditor:  crypto.Keccak256Hash([]byte("AUDITOR_ROLE")),
	}
}

// Column 角色id对应的用户表布尔列
func (r Roles) Column(role string) (string, error) {
	switch common.HexToHash(role) {
	case r.Admin:
		return "is_admin", nil
	case r.Minter:
		return "is_minter", nil
	case r.Redeemer:
		return "is_redeemer", nil
	default:
		return "", fmt.Errorf("no user column for role %s", role)
	}
}
