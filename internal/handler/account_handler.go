package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"gorm.io/gorm"
)

type AccountHandler struct {
	balanceLogic *logic.BalanceLogic
	userLogic    *logic.UserLogic
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{
		balanceLogic: logic.NewBalanceLogic(db),
		userLogic:    logic.NewUserLogic(db),
	}
}

// GetBalances 获取地址的全部持仓
func (h *AccountHandler) GetBalances(c *gin.Context) {
	address := c.Param("address")

	balances, err := h.balanceLogic.GetByAddress(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// GetRoles 获取地址的角色标记
func (h *AccountHandler) GetRoles(c *gin.Context) {
	address := c.Param("address")

	user, err := h.userLogic.GetByAddress(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
