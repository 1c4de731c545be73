package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"github.com/polyphene/recs-monorepo/internal/model"
	"gorm.io/gorm"
)

type EventHandler struct {
	eventLogic *logic.EventLogic
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		eventLogic: logic.NewEventLogic(db),
	}
}

// GetEvents 分页获取事件列表
func (h *EventHandler) GetEvents(c *gin.Context) {
	chain := model.Chain(c.Query("chain"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	events, total, err := h.eventLogic.GetEvents(chain, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTokenEvents 获取token的事件历史, 按链上顺序
func (h *EventHandler) GetTokenEvents(c *gin.Context) {
	tokenId := c.Param("id")

	events, err := h.eventLogic.GetEventsByTokenId(tokenId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
