package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"gorm.io/gorm"
)

type CollectionHandler struct {
	collectionLogic *logic.CollectionLogic
	balanceLogic    *logic.BalanceLogic
}

func NewCollectionHandler(db *gorm.DB) *CollectionHandler {
	return &CollectionHandler{
		collectionLogic: logic.NewCollectionLogic(db),
		balanceLogic:    logic.NewBalanceLogic(db),
	}
}

// GetCollections 分页获取集合列表
func (h *CollectionHandler) GetCollections(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	collections, total, err := h.collectionLogic.GetCollections(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
	})
}

// GetCollection 获取集合详情
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的集合ID"})
		return
	}

	collection, err := h.collectionLogic.GetById(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection})
}

// GetCollectionBalances 获取集合下全部持仓
func (h *CollectionHandler) GetCollectionBalances(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的集合ID"})
		return
	}

	balances, err := h.balanceLogic.GetByCollection(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}
