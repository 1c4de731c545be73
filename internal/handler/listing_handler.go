package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/logic"
	"gorm.io/gorm"
)

type ListingHandler struct {
	listingLogic *logic.ListingLogic
}

func NewListingHandler(db *gorm.DB) *ListingHandler {
	return &ListingHandler{
		listingLogic: logic.NewListingLogic(db),
	}
}

// GetOpenListings 获取全部未成交挂单
func (h *ListingHandler) GetOpenListings(c *gin.Context) {
	listings, err := h.listingLogic.GetOpenListings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}
