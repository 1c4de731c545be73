package router

import (
	"github.com/gin-gonic/gin"
	"github.com/polyphene/recs-monorepo/internal/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "recs-monorepo",
		})
	})

	// 运行指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 事件相关路由
		eventHandler := handler.NewEventHandler(db)
		v1.GET("/events", eventHandler.GetEvents)
		v1.GET("/tokens/:id/events", eventHandler.GetTokenEvents)

		// 集合相关路由
		collectionHandler := handler.NewCollectionHandler(db)
		collections := v1.Group("/collections")
		{
			collections.GET("", collectionHandler.GetCollections)
			collections.GET("/:id", collectionHandler.GetCollection)
			collections.GET("/:id/balances", collectionHandler.GetCollectionBalances)
		}

		// 账户相关路由
		accountHandler := handler.NewAccountHandler(db)
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:address/balances", accountHandler.GetBalances)
			accounts.GET("/:address/roles", accountHandler.GetRoles)
		}

		// 挂单相关路由
		listingHandler := handler.NewListingHandler(db)
		v1.GET("/listings", listingHandler.GetOpenListings)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
