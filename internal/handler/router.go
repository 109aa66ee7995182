package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"CoffeeStore-App/internal/domain/repository"
)

// NewRouter APIのルーティングを設定したginエンジンを返す
func NewRouter(h *CoffeeStoreHandler, storesRepo repository.CoffeeStoresRepository) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if err := storesRepo.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "CoffeeStore-App"})
	})

	api := r.Group("/api")
	{
		api.GET("/getCoffeeStoresByLocation", h.GetCoffeeStoresByLocation)
		api.GET("/getCoffeeStoresByLocationKey", h.GetCoffeeStoresByLocationKey)
		api.GET("/getCoffeeStoreById", h.GetCoffeeStoreByID)
		api.POST("/createCoffeeStore", h.CreateCoffeeStore)
		api.PUT("/favoriteCoffeeStoreById", h.FavoriteCoffeeStoreByID)
	}

	return r
}
