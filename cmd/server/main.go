package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartshelf/config"
	"smartshelf/internal/audit"
	"smartshelf/internal/database"
	"smartshelf/internal/events"
	"smartshelf/internal/server/handlers"
	"smartshelf/internal/server/middleware"
	"smartshelf/internal/service"
	"smartshelf/internal/shopify"
	"smartshelf/internal/store"
	"smartshelf/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	logger := config.GetLogger()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	itemStore := store.NewItemStore(db)
	palletStore := store.NewPalletStore(db)
	logStore := store.NewLogStore(db)

	recorder := audit.NewRecorder(logStore)
	hub := events.NewHub(logger)

	inventoryService := service.NewInventoryService(itemStore, recorder, hub, redisClient, logger)
	palletService := service.NewPalletService(palletStore, itemStore, recorder, hub, logger)

	var shopifyClient *shopify.Client
	var shopifySyncer *shopify.Syncer
	if cfg.Shopify.Configured() {
		shopifyClient = shopify.NewClient(cfg.Shopify.StoreURL, cfg.Shopify.AccessToken)
		shopifySyncer = shopify.NewSyncer(shopifyClient, itemStore, recorder, hub, inventoryService, logger)
	} else {
		log.Println("Shopify credentials not configured, catalog bridge disabled")
	}

	verifier := utils.NewTokenVerifier(cfg.Auth.PortalSecret, cfg.Auth.InternalSecret)

	inventoryHandler := handlers.NewInventoryHTTPHandler(inventoryService)
	palletHandler := handlers.NewPalletHTTPHandler(palletService)
	logHandler := handlers.NewLogHTTPHandler(logStore, recorder)
	shopifyHandler := handlers.NewShopifyHTTPHandler(shopifyClient, shopifySyncer)
	authHandler := handlers.NewAuthHTTPHandler(cfg.Auth)

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RateLimit("300-M"))

	r.GET("/api/health", healthCheckHandler)

	// --- Public API Group ---
	public := r.Group("/api")
	{
		public.POST("/auth/verify", authHandler.Verify)
	}

	// --- Protected API Group ---
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth(verifier))
	{
		auth := protected.Group("/auth")
		{
			auth.GET("/me", authHandler.Me)
			auth.POST("/refresh", authHandler.Refresh)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("", inventoryHandler.ListItems)
			inventory.GET("/stats/summary", inventoryHandler.Stats)
			inventory.GET("/:id", inventoryHandler.GetItem)
			inventory.POST("", inventoryHandler.CreateItem)
			inventory.PUT("/:id", inventoryHandler.UpdateItem)
			inventory.DELETE("/:id", inventoryHandler.DeleteItem)
			inventory.PATCH("/:id/quantity", inventoryHandler.AdjustQuantity)
		}

		pallets := protected.Group("/pallets")
		{
			pallets.GET("", palletHandler.ListPallets)
			pallets.GET("/:id", palletHandler.GetPallet)
			pallets.POST("", palletHandler.CreatePallet)
			pallets.PUT("/:id", palletHandler.UpdatePallet)
			pallets.DELETE("/:id", palletHandler.DeletePallet)
			pallets.POST("/:id/items/:itemId", palletHandler.AssignItem)
			pallets.DELETE("/:id/items/:itemId", palletHandler.RemoveItem)
		}

		logs := protected.Group("/logs")
		{
			logs.GET("", logHandler.ListLogs)
			logs.GET("/stats/summary", logHandler.Stats)
			logs.GET("/:id", logHandler.GetLog)
			logs.DELETE("/cleanup", logHandler.Cleanup)
		}

		shopifyGroup := protected.Group("/shopify")
		{
			shopifyGroup.GET("/products", shopifyHandler.ListProducts)
			shopifyGroup.POST("/sync", shopifyHandler.Sync)
			shopifyGroup.PUT("/inventory/:id", shopifyHandler.PushInventory)
		}
	}

	// Live update channel; the same token gate applies on upgrade.
	r.GET("/ws", middleware.JWTAuth(verifier), func(c *gin.Context) {
		hub.Serve(c.Writer, c.Request)
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "SmartShelf Manager",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
