package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lavka/pkg/logger"
	"lavka/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Inventory Service с использованием Gin
// Чтение публично, все изменяющие операции требуют JWT токен
func SetupRoutes(
	authHandler *AuthHandler,
	categoryHandler *CategoryHandler,
	productHandler *ProductHandler,
	customerHandler *CustomerHandler,
	saleHandler *SaleHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("inventory-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "inventory-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Аутентификация
	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := authMiddleware.Authenticate()

	categories := router.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAllCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.GET("/:id/products", categoryHandler.GetCategoryProducts)
		categories.POST("", protected, categoryHandler.CreateCategory)
		categories.PUT("/:id", protected, categoryHandler.UpdateCategory)
		categories.DELETE("/:id", protected, categoryHandler.DeleteCategory)
	}

	products := router.Group("/products")
	{
		products.GET("", productHandler.GetAllProducts)
		products.GET("/low_stock", productHandler.GetLowStockProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", protected, productHandler.CreateProduct)
		products.PUT("/:id", protected, productHandler.UpdateProduct)
		products.DELETE("/:id", protected, productHandler.DeleteProduct)
	}

	customers := router.Group("/customers")
	{
		customers.GET("", customerHandler.GetAllCustomers)
		customers.GET("/:id", customerHandler.GetCustomer)
		customers.GET("/:id/purchase_history", customerHandler.GetPurchaseHistory)
		customers.POST("", protected, customerHandler.CreateCustomer)
		customers.PUT("/:id", protected, customerHandler.UpdateCustomer)
		customers.DELETE("/:id", protected, customerHandler.DeleteCustomer)
	}

	sales := router.Group("/sales")
	{
		sales.GET("", saleHandler.GetAllSales)
		sales.GET("/dashboard_stats", saleHandler.GetDashboardStats)
		sales.GET("/:id", saleHandler.GetSale)
		sales.POST("", protected, saleHandler.CreateSale)
		sales.PATCH("/:id", protected, saleHandler.UpdateSaleStatus)
		sales.DELETE("/:id", protected, saleHandler.DeleteSale)
	}

	return router
}
