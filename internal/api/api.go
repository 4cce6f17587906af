// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/devicehub/internal/api/handlers"
	"github.com/andresuchdata/devicehub/internal/api/middleware"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Inventory  handlers.InventoryService
	Sales      handlers.SalesService
	Loans      handlers.LoanService
	Warranties handlers.WarrantyService
	Dashboard  handlers.DashboardService
	Metrics    *metrics.Recorder
	Database   Pinger
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	if services == nil {
		services = &Services{}
	}

	router.GET("/health", healthHandler(services.Database))
	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	dashboardHandler := handlers.NewDashboardHandler(services.Dashboard, services.Warranties)
	if services.Dashboard != nil {
		apiGroup.GET("/dashboard", dashboardHandler.GetDashboard)
	}
	if services.Warranties != nil {
		apiGroup.GET("/warranties", dashboardHandler.ListWarranties)
	}

	if services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryHandler.ListInventory)
			inventoryGroup.POST("/devices", inventoryHandler.AddDevice)
			inventoryGroup.POST("/gadgets", inventoryHandler.AddGadget)
		}
		apiGroup.GET("/suppliers", inventoryHandler.ListSuppliers)
	}

	if services.Sales != nil {
		salesHandler := handlers.NewSalesHandler(services.Sales)
		apiGroup.GET("/sales", salesHandler.ListSales)
		apiGroup.POST("/sales", salesHandler.CreateSale)
	}

	if services.Loans != nil {
		loanHandler := handlers.NewLoanHandler(services.Loans)
		loanGroup := apiGroup.Group("/loans")
		{
			loanGroup.GET("", loanHandler.ListLoans)
			loanGroup.POST("", loanHandler.CreateLoan)
			loanGroup.POST("/:id/return", loanHandler.ReturnLoan)
			loanGroup.POST("/:id/sell", loanHandler.SellLoan)
		}
	}

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "details": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, strings.TrimSuffix(trimmed, "/"))
		}
	}
	return parsed, allowAll
}
