package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/api/handlers"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/api/middleware"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/email"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// Services are the dependencies of the public API.
type Services struct {
	Vendors    services.IVendorService
	RFPs       services.IRFPService
	Proposals  services.IProposalService
	Outreach   services.IOutreachService
	Ingestion  services.IIngestionService
	Comparison services.IComparisonService
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, logger)

	// Apply global middleware first (order matters)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))
	r.Use(rateLimiter.Limit())

	exposeErrors := !cfg.IsProduction()
	vendorHandler := handlers.NewVendorHandler(svc.Vendors, exposeErrors)
	rfpHandler := handlers.NewRFPHandler(svc.RFPs, svc.Vendors, svc.Outreach, exposeErrors)
	proposalHandler := handlers.NewProposalHandler(svc.Proposals, svc.Ingestion, svc.Comparison, exposeErrors)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to RFP Management System API",
			"endpoints": gin.H{
				"vendors":   "/api/vendors",
				"rfps":      "/api/rfps",
				"proposals": "/api/proposals",
				"health":    "/api/health",
			},
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"message":   "RFP Management System API is running",
				"timestamp": time.Now().UTC(),
			})
		})

		vendors := apiGroup.Group("/vendors")
		vendors.POST("", vendorHandler.CreateVendor)
		vendors.GET("", vendorHandler.ListVendors)
		vendors.GET("/:id", vendorHandler.GetVendor)
		vendors.PUT("/:id", vendorHandler.UpdateVendor)
		vendors.DELETE("/:id", vendorHandler.DeleteVendor)

		rfps := apiGroup.Group("/rfps")
		rfps.POST("/create", rfpHandler.CreateRFP)
		rfps.GET("", rfpHandler.ListRFPs)
		rfps.GET("/:id", rfpHandler.GetRFP)
		rfps.PUT("/:id", rfpHandler.UpdateRFP)
		rfps.POST("/:id/send", rfpHandler.SendRFP)

		proposals := apiGroup.Group("/proposals")
		proposals.GET("/rfp/:rfpId", proposalHandler.ListByRFP)
		proposals.POST("/check-emails", proposalHandler.CheckEmails)
		proposals.GET("/:id/compare", proposalHandler.CompareProposals)
		proposals.GET("/:id", proposalHandler.GetProposal)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	return r
}

// MockMailStore is the subset of the redis client the service API reads
// mock emails from.
type MockMailStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SetupServiceRouter configures the internal service API used by local
// tooling and end-to-end tests: it can stop the process and read back the
// mock emails stored by the Redis sender. rdb may be nil.
func SetupServiceRouter(rdb MockMailStore, shutdownChan chan<- struct{}, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			logger.Info("shutdown requested via service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
			}
		case "getTestEmail":
			if rdb == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis is not configured"})
				return
			}
			var args []string // [recipient, "RFP-<id>"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [recipient, rfpToken]"})
				return
			}
			getTestEmail(c, rdb, email.MockEmailKey(args[0], args[1]), logger)
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// getTestEmail polls Redis briefly for a mock email and deletes it once read.
func getTestEmail(c *gin.Context, rdb MockMailStore, key string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var data string
	var err error
	for i := 0; i < 10; i++ {
		data, err = rdb.Get(ctx, key).Result()
		if err == nil {
			rdb.Del(ctx, key)
			break
		}
		if !errors.Is(err, redis.Nil) {
			logger.Error("service API redis read failed", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", key)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &emailData); err != nil {
		logger.Error("service API stored email is not JSON", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}
