package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/auth"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed static/*
var staticEmbed embed.FS

const defaultRateLimit = 10000

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB // nil: keys are not recorded and the admin routes are off
	Auth     *auth.Authenticator
	Limiter  *ratelimit.Limiter // nil: no daily limit
	Logger   *zap.Logger
	Recorder allocator.Recorder

	Policy allocator.Policy
	Search allocator.SearchOptions

	// DefaultRateLimit applies to keys without a database record
	DefaultRateLimit int
	// AdminUsername and AdminPassword seed the first admin account
	AdminUsername string
	AdminPassword string
	// Metrics serves /metrics; nil means the default Prometheus registry
	Metrics http.Handler
}

func (h *Handler) log() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Housekeeping Allocation API",
			"version": "1.0.0",
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))

	if h.DB != nil {
		r.GET("/admin", h.AdminInterface)
		r.POST("/admin/login", h.Login)

		admin := r.Group("/admin")
		admin.Use(h.AuthMiddleware())
		{
			admin.POST("/keys", h.GenerateKey)
			admin.GET("/keys", h.ListKeys)
			admin.PUT("/keys/:id", h.UpdateKeyLimit)
			admin.DELETE("/keys/:id", h.RevokeKey)
			admin.GET("/usage/:id", h.GetUsage)
		}
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware(), h.RateLimitMiddleware())
	{
		api.POST("/allocate", h.AllocateJSON)
		api.POST("/allocate/csv", h.AllocateCSV)
		api.POST("/allocate/xlsx", h.AllocateXLSX)
		api.POST("/allocation/check", h.CheckAllocation)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
		api.GET("/runs", h.ListRuns)
	}
	return r
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for allocation routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		apiKey := &database.APIKey{Key: key, Name: userID, KeyPreview: auth.KeyPreview(key), RateLimit: h.DefaultRateLimit}
		if apiKey.RateLimit == 0 {
			apiKey.RateLimit = defaultRateLimit
		}
		if h.DB != nil {
			// Fetch or create API key record to track usage
			apiKey, err = auth.TouchAPIKey(h.DB, key, userID)
			if err != nil {
				h.log().Error("api key lookup failed", zap.String("user", userID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
				return
			}
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// RateLimitMiddleware enforces the daily request allowance of the key. A
// Redis outage lets requests through.
func (h *Handler) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, ok := currentKey(c)
		if h.Limiter == nil || !ok {
			c.Next()
			return
		}

		usage, err := h.Limiter.Allow(c.Request.Context(), apiKey.Name, apiKey.RateLimit)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			h.log().Warn("rate limiter unavailable", zap.String("key", apiKey.Name), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(usage.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(usage.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(usage.ResetsAt.Unix(), 10))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Daily rate limit exceeded",
				"limit":     usage.Limit,
				"resets_at": usage.ResetsAt,
			})
			return
		}
		c.Next()
	}
}

func currentKey(c *gin.Context) (*database.APIKey, bool) {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil, false
	}
	apiKey, ok := raw.(*database.APIKey)
	return apiKey, ok
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	if err := h.Auth.EnsureAdminExists(h.DB, h.AdminUsername, h.AdminPassword, h.log()); err != nil {
		h.log().Error("could not ensure admin account", zap.Error(err))
	}

	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
