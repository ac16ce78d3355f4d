package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/exchange_desk/cmd/docs"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/SscSPs/exchange_desk/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clock clockwork.Clock,
) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return fmt.Errorf("failed to register validators: %w", err)
		}
	}

	r.Use(corsMiddleware(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	loginLimiter, err := newLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("invalid login rate limit: %w", err)
	}
	quoteLimiter, err := newLimiter(cfg.QuoteRateLimit)
	if err != nil {
		return fmt.Errorf("invalid quote rate limit: %w", err)
	}

	session := middleware.SessionMiddleware(cfg.SessionJWTSecret, cfg.SessionCookieName)

	registerAuthRoutes(r, cfg, services.Auth, middleware.GinMiddlewarize(loginLimiter), session)

	setupAPIRoutes(r, cfg, services, clock, session, middleware.RateLimit(quoteLimiter))

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIRoutes configures the /api group and delegates to specific entity route registrations
func setupAPIRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clock clockwork.Clock,
	session gin.HandlerFunc,
	quoteLimit gin.HandlerFunc,
) {
	api := r.Group("/api", session)

	registerExchangeRateRoutes(api, services.Rates, cfg.FrontendBaseURL)
	registerWalletRoutes(api, services.Wallets)
	registerQuoteRoutes(api, services.Quotes, quoteLimit)
	registerOrderRoutes(api, services.Orders)
	registerExchangeRoutes(api, services.Exchange, clock)
	registerDeskRoutes(api, services.Desk)
}

func newLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// corsMiddleware lets the frontend call the API with its session cookie.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		AllowWebSockets:  true,
		MaxAge:           12 * time.Hour,
	})
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
