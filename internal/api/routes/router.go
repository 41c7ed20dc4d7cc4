package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pka/internal/api/controllers"
	"pka/pkg/config"
	mem "pka/pkg/memcache"
	"pka/pkg/middleware"
	"pka/pkg/utils"
)

// Dependencies is everything the route table needs, filled in by fx.
type Dependencies struct {
	fx.In

	JWT      *utils.JWTManager
	Sessions middleware.SessionValidator
	Attempts mem.AttemptStore

	Auth     *controllers.AuthController
	Search   *controllers.SearchController
	Payment  *controllers.PaymentController
	Admin    *controllers.AdminController
	Telegram *controllers.TelegramController
	Health   *controllers.HealthController
}

func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.App.BaseURL))

	RegisterRoutes(r, cfg.RateLimit, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, limits config.RateLimitConfig, deps Dependencies) {
	loginLimit := middleware.RateLimit(deps.Attempts, "login", limits.LoginAttempts, limits.LoginWindow)
	adminLimit := middleware.RateLimit(deps.Attempts, "admin-login", limits.LoginAttempts, limits.LoginWindow)
	requireUser := middleware.JWTAuthMiddleware(deps.JWT, deps.Sessions)

	r.GET("/healthz", deps.Health.Healthz)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", loginLimit, deps.Auth.Login)
	authGroup.POST("/logout", deps.Auth.Logout)
	authGroup.POST("/refresh", deps.Auth.Refresh)
	authGroup.GET("/captcha", deps.Auth.NewCaptcha)
	authGroup.GET("/captcha/:file", deps.Auth.CaptchaImage)
	authGroup.GET("/me", requireUser, deps.Auth.Me)
	authGroup.POST("/update-password", requireUser, deps.Auth.UpdatePassword)

	api.GET("/users/:id", requireUser, deps.Auth.GetUser)

	api.POST("/osint", requireUser, deps.Search.Search)
	api.GET("/osint/usage", requireUser, deps.Search.Usage)
	api.POST("/search", requireUser, deps.Search.Search)

	paymentGroup := api.Group("/payment")
	paymentGroup.GET("/plans", deps.Payment.ListPlans)
	paymentGroup.POST("/webhook", deps.Payment.HandleWebhook)
	paymentGroup.POST("/create", requireUser, deps.Payment.CreateInvoice)
	paymentGroup.GET("/create", requireUser, deps.Payment.ListCurrencies)
	paymentGroup.GET("/status", requireUser, deps.Payment.GetStatus)

	api.POST("/telegram/webhook", deps.Telegram.Webhook)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", adminLimit, deps.Admin.Login)
	adminGroup.POST("/verify", adminLimit, deps.Admin.Login)
	adminGroup.POST("/logout", deps.Admin.Logout)

	adminAPI := adminGroup.Group("", middleware.AdminAuthMiddleware(deps.JWT), middleware.RoleMiddleware("admin"))
	adminAPI.GET("/stats", deps.Admin.Stats)
	adminAPI.GET("/users", deps.Admin.ListUsers)
	adminAPI.PATCH("/users", deps.Admin.UpdateUser)
	adminAPI.POST("/users/bulk", deps.Admin.BulkUpdateUsers)
	adminAPI.GET("/api-configs", deps.Admin.ListApiConfigs)
	adminAPI.POST("/api-configs", deps.Admin.CreateApiConfig)
	adminAPI.DELETE("/api-configs/:id", deps.Admin.DeleteApiConfig)
	adminAPI.GET("/suspicious", deps.Admin.ListSuspicious)
	adminAPI.PATCH("/suspicious", deps.Admin.ResolveSuspicious)
	adminAPI.GET("/multi-accounts", deps.Admin.ListMultiAccounts)
	adminAPI.PATCH("/multi-accounts", deps.Admin.ReviewMultiAccount)
	adminAPI.GET("/activity", deps.Admin.ListActivity)
}
