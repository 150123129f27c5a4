package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"financeapp-server/internal/auth"
	"financeapp-server/internal/config"
	"financeapp-server/internal/http/handlers"
	"financeapp-server/internal/http/middleware"
	"financeapp-server/internal/services"
)

type Dependencies struct {
	Config         *config.Config
	AuthService    *services.AuthService
	ExpenseService *services.ExpenseService
	TokenService   *auth.TokenService
	Logger         *slog.Logger
	RateLimiter    *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.AuthService)
	expenseHandler := handlers.NewExpenseHandler(deps.ExpenseService)

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")

	public := api.Group("/users")
	public.Use(deps.RateLimiter.Middleware())
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.TokenService))
	{
		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.GetByID)
		protected.PUT("/users/:id", userHandler.Update)
		protected.POST("/users/:id/password", userHandler.ChangePassword)
		protected.DELETE("/users/:id", userHandler.Delete)

		protected.POST("/expenses", expenseHandler.Create)
		protected.GET("/expenses", expenseHandler.List)
		protected.GET("/expenses/chart", expenseHandler.Chart)
		protected.GET("/expenses/summary", expenseHandler.Summary)
		protected.GET("/expenses/:id", expenseHandler.GetByID)
		protected.DELETE("/expenses/:id", expenseHandler.Delete)
	}

	return router
}
