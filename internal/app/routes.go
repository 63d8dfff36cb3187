package app

import (
	"github.com/faham03/Gestion-de-budget/internal/auth"
	"github.com/faham03/Gestion-de-budget/internal/cache"
	"github.com/faham03/Gestion-de-budget/internal/config"
	"github.com/faham03/Gestion-de-budget/internal/handlers"
	"github.com/faham03/Gestion-de-budget/internal/repo"
	"github.com/faham03/Gestion-de-budget/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, cfg.Redis.SessionTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))

	profileRepo := repo.NewPGProfileRepo(db)
	profileSvc := service.NewProfileService(profileRepo)
	profileHandler := handlers.NewProfileHandler(profileSvc)
	registerProfileRoutes(protected, profileHandler)

	expenseRepo := repo.NewPGExpenseRepo(db)
	ledgerCache := cache.NewLedgerCache(rdb, cfg.Redis.DefaultTTL.Duration())
	policy := service.CategoryPolicy{
		Enum:    cfg.Expense.CategoryPolicy == config.CategoryPolicyEnum,
		Allowed: cfg.Expense.CategoryList(),
	}
	expenseSvc := service.NewExpenseService(expenseRepo, ledgerCache, policy)
	expenseHandler := handlers.NewExpenseHandler(expenseSvc, profileSvc)
	registerExpenseRoutes(protected, expenseHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Budget API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerExpenseRoutes(api *gin.RouterGroup, h *handlers.ExpenseHandler) {
	api.GET("/expenses", h.List)
	api.POST("/expenses", h.Create)
	api.POST("/expenses/batch", h.CreateBatch)
	api.GET("/expenses/export", h.Export)
	api.GET("/expenses/:id", h.GetByID)
	api.PATCH("/expenses/:id", h.Update)
	api.DELETE("/expenses/:id", h.Delete)
}

func registerProfileRoutes(api *gin.RouterGroup, h *handlers.ProfileHandler) {
	api.GET("/profile", h.Get)
	api.PATCH("/profile", h.Update)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}
