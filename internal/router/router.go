package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/config"
	"github.com/ratehub/ratehub-backend/internal/app/controller"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/internal/middleware"
)

type Router struct {
	authController  *controller.AuthController
	storeController *controller.StoreController
	ownerController *controller.OwnerController
	adminController *controller.AdminController
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	storeController *controller.StoreController,
	ownerController *controller.OwnerController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:  authController,
		storeController: storeController,
		ownerController: ownerController,
		adminController: adminController,
		authMiddleware:  authMiddleware,
		config:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", healthHandler)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", r.authController.Signup)
		auth.POST("/login", r.authController.Login)
		auth.POST("/logout", r.authController.Logout)
		auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		auth.POST("/change-password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
	}

	stores := router.Group("/stores")
	{
		stores.GET("", r.authMiddleware.OptionalAuthenticate(), r.storeController.ListStores)
		stores.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.storeController.GetStore)
		stores.POST("/:id/rate", r.authMiddleware.Authenticate(), r.storeController.RateStore)
	}

	owner := router.Group("/owner")
	owner.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleStoreOwner))
	{
		owner.GET("/stores", r.ownerController.MyStores)
		owner.GET("/stores/:id/ratings", r.ownerController.StoreRatings)
		owner.PATCH("/stores/:id", r.ownerController.UpdateStore)
	}

	admin := router.Group("/admin")
	admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/users", r.adminController.CreateUser)
		admin.GET("/users", r.adminController.ListUsers)
		admin.GET("/users/export", r.adminController.ExportUsers)
		admin.DELETE("/users/:id", r.adminController.DeleteUser)
		admin.POST("/stores", r.adminController.CreateStore)
		admin.GET("/stores", r.adminController.ListStores)
		admin.GET("/stores/export", r.adminController.ExportStores)
		admin.DELETE("/stores/:id", r.adminController.DeleteStore)
		admin.GET("/dashboard", r.adminController.Dashboard)
		admin.PUT("/update-password", r.adminController.UpdatePassword)
	}

	return router
}

func healthHandler(c *gin.Context) {
	if err := db.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "RateHub API is running",
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
