package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"relay-service/internal/audit"
	"relay-service/internal/database"
	"relay-service/internal/handler"
	"relay-service/internal/middleware"
	"relay-service/internal/relay"
	"relay-service/internal/repository"
	"relay-service/internal/service"
)

type Router struct {
	engine       *gin.Engine
	authHandler  *handler.AuthHandler
	userHandler  *handler.UserHandler
	blockHandler *handler.BlockHandler
	postHandler  *handler.PostHandler
	wsHandler    *handler.WSHandler
	authMW       *middleware.AuthMiddleware
}

func NewRouter(
	hub *relay.Hub,
	co *relay.Coordinator,
	auditor audit.Publisher,
	db *gorm.DB,
	redisClient *redis.Client,
	storage *database.MinIOClient,
	jwtSecret string,
	jwtExpire time.Duration,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	userRepo := repository.NewUserRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	postRepo := repository.NewPostRepository(db)

	authService := service.NewAuthService(userRepo, jwtSecret, jwtExpire)
	userService := service.NewUserService(userRepo, blockRepo, postRepo, redisClient, storage)
	blockService := service.NewBlockService(userRepo, blockRepo)
	postService := service.NewPostService(postRepo)

	return &Router{
		engine:       engine,
		authHandler:  handler.NewAuthHandler(authService),
		userHandler:  handler.NewUserHandler(userService),
		blockHandler: handler.NewBlockHandler(blockService),
		postHandler:  handler.NewPostHandler(postService),
		wsHandler:    handler.NewWSHandler(hub, co, authService, auditor),
		authMW:       middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// The relay endpoint authenticates during the websocket handshake, not
	// through the REST middleware.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}

		posts := public.Group("/posts")
		{
			posts.GET("", r.postHandler.Feed)
			posts.GET("/user/:userId", r.postHandler.UserPosts)
		}
	}

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		{
			users.GET("/me", r.userHandler.GetProfile)
			users.PUT("/me", r.userHandler.UpdateProfile)
			users.DELETE("/me", r.userHandler.DeleteAccount)
			users.PUT("/me/avatar", r.userHandler.UploadAvatar)

			users.POST("/block", r.blockHandler.Block)
			users.DELETE("/unblock/:blockedId", r.blockHandler.Unblock)
			users.GET("/blocked", r.blockHandler.ListBlocked)
		}

		posts := auth.Group("/posts")
		{
			posts.POST("", r.postHandler.Create)
			posts.PUT("/:id", r.postHandler.Update)
			posts.DELETE("/:id", r.postHandler.Delete)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
