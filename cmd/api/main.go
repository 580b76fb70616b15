package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trafficportal/internal/config"
	"trafficportal/internal/database"
	"trafficportal/internal/logging"
	"trafficportal/internal/middleware"
	"trafficportal/internal/modules/notification"
	jwtsvc "trafficportal/internal/pkg/jwt"
	"trafficportal/internal/push"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogFile, cfg.IsProdLike())

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := push.NewHub(logger)
	wsHandler := push.NewHandler(hub, j, logger)

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, hub, logger)
	notifHandler := notification.NewHandler(notifService)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(),
	)

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			notification.RegisterRoutes(protected, notifHandler)
		}
	}

	// WebSocket push channel; authenticates via ?token= inside the handler.
	r.GET("/ws/notifications", wsHandler.HandleWebSocket)

	logger.WithField("port", cfg.Port).Info("starting api server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal(err)
	}
}
