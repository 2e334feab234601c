package main

import (
	"time"

	"go.uber.org/zap"

	"solarena/database"
	"solarena/handlers"
	"solarena/ledger"
	"solarena/lifecycle"
	"solarena/middlewares"
	"solarena/realtime"
	"solarena/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Postgres and Redis come up in parallel.
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	<-done
	<-done

	go utils.CronCleaner(db, logger)

	store := database.NewSessionStore(db, logger)
	chain := ledger.NewSolanaLedger(config.SolanaRPCURL, config.SolanaNetwork, logger)
	channel := realtime.NewRedisChannel(rdb, logger)
	orch := lifecycle.NewOrchestrator(store, chain, channel, logger)
	hub := realtime.NewHub(orch, channel, rdb, logger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Refresh-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/auth/token", func(c *gin.Context) {
		handlers.GenerateToken(c, logger)
	})
	router.GET("/leaderboard", func(c *gin.Context) {
		handlers.Leaderboard(c, orch, logger)
	})
	router.GET("/matchmaking/stats", func(c *gin.Context) {
		handlers.MatchStats(c, orch, logger)
	})
	router.POST("/faucet", func(c *gin.Context) {
		handlers.Faucet(c, chain, logger)
	})

	authed := router.Group("/", middlewares.AuthMiddleware(logger))
	authed.POST("/matchmaking/join", func(c *gin.Context) {
		handlers.JoinMatch(c, orch, logger)
	})
	authed.POST("/matchmaking/accept", func(c *gin.Context) {
		handlers.AcceptMatch(c, orch, logger)
	})
	authed.GET("/matchmaking/check/:id", func(c *gin.Context) {
		handlers.CheckMatch(c, orch, logger)
	})
	authed.DELETE("/matchmaking/cancel/:id", func(c *gin.Context) {
		handlers.CancelMatch(c, orch, logger)
	})
	authed.POST("/games/confirm-deposit", func(c *gin.Context) {
		handlers.ConfirmDeposit(c, orch, logger)
	})
	authed.POST("/games/deposit-transaction", func(c *gin.Context) {
		handlers.DepositTransaction(c, orch, chain, config.EscrowWallet, logger)
	})
	authed.POST("/games/submit-deposit", func(c *gin.Context) {
		handlers.SubmitDeposit(c, orch, chain, logger)
	})
	authed.GET("/games/:id", func(c *gin.Context) {
		handlers.GetGame(c, orch, logger)
	})
	authed.POST("/games/:id/moves", func(c *gin.Context) {
		handlers.SubmitMove(c, orch, logger)
	})
	authed.POST("/games/:id/finish", func(c *gin.Context) {
		handlers.FinishGame(c, orch, logger)
	})
	authed.POST("/games/:id/forfeit", func(c *gin.Context) {
		handlers.ForfeitGame(c, orch, logger)
	})
	authed.POST("/games/coin-flip/flip", func(c *gin.Context) {
		handlers.FlipCoin(c, orch, logger)
	})
	authed.GET("/wallet/balance", func(c *gin.Context) {
		handlers.WalletBalance(c, chain, logger)
	})

	router.GET("/ws", func(c *gin.Context) {
		hub.HandleConnection(c.Request.Context(), c.Writer, c.Request)
	})

	router.Run()
}
