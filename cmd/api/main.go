// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yourusername/login-demo/internal/auth"
	"github.com/yourusername/login-demo/internal/config"
	"github.com/yourusername/login-demo/internal/session"
	"github.com/yourusername/login-demo/internal/user"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// リレーショナルストアの接続とマイグレーション
	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	users := user.NewStore(db)
	if err := users.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// セッションストア用のRedisクライアント
	rdb, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	sessions := session.NewStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	manager := auth.NewManager(users, sessions, cfg.BcryptCost, cfg.GinMode == gin.ReleaseMode)
	setupRoutes(router, manager, rdb)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openDatabase は DATABASE_URL のスキームに応じてGORMの接続を開きます。
// postgres:// 以外は sqlite ファイルとして扱います。
func openDatabase(databaseURL string) (*gorm.DB, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
	}
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		path = "./users.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
}

// newRedisClient は REDIS_URL からRedisクライアントを作成し、疎通を確認します。
func newRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisStatus := "ok"
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "unreachable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "login-demo-api",
			"version": "1.0",
			"redis":   redisStatus,
		})
	}
}

// setupRoutes はルートとハンドラーの配線を行います。
func setupRoutes(router *gin.Engine, manager *auth.Manager, rdb *redis.Client) {
	router.GET("/health", handleHealth(rdb))

	router.GET("/", manager.Home)
	router.POST("/register", manager.Register)
	router.POST("/login", manager.Login)
	router.POST("/logout", manager.Logout)
	router.GET("/protected", manager.RequireSession(), manager.Protected)
}
