package main

import (
	"context" // context package is needed for Redis and AWS setup
	"os"      // Exit codes

	"blog_system/internal/api"        // Custom package for HTTP handlers
	"blog_system/internal/auth"       // Registration and login
	"blog_system/internal/config"     // Custom package for configuration
	"blog_system/internal/db"         // Database connection and migration
	"blog_system/internal/repository" // Data access
	"blog_system/internal/session"    // Server-side sessions
	"blog_system/internal/storage"    // Image uploads

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	if cfg.SessionSecret == "" {
		logrus.Fatal("SESSION_SECRET must be set")
	}

	// Connect to the database and make sure the schema exists
	conn, err := db.Connect(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	ctx := context.Background()
	store := sessionStore(ctx, cfg)
	sessions, err := session.NewManager(store, session.Options{
		Secret: cfg.SessionSecret, // Signs the session cookie
		TTL:    cfg.SessionTTL,    // Cookie and store lifetime
		Secure: cfg.IsProd,        // HTTPS only in production
	})
	if err != nil {
		logrus.Fatalf("failed to set up sessions: %v", err)
	}

	uploads, err := storage.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to set up uploads: %v", err)
	}

	users := repository.NewUserRepository(conn)
	app := &api.App{
		Articles: repository.NewArticleRepository(conn),
		Users:    users,
		Auth:     auth.NewService(users),
		Uploads:  uploads,
		Sessions: sessions,
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(app)
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":    cfg.AppPort,
		"db":      cfg.DBDriver,
		"uploads": cfg.UploadBackend,
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

// sessionStore uses Redis when REDIS_ADDR is set and an in-process store otherwise
func sessionStore(ctx context.Context, cfg *config.Config) session.Store {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set, sessions are kept in memory")
		return session.NewMemoryStore()
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return session.NewRedisStore(redisClient)
}
