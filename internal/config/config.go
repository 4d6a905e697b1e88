package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For session TTL parsing

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort  string // Application port
	IsProd   bool   // Is production environment
	LogLevel string // logrus level name

	DBDriver   string // mysql or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBPath     string // SQLite database file

	SessionSecret string        // Key used to sign session cookies
	SessionTTL    time.Duration // Lifetime of a server-side session
	RedisAddr     string        // Redis server address, empty selects the memory session store
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number

	UploadBackend string // local or s3
	UploadDir     string // Local upload directory
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string
	S3PublicURL   string // Base URL images are served from when stored in S3
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttl, err := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		IsProd:   os.Getenv("IS_PROD") == "true",
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getenv("DB_HOST", "127.0.0.1"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),
		DBPath:     getenv("DB_PATH", "database.db"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    ttl,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,

		UploadBackend: getenv("UPLOAD_BACKEND", "local"),
		UploadDir:     getenv("UPLOAD_DIR", "static/uploads"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getenv("S3_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Prefix:      os.Getenv("S3_PREFIX"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),
	}
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
