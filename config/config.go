package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Editing defaults mirror what the desktop UI assumes; infrastructure
// settings come from the environment.
type Config struct {
	ServerAddr string // Listen address for the HTTP/WS API, e.g. ":8080"

	// Editing defaults
	FrameRate       float64       // Project frame rate used for drag snapping, frames per second
	ViewportWidth   float64       // Default visible timeline width in pixels
	DefaultZoom     float64       // Initial pixels-per-second scale
	SessionIdleTTL  time.Duration // Editing sessions are reaped after this much inactivity
	AutosaveTTL     time.Duration // Lifetime of Redis autosave snapshots
	WatchDir        string        // Directory watched for dropped media files, empty disables the importer
	WatchUserID     int64         // Owner of assets imported from the watch folder
	MediaStageDir   string        // Local staging directory for probed media before upload
	JWTSecret       string
	JWTExpiryHours  int

	// Logging
	LogLevel string
	LogPath  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO素材桶配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	stageBase := getEnv("BT1CUT_STAGE_DIR", filepath.Join("media", "stage"))

	return &Config{
		ServerAddr: getEnv("BT1CUT_ADDR", ":8080"),

		// 30fps is what the desktop UI historically assumed; projects can
		// override it per deployment.
		FrameRate:      getEnvFloat("BT1CUT_FRAME_RATE", 30),
		ViewportWidth:  getEnvFloat("BT1CUT_VIEWPORT_WIDTH", 800),
		DefaultZoom:    getEnvFloat("BT1CUT_DEFAULT_ZOOM", 50),
		SessionIdleTTL: time.Duration(getEnvInt("BT1CUT_SESSION_IDLE_MIN", 30)) * time.Minute,
		AutosaveTTL:    time.Duration(getEnvInt("BT1CUT_AUTOSAVE_TTL_MIN", 120)) * time.Minute,
		WatchDir:       getEnv("BT1CUT_WATCH_DIR", ""),
		WatchUserID:    int64(getEnvInt("BT1CUT_WATCH_USER_ID", 1)),
		MediaStageDir:  stageBase,
		JWTSecret:      getEnv("BT1CUT_JWT_SECRET", "dev-only-secret"),
		JWTExpiryHours: getEnvInt("BT1CUT_JWT_EXPIRY_HOURS", 72),

		LogLevel: getEnv("BT1CUT_LOG_LEVEL", "debug"),
		LogPath:  getEnv("BT1CUT_LOG_PATH", filepath.Join("logs", "1cut.log")),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "cut"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "bt1cut"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}
}
