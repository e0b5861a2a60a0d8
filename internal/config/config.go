package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ViewCacheTTL  time.Duration

	RateLimit RateLimitConfig

	Assets AssetConfig

	Bootstrap BootstrapConfig
}

// AssetConfig selects and configures the uploaded-asset backend.
type AssetConfig struct {
	Driver       string
	Dir          string
	PublicPrefix string

	// SweepInterval is how often orphaned uploads are swept; zero disables
	// the periodic sweep.
	SweepInterval time.Duration

	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// RateLimitConfig throttles credential sign-in attempts per client address.
// It only takes effect when Redis is configured.
type RateLimitConfig struct {
	Enabled     bool
	SignInRate  float64
	SignInBurst int
}

// BootstrapConfig controls first-run seeding and OAuth sign-up.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AllowSignUp   bool
	SignUpRole    string
}

const (
	AssetDriverLocal = "local"
	AssetDriverS3    = "s3"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "dashboard"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "postgres")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "dashboard"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "dashboard.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		ViewCacheTTL:  getenvDuration("VIEW_CACHE_TTL", 5*time.Minute),

		RateLimit: RateLimitConfig{
			Enabled:     getenvBool("RATE_LIMIT_ENABLED", true),
			SignInRate:  getenvFloat("RATE_LIMIT_SIGNIN_RATE", 0.1),
			SignInBurst: getenvInt("RATE_LIMIT_SIGNIN_BURST", 5),
		},

		Assets: AssetConfig{
			Driver:         strings.ToLower(getenv("ASSET_DRIVER", AssetDriverLocal)),
			Dir:            getenv("ASSET_DIR", "./public"),
			PublicPrefix:   getenv("ASSET_PUBLIC_PREFIX", ""),
			SweepInterval:  getenvDuration("ASSET_SWEEP_INTERVAL", 6*time.Hour),
			S3Bucket:       strings.TrimSpace(getenv("S3_BUCKET", "")),
			S3Region:       getenv("S3_REGION", "us-east-1"),
			S3Endpoint:     strings.TrimSpace(getenv("S3_ENDPOINT", "")),
			S3AccessKey:    strings.TrimSpace(getenv("S3_ACCESS_KEY", "")),
			S3SecretKey:    strings.TrimSpace(getenv("S3_SECRET_KEY", "")),
			S3UsePathStyle: getenvBool("S3_USE_PATH_STYLE", true),
		},

		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(getenv("ADMIN_EMAIL", "")),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
			AdminName:     getenv("ADMIN_NAME", "Admin"),
			AllowSignUp:   getenvBool("OAUTH_ALLOW_SIGNUP", false),
			SignUpRole:    strings.ToLower(getenv("OAUTH_SIGNUP_ROLE", "viewer")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
