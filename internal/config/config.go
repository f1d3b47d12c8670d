package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	// データベース接続設定
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	MongoURI      string
	MongoDatabase string

	// サーバー設定
	ServerPort  string
	Env         string
	APIPrefix   string
	FrontendDir string

	// セッション設定
	JWTSecret  string
	SessionTTL time.Duration

	// 画像ストレージ設定
	StorageBackend      string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadDir           string
	UploadBaseURL       string
	ProfilePicMaxPx     uint

	// CORS設定
	AllowedOrigins []string

	// 読み込み時に解釈できなかった値
	parseErrs []error
}

// IsProduction reports whether the server runs with production settings
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether the server runs with development settings
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load loads configuration from environment variables
func Load() Config {
	cfg := Config{
		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		SQLitePath: getenv("SQLITE_PATH", "pulsechat.db"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getenv("MONGODB_DATABASE", "pulsechat"),

		ServerPort:  getenv("SERVER_PORT", "5001"),
		Env:         getenv("ENV", "development"),
		APIPrefix:   strings.TrimRight(getenv("API_PREFIX", "/api"), "/"),
		FrontendDir: getenv("FRONTEND_DIR", "../frontend/dist"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: 7 * 24 * time.Hour,

		StorageBackend:      getenv("STORAGE_BACKEND", "local"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getenv("CLOUDINARY_FOLDER", "pulsechat"),
		UploadDir:           getenv("UPLOAD_DIR", "uploads"),
		UploadBaseURL:       strings.TrimRight(getenv("UPLOAD_BASE_URL", "/uploads"), "/"),
		ProfilePicMaxPx:     512,
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.SessionTTL = d
		} else {
			cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err))
		}
	}

	if px := os.Getenv("PROFILE_PIC_MAX_PX"); px != "" {
		if n, err := strconv.ParseUint(px, 10, 32); err == nil {
			cfg.ProfilePicMaxPx = uint(n)
		} else {
			cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("invalid PROFILE_PIC_MAX_PX %q: %w", px, err))
		}
	}

	allowedOrigins := getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	cfg.AllowedOrigins = strings.Split(allowedOrigins, ",")
	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(cfg.AllowedOrigins[i])
	}

	// 開発環境ではシークレット未設定でも起動できるようにする
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = "pulsechat-development-secret"
	}

	return cfg
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)

	switch c.DBDriver {
	case "mysql":
		if c.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required for mysql"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.StorageBackend {
	case "local":
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local storage"))
		}
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
