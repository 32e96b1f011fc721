package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	// Database Configuration
	Database DatabaseConfig `json:"database" yaml:"database"`
	// MongoDB holds the GridFS media bucket
	MongoDB MongoDBConfig `json:"mongodb" yaml:"mongodb"`
	// Redis carries change notifications
	Redis RedisConfig `json:"redis" yaml:"redis"`
	// S3 is the alternative media backend
	S3 S3Config `json:"s3" yaml:"s3"`
	Media      MediaConfig      `json:"media" yaml:"media"`
	Scheduling SchedulingConfig `json:"scheduling" yaml:"scheduling"`
	Calendar   CalendarConfig   `json:"calendar" yaml:"calendar"`
	Auth       AuthConfig       `json:"auth" yaml:"auth"`
	// Logging Configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host             string `json:"host" yaml:"host"`
	HTTPPort         string `json:"http_port" yaml:"http_port"`
	GRPCPort         string `json:"grpc_port" yaml:"grpc_port"`
	MediaServicePort string `json:"media_service_port" yaml:"media_service_port"`
	MediaBaseURL     string `json:"media_base_url" yaml:"media_base_url"`
	ReadTimeout      int    `json:"read_timeout" yaml:"read_timeout"`   // Seconds
	WriteTimeout     int    `json:"write_timeout" yaml:"write_timeout"` // Seconds
	Environment      string `json:"environment" yaml:"environment"`     // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host" yaml:"host"`
	Port         string `json:"port" yaml:"port"`
	Username     string `json:"username" yaml:"username"`
	Password     string `json:"password" yaml:"password"`
	DatabaseName string `json:"database_name" yaml:"database_name"`
	MaxOpenConns int    `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" yaml:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Bucket   string `json:"bucket" yaml:"bucket"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// MediaConfig selects where uploaded blobs go.
type MediaConfig struct {
	Backend       string `json:"backend" yaml:"backend"` // gridfs or s3
	MaxUploadSize int64  `json:"max_upload_size" yaml:"max_upload_size"`
}

// SchedulingConfig drives the submission state machine.
type SchedulingConfig struct {
	MinLead                   time.Duration `json:"min_lead" yaml:"min_lead"`
	DefaultLead               time.Duration `json:"default_lead" yaml:"default_lead"`
	DefaultApprovalWorkflowID string        `json:"default_approval_workflow_id" yaml:"default_approval_workflow_id"`
	MonthlyPostQuota          int           `json:"monthly_post_quota" yaml:"monthly_post_quota"` // 0 = unlimited
	StatusPollInterval        time.Duration `json:"status_poll_interval" yaml:"status_poll_interval"`
}

type CalendarConfig struct {
	DefaultDuration time.Duration `json:"default_duration" yaml:"default_duration"`
	StartHour       int           `json:"start_hour" yaml:"start_hour"`
	EndHour         int           `json:"end_hour" yaml:"end_hour"`
	RowHeight       float64       `json:"row_height" yaml:"row_height"` // pixels per hour
	MinEventHeight  float64       `json:"min_event_height" yaml:"min_event_height"`
	WeekStartsOn    int           `json:"week_starts_on" yaml:"week_starts_on"` // 0 = Sunday
}

type AuthConfig struct {
	JWTSecret string `json:"-" yaml:"jwt_secret"`
	Issuer    string `json:"issuer" yaml:"issuer"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `json:"format" yaml:"format"`           // json, text
	OutputPath string `json:"output_path" yaml:"output_path"` // stdout, stderr, or file path
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

// LoadConfig reads .env (if present), then environment variables, then the
// optional YAML file named by PLANNER_CONFIG.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:             getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			HTTPPort:         getEnvOrDefault("HTTP_PORT", "8080"),
			GRPCPort:         getEnvOrDefault("GRPC_PORT", "7005"),
			MediaServicePort: getEnvOrDefault("MEDIA_SERVICE_PORT", "8081"),
			MediaBaseURL:     getEnvOrDefault("MEDIA_BASE_URL", "http://localhost:8081/media/"),
			ReadTimeout:      getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:     getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			Environment:      getEnvOrDefault("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "planner"),
			Password:     getEnvOrDefault("DB_PASSWORD", "planner123"),
			DatabaseName: getEnvOrDefault("DB_NAME", "planner"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USER", "admin"),
			Password: getEnvOrDefault("MONGO_PASSWORD", "admin123"),
			Database: getEnvOrDefault("MONGO_DB", "planner"),
			Bucket:   getEnvOrDefault("MONGO_BUCKET", "media_files"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvOrDefault("REDIS_ENABLED", "true") == "true",
		},
		S3: S3Config{
			Endpoint:  getEnvOrDefault("S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnvOrDefault("S3_ACCESS_KEY", ""),
			SecretKey: getEnvOrDefault("S3_SECRET_KEY", ""),
			Bucket:    getEnvOrDefault("S3_BUCKET", "planner-media"),
			UseSSL:    getEnvOrDefault("S3_USE_SSL", "false") == "true",
		},
		Media: MediaConfig{
			Backend:       strings.ToLower(getEnvOrDefault("MEDIA_BACKEND", "gridfs")),
			MaxUploadSize: int64(getEnvInt("MEDIA_MAX_UPLOAD_MB", 64)) << 20,
		},
		Scheduling: SchedulingConfig{
			MinLead:                   getEnvDuration("SCHEDULING_MIN_LEAD", 5*time.Minute),
			DefaultLead:               getEnvDuration("SCHEDULING_DEFAULT_LEAD", 5*time.Minute),
			DefaultApprovalWorkflowID: getEnvOrDefault("DEFAULT_APPROVAL_WORKFLOW_ID", "default-approval-workflow"),
			MonthlyPostQuota:          getEnvInt("MONTHLY_POST_QUOTA", 0),
			StatusPollInterval:        getEnvDuration("STATUS_POLL_INTERVAL", 30*time.Second),
		},
		Calendar: CalendarConfig{
			DefaultDuration: getEnvDuration("CALENDAR_DEFAULT_DURATION", 30*time.Minute),
			StartHour:       getEnvInt("CALENDAR_START_HOUR", 0),
			EndHour:         getEnvInt("CALENDAR_END_HOUR", 24),
			RowHeight:       float64(getEnvInt("CALENDAR_ROW_HEIGHT", 60)),
			MinEventHeight:  float64(getEnvInt("CALENDAR_MIN_EVENT_HEIGHT", 20)),
			WeekStartsOn:    getEnvInt("CALENDAR_WEEK_STARTS_ON", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
			Issuer:    getEnvOrDefault("JWT_ISSUER", "postplanner"),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if path := os.Getenv("PLANNER_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Printf("Config file %s ignored: %v", path, err)
		}
	}

	return cfg
}

// applyFile overlays values present in a YAML file on top of cfg.
func (cfg *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports settings that would make the service misbehave.
func (cfg *Config) Validate() error {
	if cfg.Scheduling.MinLead < 0 {
		return fmt.Errorf("scheduling.min_lead must not be negative")
	}
	if cfg.Scheduling.DefaultLead < cfg.Scheduling.MinLead {
		return fmt.Errorf("scheduling.default_lead must be at least scheduling.min_lead")
	}
	if cfg.Calendar.StartHour < 0 || cfg.Calendar.EndHour > 24 || cfg.Calendar.StartHour >= cfg.Calendar.EndHour {
		return fmt.Errorf("calendar hours must satisfy 0 <= start_hour < end_hour <= 24")
	}
	if cfg.Calendar.RowHeight <= 0 {
		return fmt.Errorf("calendar.row_height must be positive")
	}
	if cfg.Calendar.DefaultDuration <= 0 {
		return fmt.Errorf("calendar.default_duration must be positive")
	}
	if cfg.Media.Backend != "gridfs" && cfg.Media.Backend != "s3" {
		return fmt.Errorf("media.backend must be gridfs or s3, got %q", cfg.Media.Backend)
	}
	if cfg.Server.Environment == "production" && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	return nil
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
