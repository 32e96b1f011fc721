package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"SERVER_HOST", "HTTP_PORT", "GRPC_PORT", "MEDIA_SERVICE_PORT", "MEDIA_BASE_URL",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "APP_ENV",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"MONGO_HOST", "MONGO_PORT", "MONGO_USER", "MONGO_PASSWORD", "MONGO_DB", "MONGO_BUCKET",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_ENABLED",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
	"MEDIA_BACKEND", "MEDIA_MAX_UPLOAD_MB",
	"SCHEDULING_MIN_LEAD", "SCHEDULING_DEFAULT_LEAD", "DEFAULT_APPROVAL_WORKFLOW_ID",
	"MONTHLY_POST_QUOTA", "STATUS_POLL_INTERVAL",
	"CALENDAR_DEFAULT_DURATION", "CALENDAR_START_HOUR", "CALENDAR_END_HOUR", "CALENDAR_ROW_HEIGHT",
	"CALENDAR_MIN_EVENT_HEIGHT", "CALENDAR_WEEK_STARTS_ON",
	"JWT_SECRET", "JWT_ISSUER",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS",
	"PLANNER_CONFIG",
}

// clearTestEnvVars blanks every key so defaults apply; t.Setenv restores them afterwards.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_DefaultBehavior(t *testing.T) {
	clearTestEnvVars(t)

	config := LoadConfig()
	require.NotNil(t, config)

	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, "3306", config.Database.Port)
	assert.Equal(t, "planner", config.Database.Username)
	assert.Equal(t, 25, config.Database.MaxOpenConns)
	assert.Equal(t, 5, config.Database.MaxIdleConns)

	assert.Equal(t, "localhost", config.MongoDB.Host)
	assert.Equal(t, "27017", config.MongoDB.Port)
	assert.Equal(t, "media_files", config.MongoDB.Bucket)

	assert.Equal(t, "8080", config.Server.HTTPPort)
	assert.Equal(t, "7005", config.Server.GRPCPort)
	assert.Contains(t, config.Server.MediaBaseURL, "/media")

	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "gridfs", config.Media.Backend)
	assert.Equal(t, int64(64<<20), config.Media.MaxUploadSize)

	assert.Equal(t, 5*time.Minute, config.Scheduling.MinLead)
	assert.Equal(t, 5*time.Minute, config.Scheduling.DefaultLead)
	assert.Equal(t, "default-approval-workflow", config.Scheduling.DefaultApprovalWorkflowID)
	assert.Equal(t, 0, config.Scheduling.MonthlyPostQuota)

	assert.Equal(t, 30*time.Minute, config.Calendar.DefaultDuration)
	assert.Equal(t, 0, config.Calendar.StartHour)
	assert.Equal(t, 24, config.Calendar.EndHour)
	assert.Equal(t, 60.0, config.Calendar.RowHeight)

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.OutputPath)

	assert.NoError(t, config.Validate())
}

func TestLoadConfig_WithEnvironmentOverrides(t *testing.T) {
	clearTestEnvVars(t)

	testEnvVars := map[string]string{
		"DB_HOST":                   "test-db-host",
		"DB_PORT":                   "3307",
		"DB_USER":                   "test-user",
		"MONGO_HOST":                "test-mongo",
		"MONGO_PORT":                "27018",
		"HTTP_PORT":                 "9090",
		"REDIS_ENABLED":             "false",
		"MEDIA_BACKEND":             "S3",
		"SCHEDULING_MIN_LEAD":       "1m",
		"SCHEDULING_DEFAULT_LEAD":   "10m",
		"MONTHLY_POST_QUOTA":        "120",
		"CALENDAR_DEFAULT_DURATION": "45m",
		"CALENDAR_START_HOUR":       "6",
		"LOG_LEVEL":                 "debug",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config := LoadConfig()

	assert.Equal(t, "test-db-host", config.Database.Host)
	assert.Equal(t, "3307", config.Database.Port)
	assert.Equal(t, "test-user", config.Database.Username)
	assert.Equal(t, "test-mongo", config.MongoDB.Host)
	assert.Equal(t, "27018", config.MongoDB.Port)
	assert.Equal(t, "9090", config.Server.HTTPPort)
	assert.False(t, config.Redis.Enabled)
	assert.Equal(t, "s3", config.Media.Backend)
	assert.Equal(t, time.Minute, config.Scheduling.MinLead)
	assert.Equal(t, 10*time.Minute, config.Scheduling.DefaultLead)
	assert.Equal(t, 120, config.Scheduling.MonthlyPostQuota)
	assert.Equal(t, 45*time.Minute, config.Calendar.DefaultDuration)
	assert.Equal(t, 6, config.Calendar.StartHour)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("SCHEDULING_MIN_LEAD", "soon")

	config := LoadConfig()

	assert.Equal(t, 25, config.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, config.Scheduling.MinLead)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	clearTestEnvVars(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	content := `
scheduling:
  min_lead: 2m
  default_approval_workflow_id: wf-marketing
calendar:
  start_hour: 7
  end_hour: 21
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PLANNER_CONFIG", path)

	config := LoadConfig()

	assert.Equal(t, 2*time.Minute, config.Scheduling.MinLead)
	assert.Equal(t, "wf-marketing", config.Scheduling.DefaultApprovalWorkflowID)
	assert.Equal(t, 7, config.Calendar.StartHour)
	assert.Equal(t, 21, config.Calendar.EndHour)
	assert.Equal(t, "warn", config.Logging.Level)
	// untouched keys keep their env/default values
	assert.Equal(t, 5*time.Minute, config.Scheduling.DefaultLead)
	assert.Equal(t, "localhost", config.Database.Host)
}

func TestLoadConfig_MissingYAMLIsIgnored(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("PLANNER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	config := LoadConfig()

	assert.Equal(t, 5*time.Minute, config.Scheduling.MinLead)
}

func TestValidate(t *testing.T) {
	clearTestEnvVars(t)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"negative lead", func(c *Config) { c.Scheduling.MinLead = -time.Second }, "min_lead"},
		{"default below minimum", func(c *Config) { c.Scheduling.DefaultLead = time.Minute }, "default_lead"},
		{"inverted hours", func(c *Config) { c.Calendar.StartHour = 20; c.Calendar.EndHour = 8 }, "calendar hours"},
		{"zero row height", func(c *Config) { c.Calendar.RowHeight = 0 }, "row_height"},
		{"zero duration", func(c *Config) { c.Calendar.DefaultDuration = 0 }, "default_duration"},
		{"unknown backend", func(c *Config) { c.Media.Backend = "ftp" }, "media.backend"},
		{"production without secret", func(c *Config) { c.Server.Environment = "production" }, "jwt_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LoadConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN_Generation(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Host:         "test-host",
			Port:         "3307",
			Username:     "testuser",
			Password:     "testpass",
			DatabaseName: "testdb",
		},
	}

	expected := "testuser:testpass@tcp(test-host:3307)/testdb?charset=utf8mb4&parseTime=True&loc=UTC"
	assert.Equal(t, expected, config.DSN())
}

func TestDSN_WithEmptyHostPort(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Username:     "testuser",
			Password:     "testpass",
			DatabaseName: "testdb",
		},
	}

	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=UTC"
	assert.Equal(t, expected, config.DSN())
}

func TestGetMongoURI(t *testing.T) {
	withAuth := &Config{MongoDB: MongoDBConfig{Host: "mongo-host", Port: "27017", Username: "u", Password: "p"}}
	assert.Equal(t, "mongodb://u:p@mongo-host:27017/?authSource=admin", withAuth.GetMongoURI())

	withoutAuth := &Config{MongoDB: MongoDBConfig{Host: "mongo-host", Port: "27017"}}
	assert.Equal(t, "mongodb://mongo-host:27017", withoutAuth.GetMongoURI())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_KEY", "test_value")
	assert.Equal(t, "test_value", getEnvOrDefault("TEST_KEY", "default_value"))
	assert.Equal(t, "default_value", getEnvOrDefault("PLANNER_NON_EXISTENT_KEY", "default_value"))

	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 10))
	t.Setenv("INVALID_INT", "not-a-number")
	assert.Equal(t, 10, getEnvInt("INVALID_INT", 10))

	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
}
