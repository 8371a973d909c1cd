// Package config 提供配置管理
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature/builtin"
)

// ConfigFileEnv 指定 YAML 配置文件路径的环境变量
const ConfigFileEnv = "VRP_CONFIG_FILE"

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Solver   SolverConfig   `yaml:"solver"`
	Features builtin.Config `yaml:"features"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// SolverConfig 求解器配置
type SolverConfig struct {
	Workers       int           `yaml:"workers"`
	MaxIterations int           `yaml:"max_iterations"` // 尝试的任务顺序数量
	Seed          int64         `yaml:"seed"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "vrpcore",
			Env:      "development",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            5432,
			Name:            "vrpcore",
			User:            "vrpcore",
			Password:        "vrpcore",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Solver: SolverConfig{
			Workers:       4,
			MaxIterations: 8,
			Seed:          1,
			Timeout:       30 * time.Second,
		},
		Features: builtin.DefaultConfig(),
	}
}

// Load 加载配置
// 优先级由低到高：默认值、VRP_CONFIG_FILE 指定的 YAML 文件、.env 文件、环境变量
func Load() (*Config, error) {
	// .env 不覆盖已存在的环境变量
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 从默认值与指定 YAML 文件加载配置，不读取环境变量
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "读取配置文件失败").WithField("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析配置文件失败").WithField("path", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.LogLevel = getEnv("APP_LOG_LEVEL", c.App.LogLevel)

	c.Database.Enabled = getEnvBool("DB_ENABLED", c.Database.Enabled)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.SSLMode = getEnv("DB_SSL_MODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.Metrics.Enabled = getEnvBool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
	c.Metrics.Path = getEnv("METRICS_PATH", c.Metrics.Path)

	c.Solver.Workers = getEnvInt("SOLVER_WORKERS", c.Solver.Workers)
	c.Solver.MaxIterations = getEnvInt("SOLVER_MAX_ITERATIONS", c.Solver.MaxIterations)
	c.Solver.Seed = int64(getEnvInt("SOLVER_SEED", int(c.Solver.Seed)))
	c.Solver.Timeout = getEnvDuration("SOLVER_TIMEOUT", c.Solver.Timeout)

	f := &c.Features
	f.Lifo.Enabled = getEnvBool("FEATURE_LIFO_ENABLED", f.Lifo.Enabled)
	f.Lifo.Code = getEnvInt("FEATURE_LIFO_CODE", f.Lifo.Code)
	f.RideDuration.Enabled = getEnvBool("FEATURE_RIDE_DURATION_ENABLED", f.RideDuration.Enabled)
	f.RideDuration.Code = getEnvInt("FEATURE_RIDE_DURATION_CODE", f.RideDuration.Code)
	f.Preferences.Enabled = getEnvBool("FEATURE_PREFERENCES_ENABLED", f.Preferences.Enabled)
	f.Preferences.NoPreferredMatch = getEnvFloat("FEATURE_PREF_NO_PREFERRED_MATCH", f.Preferences.NoPreferredMatch)
	f.Preferences.NoAcceptableMatch = getEnvFloat("FEATURE_PREF_NO_ACCEPTABLE_MATCH", f.Preferences.NoAcceptableMatch)
	f.Preferences.PerAvoidedPresent = getEnvFloat("FEATURE_PREF_PER_AVOIDED_PRESENT", f.Preferences.PerAvoidedPresent)
	f.RequestedTime.Enabled = getEnvBool("FEATURE_REQUESTED_TIME_ENABLED", f.RequestedTime.Enabled)
	f.RequestedTime.EarlyPerMinute = getEnvFloat("FEATURE_REQUESTED_EARLY_PER_MINUTE", f.RequestedTime.EarlyPerMinute)
	f.RequestedTime.LatePerMinute = getEnvFloat("FEATURE_REQUESTED_LATE_PER_MINUTE", f.RequestedTime.LatePerMinute)
}

// Validate 校验配置
func (c *Config) Validate() error {
	ve := &apperrors.ValidationErrors{}

	if c.Solver.Workers <= 0 {
		ve.Add("solver.workers", "必须大于0")
	}
	if c.Solver.MaxIterations <= 0 {
		ve.Add("solver.max_iterations", "必须大于0")
	}
	if c.Database.Enabled && c.Database.Port <= 0 {
		ve.Add("database.port", "必须大于0")
	}

	f := c.Features
	nonNegative := []struct {
		field string
		value float64
	}{
		{"features.preferences.no_preferred_match", f.Preferences.NoPreferredMatch},
		{"features.preferences.no_acceptable_match", f.Preferences.NoAcceptableMatch},
		{"features.preferences.per_avoided_present", f.Preferences.PerAvoidedPresent},
		{"features.requested_time.early_per_minute", f.RequestedTime.EarlyPerMinute},
		{"features.requested_time.late_per_minute", f.RequestedTime.LatePerMinute},
	}
	for _, v := range nonNegative {
		if v.value < 0 || math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			ve.Add(v.field, "必须为非负有限值")
		}
	}

	if f.Lifo.Enabled && f.RideDuration.Enabled && f.Lifo.Code == f.RideDuration.Code {
		ve.Add("features.ride_duration.code", fmt.Sprintf("与 lifo 违反码重复: %d", f.Lifo.Code))
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
