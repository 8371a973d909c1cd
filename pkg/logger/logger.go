// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu          sync.Mutex
	initialized bool
	logger      zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器，应在启动时、产生并发日志之前调用
// 显式调用总会生效，覆盖 Get 懒加载的默认配置
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	configure(cfg)
	initialized = true
}

func configure(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "file":
		output = os.Stdout
		if cfg.FilePath != "" {
			if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				output = f
			}
		}
	default:
		output = os.Stdout
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	logger = zerolog.New(output).With().Timestamp().Logger()
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器，未初始化时使用默认配置
func Get() *zerolog.Logger {
	mu.Lock()
	if !initialized {
		configure(DefaultConfig())
		initialized = true
	}
	mu.Unlock()
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// EvaluationLogger 特性评估专用日志器
type EvaluationLogger struct {
	base *zerolog.Logger
}

// NewEvaluationLogger 创建特性评估日志器
func NewEvaluationLogger() *EvaluationLogger {
	l := Get().With().Str("component", "evaluation").Logger()
	return &EvaluationLogger{base: &l}
}

// FeatureRegistered 记录特性注册
func (l *EvaluationLogger) FeatureRegistered(name string, hasConstraint, hasObjective, hasState bool) {
	l.base.Debug().
		Str("feature", name).
		Bool("constraint", hasConstraint).
		Bool("objective", hasObjective).
		Bool("state", hasState).
		Msg("注册特性")
}

// Violation 记录硬约束拒绝（常规结果，仅调试级别）
func (l *EvaluationLogger) Violation(feature string, code int, stopped bool) {
	l.base.Debug().
		Str("feature", feature).
		Int("code", code).
		Bool("stopped", stopped).
		Msg("约束拒绝")
}

// MergeRefused 记录任务合并被拒绝
func (l *EvaluationLogger) MergeRefused(feature string, code int) {
	l.base.Debug().
		Str("feature", feature).
		Int("code", code).
		Msg("拒绝合并任务")
}

// SolutionAccepted 记录方案状态更新
func (l *EvaluationLogger) SolutionAccepted(routes, unassigned int, fitness float64) {
	l.base.Debug().
		Int("routes", routes).
		Int("unassigned", unassigned).
		Float64("fitness", fitness).
		Msg("方案状态已更新")
}

// SolveStarted 记录求解开始
func (l *EvaluationLogger) SolveStarted(runID string, jobs, routes int) {
	l.base.Info().
		Str("run_id", runID).
		Int("jobs", jobs).
		Int("routes", routes).
		Msg("开始插入求解")
}

// SolveFinished 记录求解完成
func (l *EvaluationLogger) SolveFinished(runID string, duration time.Duration, assigned, unassigned int, fitness float64) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Int("assigned", assigned).
		Int("unassigned", unassigned).
		Float64("fitness", fitness).
		Msg("插入求解完成")
}
