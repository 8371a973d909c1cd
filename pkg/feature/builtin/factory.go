package builtin

import (
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// Config 内置特性配置
type Config struct {
	Lifo          LifoConfig          `yaml:"lifo" json:"lifo"`
	RideDuration  RideDurationConfig  `yaml:"ride_duration" json:"ride_duration"`
	Preferences   PreferencesConfig   `yaml:"preferences" json:"preferences"`
	RequestedTime RequestedTimeConfig `yaml:"requested_time" json:"requested_time"`
}

// LifoConfig LIFO 装卸顺序配置
type LifoConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Code    int  `yaml:"code" json:"code"`
}

// RideDurationConfig 最大乘车时长配置
type RideDurationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Code    int  `yaml:"code" json:"code"`
}

// PreferencesConfig 偏好配置
type PreferencesConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	PreferencePenalty `yaml:",inline"`
}

// RequestedTimeConfig 期望到达时间配置（每分钟费率）
type RequestedTimeConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	EarlyPerMinute float64 `yaml:"early_per_minute" json:"early_per_minute"`
	LatePerMinute  float64 `yaml:"late_per_minute" json:"late_per_minute"`
}

// DefaultConfig 默认启用全部内置特性
func DefaultConfig() Config {
	return Config{
		Lifo:          LifoConfig{Enabled: true, Code: 16},
		RideDuration:  RideDurationConfig{Enabled: true, Code: 17},
		Preferences:   PreferencesConfig{Enabled: true, PreferencePenalty: DefaultPreferencePenalty()},
		RequestedTime: RequestedTimeConfig{Enabled: true, EarlyPerMinute: 1, LatePerMinute: 1},
	}
}

// BuildFeatures 按配置构建已启用的特性
// 任一特性构建失败则整体失败，不返回部分结果
func BuildFeatures(cfg Config, transport model.TransportCost) ([]*feature.Feature, error) {
	var features []*feature.Feature

	if cfg.Lifo.Enabled {
		f, err := NewLifoOrderingFeature(feature.ViolationCode(cfg.Lifo.Code))
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	if cfg.RideDuration.Enabled {
		f, err := NewMaxRideDurationFeature(RideDurationFeatureName, feature.ViolationCode(cfg.RideDuration.Code), transport)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	if cfg.Preferences.Enabled {
		f, err := NewPreferencesFeature(PreferencesFeatureName, cfg.Preferences.PreferencePenalty)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	if cfg.RequestedTime.Enabled {
		penalty := NewRequestedTimePenalty(cfg.RequestedTime.EarlyPerMinute, cfg.RequestedTime.LatePerMinute)
		f, err := NewRequestedTimeFeature(RequestedTimeFeatureName, penalty, transport)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	return features, nil
}

// RegisterDefaultFeatures 构建并注册内置特性到管理器
func RegisterDefaultFeatures(manager *feature.Manager, cfg Config, transport model.TransportCost) error {
	features, err := BuildFeatures(cfg, transport)
	if err != nil {
		return err
	}
	manager.RegisterAll(features...)
	return nil
}
