package model

import "math"

// 基础数值类型
type (
	// Timestamp 时间戳（秒）
	Timestamp = float64
	// Duration 时长（秒）
	Duration = float64
	// Distance 距离（米）
	Distance = float64
	// Cost 成本/惩罚值
	Cost = float64
	// Location 位置索引（对应距离矩阵下标）
	Location = int
)

// ViolationCode 约束违反码，由调用方为每个特性分配
type ViolationCode int

// TimeWindow 时间窗
type TimeWindow struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
}

// NewTimeWindow 创建时间窗
func NewTimeWindow(start, end Timestamp) TimeWindow {
	return TimeWindow{Start: start, End: end}
}

// MaxTimeWindow 返回不受限的时间窗
func MaxTimeWindow() TimeWindow {
	return TimeWindow{Start: 0, End: math.MaxFloat64}
}

// Contains 检查时间点是否在时间窗内
func (tw TimeWindow) Contains(t Timestamp) bool {
	return t >= tw.Start && t <= tw.End
}

// Intersects 检查两个时间窗是否相交
func (tw TimeWindow) Intersects(other TimeWindow) bool {
	return tw.Start <= other.End && other.Start <= tw.End
}

// Duration 返回时间窗长度
func (tw TimeWindow) Duration() Duration {
	return tw.End - tw.Start
}

// Schedule 到达/离开时刻
type Schedule struct {
	Arrival   Timestamp `json:"arrival"`
	Departure Timestamp `json:"departure"`
}

// Profile 车辆行驶配置（矩阵下标与速度系数）
type Profile struct {
	Index int     `json:"index"`
	Scale float64 `json:"scale"`
}

// DefaultProfile 默认行驶配置
func DefaultProfile() Profile {
	return Profile{Index: 0, Scale: 1.0}
}
