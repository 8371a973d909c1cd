// Package transport 提供基于矩阵的行程时长/距离能力
package transport

import (
	"fmt"
	"math"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/model"
)

// ProfileMatrix 单个行驶配置的时长与距离矩阵（按行展开）
type ProfileMatrix struct {
	Durations []model.Duration `json:"durations" yaml:"durations"`
	Distances []model.Distance `json:"distances" yaml:"distances"`
}

// Matrix 矩阵行程能力
// 查询结果只依赖矩阵内容与车辆配置，满足确定性要求
type Matrix struct {
	profiles []ProfileMatrix
	size     int
}

// NewMatrix 创建矩阵行程能力，所有配置的矩阵必须是同阶方阵
func NewMatrix(profiles ...ProfileMatrix) (*Matrix, error) {
	if len(profiles) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "至少需要一个行驶配置矩阵")
	}

	size := -1
	for i, p := range profiles {
		if len(p.Durations) != len(p.Distances) {
			return nil, apperrors.New(apperrors.CodeInvalidInput,
				fmt.Sprintf("配置 %d 的时长矩阵与距离矩阵大小不一致", i))
		}
		n := int(math.Sqrt(float64(len(p.Durations))))
		if n*n != len(p.Durations) {
			return nil, apperrors.New(apperrors.CodeInvalidInput,
				fmt.Sprintf("配置 %d 的矩阵不是方阵: %d", i, len(p.Durations)))
		}
		if size >= 0 && n != size {
			return nil, apperrors.New(apperrors.CodeInvalidInput,
				fmt.Sprintf("配置 %d 的矩阵阶数 %d 与其他配置 %d 不一致", i, n, size))
		}
		size = n
	}

	return &Matrix{profiles: profiles, size: size}, nil
}

// Size 返回位置数量
func (m *Matrix) Size() int {
	return m.size
}

// Duration 返回行程时长，按车辆速度系数缩放
func (m *Matrix) Duration(route *model.Route, from, to model.Location, _ model.TravelTime) model.Duration {
	profile := routeProfile(route)
	return m.lookup(profile.Index).Durations[m.index(from, to)] * profile.Scale
}

// Distance 返回行程距离
func (m *Matrix) Distance(route *model.Route, from, to model.Location, _ model.TravelTime) model.Distance {
	profile := routeProfile(route)
	return m.lookup(profile.Index).Distances[m.index(from, to)]
}

func (m *Matrix) lookup(profile int) ProfileMatrix {
	if profile < 0 || profile >= len(m.profiles) {
		panic(fmt.Sprintf("行驶配置 %d 不存在", profile))
	}
	return m.profiles[profile]
}

func (m *Matrix) index(from, to model.Location) int {
	if from < 0 || from >= m.size || to < 0 || to >= m.size {
		panic(fmt.Sprintf("位置 (%d, %d) 超出矩阵范围 %d", from, to, m.size))
	}
	return from*m.size + to
}

func routeProfile(route *model.Route) model.Profile {
	if route == nil || route.Actor == nil || route.Actor.Vehicle == nil {
		return model.DefaultProfile()
	}
	p := route.Actor.Vehicle.Profile
	if p.Scale <= 0 {
		p.Scale = 1
	}
	return p
}

// Point 平面坐标
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// FromPoints 按欧氏距离与匀速生成单配置矩阵
func FromPoints(points []Point, speed float64) (*Matrix, error) {
	if speed <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "速度必须大于0")
	}
	n := len(points)
	p := ProfileMatrix{
		Durations: make([]model.Duration, n*n),
		Distances: make([]model.Distance, n*n),
	}
	for i, a := range points {
		for j, b := range points {
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			p.Distances[i*n+j] = d
			p.Durations[i*n+j] = d / speed
		}
	}
	return NewMatrix(p)
}
