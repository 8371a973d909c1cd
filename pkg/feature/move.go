package feature

import (
	"github.com/paiban/vrpcore/pkg/model"
)

// MoveKind 候选移动类型
type MoveKind int

const (
	// MoveRoute 任务对路线（尚未确定位置）
	MoveRoute MoveKind = iota
	// MoveActivity 活动在具体位置插入
	MoveActivity
)

// ActivityContext 活动插入上下文
// Index 为被拆分的路段下标：路段 i 连接 tour[i] 与 tour[i+1]
type ActivityContext struct {
	Index  int
	Prev   *model.Activity
	Target *model.Activity
	Next   *model.Activity // 插入到路线末尾时为 nil
}

// NewActivityContext 根据路线与路段下标构建插入上下文
// 下标越界属于调用方错误，直接 panic
func NewActivityContext(tour *model.Tour, index int, target *model.Activity) *ActivityContext {
	prev := tour.MustGet(index)
	next, _ := tour.Get(index + 1)
	return &ActivityContext{
		Index:  index,
		Prev:   prev,
		Target: target,
		Next:   next,
	}
}

// MoveContext 当前被评估的候选移动
type MoveContext struct {
	kind     MoveKind
	Solution *model.SolutionContext
	Route    *model.RouteContext
	Job      model.Job        // 仅 MoveRoute
	Activity *ActivityContext // 仅 MoveActivity
}

// NewRouteMove 创建路线级移动
func NewRouteMove(solution *model.SolutionContext, route *model.RouteContext, job model.Job) *MoveContext {
	return &MoveContext{
		kind:     MoveRoute,
		Solution: solution,
		Route:    route,
		Job:      job,
	}
}

// NewActivityMove 创建活动级移动
func NewActivityMove(solution *model.SolutionContext, route *model.RouteContext, activity *ActivityContext) *MoveContext {
	return &MoveContext{
		kind:     MoveActivity,
		Solution: solution,
		Route:    route,
		Activity: activity,
	}
}

// Kind 返回移动类型
func (m *MoveContext) Kind() MoveKind { return m.kind }

// IsRoute 是否为路线级移动
func (m *MoveContext) IsRoute() bool { return m.kind == MoveRoute }

// IsActivity 是否为活动级移动
func (m *MoveContext) IsActivity() bool { return m.kind == MoveActivity }

// Jobs 返回问题任务索引（可能为 nil）
func (m *MoveContext) Jobs() *model.Jobs {
	if m.Solution == nil {
		return nil
	}
	return m.Solution.Jobs
}
