// Package feature 定义可插拔的特性：硬约束、软目标与增量状态
package feature

import (
	"fmt"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/model"
)

// ViolationCode 约束违反码
type ViolationCode = model.ViolationCode

// Violation 硬约束违反
type Violation struct {
	Code ViolationCode `json:"code"`
	// Stopped 为 true 表示该路线对该任务整体不可行，应停止在此路线上继续搜索位置
	Stopped bool `json:"stopped"`
}

// Constraint 硬约束
// Evaluate 必须是无副作用的纯函数
type Constraint interface {
	// Evaluate 评估候选移动，可行时返回 nil
	Evaluate(move *MoveContext) *Violation

	// Merge 合并两个任务；无法保证正确性时返回 *MergeRefusedError
	Merge(source, candidate model.Job) (model.Job, error)
}

// JobsBinder 需要任务索引的硬约束可实现该接口，由 Manager.BindJobs 注入
type JobsBinder interface {
	BindJobs(jobs *model.Jobs)
}

// Objective 软目标
type Objective interface {
	// Fitness 返回整个方案上的成本
	Fitness(solution *model.SolutionContext) model.Cost

	// Estimate 返回单个候选移动的边际成本
	Estimate(move *MoveContext) model.Cost
}

// State 增量状态更新钩子
type State interface {
	// AcceptInsertion 任务提交到某条路线后调用
	AcceptInsertion(solution *model.SolutionContext, routeIndex int, job model.Job)

	// AcceptRouteState 路线被修改后调用，用于重建路线级缓存
	AcceptRouteState(route *model.RouteContext)

	// AcceptSolutionState 方案完成或恢复后调用，用于重建方案级缓存
	AcceptSolutionState(solution *model.SolutionContext)
}

// BaseState 空状态钩子，供只关心部分钩子的特性嵌入
type BaseState struct{}

// AcceptInsertion 默认不处理
func (BaseState) AcceptInsertion(*model.SolutionContext, int, model.Job) {}

// AcceptRouteState 默认不处理
func (BaseState) AcceptRouteState(*model.RouteContext) {}

// AcceptSolutionState 默认不处理
func (BaseState) AcceptSolutionState(*model.SolutionContext) {}

// MergeRefusedError 任务合并被拒绝
type MergeRefusedError struct {
	Feature string
	Code    ViolationCode
}

// Error 实现 error 接口
func (e *MergeRefusedError) Error() string {
	return fmt.Sprintf("特性 '%s' 拒绝合并任务 (code=%d)", e.Feature, e.Code)
}

// Feature 特性：三个可选能力槽
type Feature struct {
	Name       string
	Constraint Constraint
	Objective  Objective
	State      State
}

// Builder 特性构建器
type Builder struct {
	name       string
	constraint Constraint
	objective  Objective
	state      State
}

// NewBuilder 创建特性构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// WithName 设置名称
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithConstraint 设置硬约束
func (b *Builder) WithConstraint(c Constraint) *Builder {
	b.constraint = c
	return b
}

// WithObjective 设置软目标
func (b *Builder) WithObjective(o Objective) *Builder {
	b.objective = o
	return b
}

// WithState 设置状态钩子
func (b *Builder) WithState(s State) *Builder {
	b.state = s
	return b
}

// Build 构建特性；名称为空或没有约束/目标时返回错误
func (b *Builder) Build() (*Feature, error) {
	if b.name == "" {
		return nil, apperrors.InvalidConfig("<unnamed>", "名称不能为空")
	}
	if b.constraint == nil && b.objective == nil {
		return nil, apperrors.InvalidConfig(b.name, "至少需要约束或目标之一")
	}
	return &Feature{
		Name:       b.name,
		Constraint: b.constraint,
		Objective:  b.objective,
		State:      b.state,
	}, nil
}
